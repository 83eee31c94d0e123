package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckPassesWithStubbedBinaries(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if got := strings.Count(out, "[OK]"); got != 5 {
		t.Fatalf("expected 5 passing checks, got %d\n%s", got, out)
	}
	requireContains(t, out, env.ffprobe)
}

func TestCheckReportsMissingBinary(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, filepath.Join(env.base, "bin", "missing-ffmpeg"))

	out, err := runCLI(t, env.configPath, "check")
	if err == nil || err.Error() != "1 of 5 checks failed" {
		t.Fatalf("expected one failed check, got %v", err)
	}
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "[ERROR] binary")
}
