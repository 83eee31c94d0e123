package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Mode: stretch")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Mode: full")
}

func TestConfigValidateRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[alignment]\nmode = \"sideways\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, path, "config", "validate"); err == nil {
		t.Fatal("expected invalid mode to be rejected")
	}
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("TRACKALIGN_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	out, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[alignment]")
	requireContains(t, out, "mode = 'stretch'")
	requireContains(t, out, "chunk_seconds = 300")
	requireContains(t, out, "ffprobe_binary = '/opt/ffmpeg/bin/ffprobe'")
	requireContains(t, out, "work_dir = '"+env.workDir+"'")
}
