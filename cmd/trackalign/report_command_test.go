package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"trackalign/internal/results"
)

func TestReportListsAndFiltersResults(t *testing.T) {
	env := setupCLITestEnv(t)
	store := openResults(t, env)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, rec := range []*results.Record{
		{RunID: "run-a", InputPath: "/m/first.mkv", TargetPath: "/m/t.mkv", Mode: "full", Status: results.StatusAligned, Ratio: "x1.000", Accuracy: 97, TracksWritten: 2, CreatedAt: now.Add(-2 * time.Hour)},
		{RunID: "run-a", InputPath: "/m/second.mkv", TargetPath: "/m/t.mkv", Mode: "full", Status: results.StatusReview, ErrorMessage: "alignment failed: too few matches", SidecarPath: "/out/second.alignment-error.json", CreatedAt: now.Add(-time.Hour)},
		{RunID: "run-b", InputPath: "/m/third.mkv", TargetPath: "/m/t.mkv", Mode: "stretch", Status: results.StatusFailed, ErrorMessage: "ratio detection impossible", CreatedAt: now.Add(-72 * time.Hour)},
	} {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	out, err := runCLI(t, env.configPath, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "Aligned: 1  Needs Review: 1  Failed: 1")
	requireContains(t, out, "first.mkv")
	requireContains(t, out, "(see second.alignment-error.json)")
	if strings.Index(out, "second.mkv") > strings.Index(out, "first.mkv") {
		t.Fatalf("expected newest result first:\n%s", out)
	}

	out, err = runCLI(t, env.configPath, "report", "--status", "needs-review")
	if err != nil {
		t.Fatalf("report --status: %v", err)
	}
	requireContains(t, out, "second.mkv")
	if strings.Contains(out, "first.mkv") || strings.Contains(out, "third.mkv") {
		t.Fatalf("status filter leaked rows:\n%s", out)
	}

	out, err = runCLI(t, env.configPath, "report", "--run", "run-b")
	if err != nil {
		t.Fatalf("report --run: %v", err)
	}
	requireContains(t, out, "third.mkv")
	if strings.Contains(out, "first.mkv") {
		t.Fatalf("run filter leaked rows:\n%s", out)
	}

	out, err = runCLI(t, env.configPath, "report", "--prune-older-than", "24h")
	if err != nil {
		t.Fatalf("report --prune-older-than: %v", err)
	}
	requireContains(t, out, "Pruned 1 results")
	requireContains(t, out, "Failed: 0")
}

func TestReportRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env.configPath, "report", "--status", "pending"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(results.StatusReview); got != "Needs Review" {
		t.Fatalf("statusLabel = %q", got)
	}
}
