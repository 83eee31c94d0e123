package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trackalign/internal/results"
	"trackalign/internal/workspace"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlag string
		runFlag    string
		limit      int
		pruneAge   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded alignment results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := results.Filter{RunID: strings.TrimSpace(runFlag), Limit: limit}
			if statusFlag != "" {
				status, err := parseStatus(statusFlag)
				if err != nil {
					return err
				}
				filter.Status = status
			}

			runCtx := cmd.Context()
			store, err := results.Open(runCtx, workspace.New(cfg).ResultsPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if pruneAge > 0 {
				removed, err := store.Prune(runCtx, time.Now().Add(-pruneAge))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d results older than %s\n", removed, pruneAge)
			}

			stats, err := store.Stats(runCtx)
			if err != nil {
				return err
			}
			colorize := shouldColorize(out)
			summary := make([]string, 0, len(stats))
			for _, status := range results.Statuses() {
				summary = append(summary, fmt.Sprintf("%s: %d", statusLabel(status), stats[status]))
			}
			fmt.Fprintln(out, strings.Join(summary, "  "))

			records, err := store.List(runCtx, filter)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No results recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, reportRow(rec, colorize))
			}
			fmt.Fprintln(out, renderTable(
				numeric(columns("Recorded", "Status", "Mode", "Input", "Target", "Ratio", "Accuracy", "Tracks", "Note"), "Accuracy", "Tracks"),
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show results with this status (aligned, needs_review, failed)")
	cmd.Flags().StringVar(&runFlag, "run", "", "Only show results of this run id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results to show (0 for all)")
	cmd.Flags().DurationVar(&pruneAge, "prune-older-than", 0, "Delete results older than this age before reporting")
	return cmd
}

func parseStatus(value string) (results.Status, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	for _, status := range results.Statuses() {
		if string(status) == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// statusLabel renders "needs_review" as "Needs Review".
func statusLabel(status results.Status) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(string(status), "_", " "))
}

func reportRow(rec *results.Record, colorize bool) []string {
	ratio := rec.Ratio
	if ratio == "" {
		ratio = "-"
	}
	note := rec.ErrorMessage
	if rec.SidecarPath != "" {
		note = strings.TrimSpace(note + " (see " + filepath.Base(rec.SidecarPath) + ")")
	}
	return []string{
		rec.CreatedAt.Local().Format("2006-01-02 15:04"),
		colorizeStatus(statusLabel(rec.Status), resultStatusKind(rec.Status), colorize),
		rec.Mode,
		filepath.Base(rec.InputPath),
		filepath.Base(rec.TargetPath),
		ratio,
		accuracyCell(rec),
		strconv.Itoa(rec.TracksWritten),
		note,
	}
}

// accuracyCell shows "-" for modes that never run an alignment.
func accuracyCell(rec *results.Record) string {
	if rec.Mode != "full" {
		return "-"
	}
	return strconv.Itoa(rec.Accuracy) + "%"
}
