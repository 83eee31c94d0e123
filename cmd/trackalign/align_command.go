package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"trackalign/internal/align"
	"trackalign/internal/language"
	"trackalign/internal/logging"
	"trackalign/internal/matcher"
	"trackalign/internal/media"
	"trackalign/internal/results"
	"trackalign/internal/workspace"
)

type alignRequest struct {
	input       string
	target      string
	mode        align.Mode
	languages   language.Set
	extraTracks []string
	dryRun      bool
}

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var (
		modeFlag    string
		languages   []string
		extraTracks []string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "align INPUT TARGET",
		Short: "Re-time the audio and subtitle tracks of INPUT to match TARGET",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, runCtx, err := ctx.newSession(cmd.Context())
			if err != nil {
				return err
			}
			mode, err := resolveMode(modeFlag, sess.cfg)
			if err != nil {
				return err
			}
			wanted, err := language.ParseSet(languages)
			if err != nil {
				return err
			}
			return runAlign(runCtx, cmd.OutOrStdout(), sess, alignRequest{
				input:       args[0],
				target:      args[1],
				mode:        mode,
				languages:   wanted,
				extraTracks: extraTracks,
				dryRun:      dryRun,
			})
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Alignment mode: none, drift, stretch or full (default from config)")
	cmd.Flags().StringSliceVarP(&languages, "languages", "l", nil, "Only adjust tracks in these languages")
	cmd.Flags().StringArrayVarP(&extraTracks, "track", "t", nil, "Additional standalone track file belonging to INPUT (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute adjustments without rendering tracks")
	return cmd
}

func runAlign(ctx context.Context, out io.Writer, sess *session, req alignRequest) error {
	if err := sess.ws.Lock(); err != nil {
		return err
	}
	defer func() { _ = sess.ws.Unlock() }()

	if failed := workspace.Failed(workspace.Preflight(sess.cfg)); len(failed) > 0 {
		return preflightError(failed)
	}

	input, err := sess.library.Open(ctx, req.input)
	if err != nil {
		return err
	}
	target, err := sess.library.Open(ctx, req.target)
	if err != nil {
		return err
	}
	tracks, err := selectTracks(ctx, sess.library, input, req.extraTracks, req.languages)
	if err != nil {
		return err
	}

	store, err := results.Open(ctx, sess.ws.ResultsPath())
	if err != nil {
		return err
	}
	defer store.Close()

	rec := &results.Record{
		RunID:      sess.runID,
		InputPath:  input.Path,
		TargetPath: target.Path,
		Mode:       string(req.mode),
	}
	res, err := sess.engine.ComputeAdjustments(ctx, input, target, req.mode)
	if res.Ratio.Strategy != "" {
		rec.Ratio = res.Ratio.Multiplier.String()
		rec.RatioStrategy = res.Ratio.Strategy
	}
	if res.Aligned {
		rec.Accuracy = int(math.Round(res.Accuracy.Score))
	}
	if err != nil {
		return sess.recordFailure(ctx, store, rec, err)
	}
	if req.mode == align.ModeFull {
		data, err := json.Marshal(res.Cuts)
		if err != nil {
			return fmt.Errorf("encode cuts: %w", err)
		}
		rec.CutsJSON = string(data)
	}

	pipeline := res.Adjustments()
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		if req.dryRun {
			rows = append(rows, trackRow(track, "planned", ""))
			continue
		}
		adjusted, changed, err := pipeline.Apply(ctx, track)
		if err != nil {
			return sess.recordFailure(ctx, store, rec, err)
		}
		if !changed {
			rows = append(rows, trackRow(track, "unchanged", track.Path))
			continue
		}
		rec.TracksWritten++
		rows = append(rows, trackRow(track, "written", adjusted.Path))
	}

	rec.Status = results.StatusAligned
	if res.NeedsManualCheck {
		rec.Status = results.StatusReview
	}
	if !req.dryRun {
		if err := store.Insert(ctx, rec); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
	}

	printAlignSummary(out, res, rec, req.dryRun)
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(columns("Track", "Language", "Result", "Output"), rows))
	}
	return nil
}

// recordFailure persists a failed run and returns err. Alignment failures
// also get a sidecar with both timelines.
func (s *session) recordFailure(ctx context.Context, store *results.Store, rec *results.Record, err error) error {
	logger := logging.WithContext(ctx, s.logger)
	rec.Status = results.FailureStatus(err)
	rec.ErrorMessage = err.Error()

	var alignErr *matcher.AlignmentError
	if errors.As(err, &alignErr) {
		path, werr := results.WriteFailure(s.cfg.Paths.OutputDir, results.NewFailure(s.runID, rec.InputPath, rec.TargetPath, alignErr))
		if werr != nil {
			logging.WarnWithContext(logger, "alignment sidecar not written", "alignment_sidecar_failed",
				logging.Error(werr),
				logging.String(logging.FieldImpact, "timelines of the failed alignment are not kept"),
				logging.String(logging.FieldErrorHint, "check permissions of the output directory"),
			)
		} else {
			rec.SidecarPath = path
		}
	}
	if ierr := store.Insert(ctx, rec); ierr != nil {
		logging.WarnWithContext(logger, "result not recorded", "results_insert_failed",
			logging.Error(ierr),
			logging.String(logging.FieldImpact, "this run is missing from the report"),
			logging.String(logging.FieldErrorHint, "check the results database in the work directory"),
		)
	}
	return err
}

func selectTracks(ctx context.Context, lib *media.Library, input *media.InputFile, extra []string, languages language.Set) ([]media.Track, error) {
	tracks := append(input.TracksOf(media.Audio), input.TracksOf(media.Subtitle)...)
	for _, path := range extra {
		f, err := lib.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		for _, t := range f.Tracks {
			if t.Kind != media.Video {
				tracks = append(tracks, t)
			}
		}
	}

	if languages.Empty() {
		return tracks, nil
	}
	filtered := tracks[:0]
	for _, t := range tracks {
		if languages.Contains(t.Language) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func trackRow(track media.Track, result, output string) []string {
	return []string{track.String(), language.DisplayName(track.Language), result, output}
}

func preflightError(failed []workspace.Check) error {
	parts := make([]string, 0, len(failed))
	for _, c := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Name, c.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}

func printAlignSummary(out io.Writer, res align.Result, rec *results.Record, dryRun bool) {
	fmt.Fprintf(out, "Input:        %s\n", rec.InputPath)
	fmt.Fprintf(out, "Target:       %s\n", rec.TargetPath)
	fmt.Fprintf(out, "Mode:         %s\n", res.Mode)
	fmt.Fprintf(out, "Ratio:        %s (%s)\n", res.Ratio.Multiplier, res.Ratio.Strategy)
	if res.Mode == align.ModeFull {
		fmt.Fprintf(out, "Cuts:         %s\n", res.Cuts)
		fmt.Fprintf(out, "Accuracy:     %s over %d matches\n", res.Accuracy, res.Matches)
		fmt.Fprintf(out, "Manual check: %s\n", yesNo(res.NeedsManualCheck))
	}
	if dryRun {
		fmt.Fprintln(out, "Dry run: no tracks rendered, nothing recorded")
		return
	}
	fmt.Fprintf(out, "Status:       %s\n", rec.Status)
}
