package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"trackalign/internal/media"
	"trackalign/internal/ratio"
	"trackalign/internal/span"
)

func newRatioCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "ratio INPUT TARGET",
		Short: "Show the speed ratio between two files",
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
			input, err := sess.library.Open(runCtx, args[0])
			if err != nil {
				return err
			}
			target, err := sess.library.Open(runCtx, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printMediaFacts(out, "Input", input)
			printMediaFacts(out, "Target", target)
			fmt.Fprintln(out, renderTable(
				numeric(columns("Strategy", "Speed", "Duration"), "Speed", "Duration"),
				strategyRows(input, target, span.Seconds(sess.cfg.Alignment.KnownRatioMaxErrorSeconds)),
			))

			det, err := sess.engine.DetectRatio(runCtx, input, target, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Selected (%s): %s via %s\n", mode, det.Multiplier, det.Strategy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Alignment mode used to pick the ratio (default from config)")
	return cmd
}

func printMediaFacts(out io.Writer, label string, f *media.InputFile) {
	rate := "unknown"
	if fps, ok := f.Framerate(); ok {
		rate = fmt.Sprintf("%.3f fps", fps)
	}
	fmt.Fprintf(out, "%-7s %s (duration %s, %s)\n", label+":", filepath.Base(f.Path), f.Duration(), rate)
}

// strategyRows evaluates every strategy on its own so the table shows what
// each heuristic would pick.
func strategyRows(input, target ratio.Media, maxError time.Duration) [][]string {
	strategies := []ratio.Strategy{
		ratio.None{},
		ratio.ByFramerate{},
		ratio.ByFramerate{KnownOnly: true},
		ratio.ByDuration{},
		ratio.ByDuration{KnownOnly: true, MaxError: maxError},
	}
	rows := make([][]string, 0, len(strategies))
	for _, s := range strategies {
		det, ok := ratio.Detect(input, target, s)
		if !ok {
			rows = append(rows, []string{s.Name(), "-", "-"})
			continue
		}
		m := det.Multiplier
		rows = append(rows, []string{
			s.Name(),
			m.Speed().StringFixed(ratio.Precision),
			m.Duration().StringFixed(ratio.Precision),
		})
	}
	return rows
}
