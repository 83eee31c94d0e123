package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackalign/internal/workspace"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories and external binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			checks := workspace.Preflight(cfg)
			for _, c := range checks {
				kind := statusOK
				if !c.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(c.Name, kind, c.Detail, colorize))
			}
			if failed := workspace.Failed(checks); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(checks))
			}
			return nil
		},
	}
}
