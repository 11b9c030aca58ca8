package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gendonk/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, directories, and API access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Readiness", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Models", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Base model", statusInfo, cfg.OpenAI.BaseModel, colorize))
			model, ok, err := ctx.checkpointStore().Load()
			switch {
			case err != nil:
				fmt.Fprintln(out, renderStatusLine("Checkpoint", statusError, err.Error(), colorize))
			case ok:
				fmt.Fprintln(out, renderStatusLine("Checkpoint", statusOK, model, colorize))
			default:
				fmt.Fprintln(out, renderStatusLine("Checkpoint", statusWarn, "none saved (run 'gendonk checkpoint --refresh')", colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
}
