package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gendonk/internal/config"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file> [sheet] <question-column> <answer-column>",
		Short: "Write a JSONL training file from a spreadsheet or CSV",
		Args:  sourceArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseSourceArgs(args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(output) != "" {
				if req.Output, err = config.ExpandPath(output); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}
			pipeline, err := ctx.pipeline(nil)
			if err != nil {
				return err
			}
			prepared, err := pipeline.Prepare(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d training records to %s\n", prepared.Stats.Written, prepared.TrainingFile)
			if prepared.Stats.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d rows with an empty question or answer\n", prepared.Stats.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination JSONL file (default: <work_dir>/<run-id>.jsonl)")
	return cmd
}
