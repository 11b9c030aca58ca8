package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gendonk/internal/checkpoint"
)

func newCheckpointCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var clearSlot bool

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Show the fine-tuned model chat will use",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.checkpointStore()
			out := cmd.OutOrStdout()
			if clearSlot {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %s\n", store.Path)
				return nil
			}

			res, err := ctx.resolveCheckpoint(cmd, refresh)
			if err != nil {
				return err
			}
			if !res.Found {
				return errors.New("no succeeded fine-tuning job found")
			}
			fmt.Fprintln(out, res.Model)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Scan fine-tuning jobs instead of reading the saved checkpoint")
	cmd.Flags().BoolVar(&clearSlot, "clear", false, "Forget the saved checkpoint")
	cmd.MarkFlagsMutuallyExclusive("refresh", "clear")
	return cmd
}

// resolveCheckpoint reads the slot through checkpoint.Source; the API client
// is only built when the slot misses or a refresh is requested.
func (c *commandContext) resolveCheckpoint(cmd *cobra.Command, refresh bool) (checkpoint.Resolution, error) {
	logger := c.ensureLogger()
	source := checkpoint.Source{
		Store: c.checkpointStore(),
		Resolver: checkpoint.ScanFunc(func(ctx context.Context) (checkpoint.Resolution, error) {
			client, err := c.openAIClient()
			if err != nil {
				return checkpoint.Resolution{}, err
			}
			return checkpoint.Resolver{Lister: client, Logger: logger}.Resolve(ctx)
		}),
		Logger: logger,
	}
	return source.Resolve(cmd.Context(), refresh)
}
