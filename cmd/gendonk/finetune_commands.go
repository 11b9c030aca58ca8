package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gendonk/internal/finetune"
	"gendonk/internal/preflight"
	"gendonk/internal/services/openai"
)

func newFinetuneCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "finetune <file> [sheet] <question-column> <answer-column>",
		Short: "Convert a table and fine-tune a model on it (Ctrl+C cancels the job)",
		Args:  sourceArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseSourceArgs(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !skipPreflight {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
					return fmt.Errorf("preflight failed: %s: %s", failed[0].Name, failed[0].Detail)
				}
			}

			out := cmd.OutOrStdout()
			tracker, err := ctx.tracker(progressPrinter(out))
			if err != nil {
				return err
			}
			pipeline, err := ctx.pipeline(tracker)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Fine-tuning %s from %s\n", cfg.OpenAI.BaseModel, req.Source)
			result, err := pipeline.Run(cmd.Context(), req)
			if result.TrainingFile != "" {
				fmt.Fprintf(out, "Training file: %s (%d records)\n", result.TrainingFile, result.Stats.Written)
			}
			return reportOutcome(out, result.Outcome, err)
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Do not check API access before uploading")
	return cmd
}

func newTrackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "track <job-id>",
		Short: "Follow an existing fine-tuning job until it finishes (Ctrl+C cancels the job)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tracker, err := ctx.tracker(progressPrinter(out))
			if err != nil {
				return err
			}
			outcome, err := tracker.Track(cmd.Context(), strings.TrimSpace(args[0]))
			return reportOutcome(out, outcome, err)
		},
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a fine-tuning job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.openAIClient()
			if err != nil {
				return err
			}
			job, err := client.CancelFineTuningJob(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s: %s\n", job.ID, job.Status)
			return nil
		},
	}
}

func progressPrinter(out io.Writer) func(finetune.Update) {
	colorize := shouldColorize(out)
	return func(u finetune.Update) {
		label := u.Time.Local().Format("15:04:05")
		message := u.Message
		if message == "" {
			message = "status " + string(u.Status)
		}
		fmt.Fprintln(out, renderStatusLine(label, jobStatusKind(u.Status), message, colorize))
	}
}

// reportOutcome prints the terminal state and converts non-success into an
// error so the process exits non-zero.
func reportOutcome(out io.Writer, outcome finetune.Outcome, err error) error {
	switch {
	case outcome.CancelErr != nil:
		fmt.Fprintf(out, "Cancel request FAILED; job %s may still be running\n", outcome.JobID)
	case outcome.CancelRequested:
		fmt.Fprintf(out, "Cancel requested for job %s\n", outcome.JobID)
	case err != nil:
	case outcome.Succeeded():
		fmt.Fprintf(out, "Fine-tuning complete. Model: %s\n", outcome.Model)
		return nil
	case outcome.Status == openai.StatusFailed:
		reason := outcome.Error
		if reason == "" {
			reason = "no reason reported"
		}
		return fmt.Errorf("fine-tuning job %s failed: %s", outcome.JobID, reason)
	case outcome.Status == openai.StatusCancelled:
		return fmt.Errorf("fine-tuning job %s was cancelled", outcome.JobID)
	default:
		return fmt.Errorf("fine-tuning job %s finished without a model (status %s)", outcome.JobID, outcome.Status)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, "Interrupted")
	}
	return err
}

func jobStatusKind(status openai.JobStatus) statusKind {
	switch status {
	case openai.StatusSucceeded:
		return statusOK
	case openai.StatusFailed:
		return statusError
	case openai.StatusCancelled:
		return statusWarn
	default:
		return statusInfo
	}
}
