package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"gendonk/internal/services/openai"
)

type jobView struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	BaseModel      string `json:"base_model"`
	FineTunedModel string `json:"fine_tuned_model,omitempty"`
	CreatedAt      string `json:"created_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
	Error          string `json:"error,omitempty"`
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List fine-tuning jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.openAIClient()
			if err != nil {
				return err
			}
			jobs, err := client.ListFineTuningJobs(cmd.Context())
			if err != nil {
				return err
			}
			views := jobViews(jobs)

			if asJSON {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No fine-tuning jobs")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{v.ID, v.Status, v.BaseModel, v.FineTunedModel, v.CreatedAt})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Status", "Base model", "Fine-tuned model", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func jobViews(jobs []openai.Job) []jobView {
	sorted := append([]openai.Job(nil), jobs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})
	views := make([]jobView, 0, len(sorted))
	for _, job := range sorted {
		views = append(views, jobView{
			ID:             job.ID,
			Status:         string(job.Status),
			BaseModel:      job.Model,
			FineTunedModel: job.FineTunedModel,
			CreatedAt:      formatUnix(job.CreatedAt),
			FinishedAt:     formatUnix(job.FinishedAt),
			Error:          job.ErrorMessage(),
		})
	}
	return views
}

func formatUnix(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
