package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gendonk/internal/logging"
	"gendonk/internal/services/openai"
)

// ErrLookupFailed wraps listing errors so callers can tell them apart from
// an account with no usable checkpoint.
var ErrLookupFailed = errors.New("checkpoint lookup failed")

// Lister enumerates fine-tuning jobs.
type Lister interface {
	ListFineTuningJobs(ctx context.Context) ([]openai.Job, error)
}

// Resolution is the outcome of a checkpoint lookup.
type Resolution struct {
	Model string
	Found bool
	// JobID is empty when the model came from the slot file.
	JobID string
}

// Latest returns the fine-tuned model of the most recently created succeeded
// job. Jobs sharing a creation time keep their listing order.
func Latest(jobs []openai.Job) (string, bool) {
	job, ok := latestJob(jobs)
	if !ok {
		return "", false
	}
	return job.FineTunedModel, true
}

func latestJob(jobs []openai.Job) (openai.Job, bool) {
	sorted := append([]openai.Job(nil), jobs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})
	for _, job := range sorted {
		if job.Status == openai.StatusSucceeded && job.FineTunedModel != "" {
			return job, true
		}
	}
	return openai.Job{}, false
}

// Resolver finds the latest checkpoint by scanning the job listing.
type Resolver struct {
	Lister Lister
	Logger *slog.Logger
}

// Resolve lists every job and picks the latest succeeded one.
func (r Resolver) Resolve(ctx context.Context) (Resolution, error) {
	logger := logging.NewComponentLogger(r.Logger, "checkpoint")
	if r.Lister == nil {
		return Resolution{}, fmt.Errorf("%w: no job lister configured", ErrLookupFailed)
	}
	jobs, err := r.Lister.ListFineTuningJobs(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	job, ok := latestJob(jobs)
	if !ok {
		logger.Debug("no succeeded fine-tuning job", slog.Int("jobs", len(jobs)))
		return Resolution{}, nil
	}
	logger.Debug("resolved checkpoint",
		slog.String(logging.FieldJobID, job.ID),
		slog.String(logging.FieldModel, job.FineTunedModel),
	)
	return Resolution{Model: job.FineTunedModel, Found: true, JobID: job.ID}, nil
}
