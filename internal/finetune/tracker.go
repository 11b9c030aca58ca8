package finetune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"gendonk/internal/logging"
	"gendonk/internal/services/openai"
)

const (
	defaultPollInterval    = 10 * time.Second
	defaultMaxPollFailures = 5
	maxPollBackoff         = 2 * time.Minute
	cancelTimeout          = 30 * time.Second
	eventPageSize          = 20
)

// ErrPollFailed is returned once status polling has failed MaxPollFailures
// times in a row.
var ErrPollFailed = errors.New("job status polling failed")

// Service is the subset of the fine-tuning API the tracker needs.
type Service interface {
	UploadFile(ctx context.Context, path, purpose string) (openai.File, error)
	CreateFineTuningJob(ctx context.Context, req openai.JobRequest) (openai.Job, error)
	RetrieveFineTuningJob(ctx context.Context, id string) (openai.Job, error)
	CancelFineTuningJob(ctx context.Context, id string) (openai.Job, error)
	ListFineTuningEvents(ctx context.Context, id string, limit int) ([]openai.Event, error)
}

// Saver persists the model produced by a succeeded job.
type Saver interface {
	Save(model string) error
}

// Update is delivered to Options.Progress. Message is empty for status
// changes and carries the event text for job events.
type Update struct {
	JobID   string
	Status  openai.JobStatus
	Message string
	Time    time.Time
}

// Options configures a Tracker.
type Options struct {
	BaseModel       string
	Suffix          string
	PollInterval    time.Duration
	MaxPollFailures int
	Checkpoints     Saver
	Progress        func(Update)
	Logger          *slog.Logger
}

// Outcome is the terminal state of a tracked job.
type Outcome struct {
	JobID  string
	Status openai.JobStatus
	// Model is set only for succeeded jobs.
	Model string
	// Error carries the service's failure message for failed jobs.
	Error string
	// CancelRequested reports that the service accepted a cancel request
	// sent because the tracker's context ended.
	CancelRequested bool
	// CancelErr is set when that cancel request failed; the job may still
	// be running.
	CancelErr error
}

// Succeeded reports whether the job produced a model.
func (o Outcome) Succeeded() bool {
	return o.Status == openai.StatusSucceeded && o.Model != ""
}

// Tracker submits and follows fine-tuning jobs.
type Tracker struct {
	svc    Service
	opts   Options
	logger *slog.Logger
	wait   func(ctx context.Context, d time.Duration) error
}

// New constructs a tracker. BaseModel is required for Submit and Run only.
func New(svc Service, opts Options) (*Tracker, error) {
	if svc == nil {
		return nil, errors.New("finetune: service required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxPollFailures <= 0 {
		opts.MaxPollFailures = defaultMaxPollFailures
	}
	opts.BaseModel = strings.TrimSpace(opts.BaseModel)
	return &Tracker{
		svc:    svc,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "finetune"),
		wait:   sleepContext,
	}, nil
}

// Run uploads the training file, creates a job and tracks it to completion.
func (t *Tracker) Run(ctx context.Context, trainingFile string) (Outcome, error) {
	jobID, err := t.Submit(ctx, trainingFile)
	if err != nil {
		return Outcome{}, err
	}
	return t.Track(ctx, jobID)
}

// Submit uploads trainingFile and creates a job for it, returning the job id.
func (t *Tracker) Submit(ctx context.Context, trainingFile string) (string, error) {
	if t.opts.BaseModel == "" {
		return "", errors.New("finetune: base model required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger := logging.WithContext(ctx, t.logger)

	file, err := t.svc.UploadFile(ctx, trainingFile, openai.PurposeFineTune)
	if err != nil {
		return "", fmt.Errorf("upload training file: %w", err)
	}
	logger.Info("training file uploaded",
		slog.String("file_id", file.ID),
		slog.String("path", trainingFile),
	)

	job, err := t.svc.CreateFineTuningJob(ctx, openai.JobRequest{
		TrainingFile: file.ID,
		Model:        t.opts.BaseModel,
		Suffix:       t.opts.Suffix,
	})
	if err != nil {
		return "", fmt.Errorf("create fine-tuning job: %w", err)
	}
	logger.Info("fine-tuning job created",
		slog.String(logging.FieldJobID, job.ID),
		slog.String(logging.FieldModel, t.opts.BaseModel),
	)
	return job.ID, nil
}

// Track polls jobID until it reaches a terminal status. When ctx ends first
// the job is cancelled and the returned error wraps ctx.Err().
func (t *Tracker) Track(ctx context.Context, jobID string) (Outcome, error) {
	if strings.TrimSpace(jobID) == "" {
		return Outcome{}, errors.New("finetune: job id required")
	}
	ctx = logging.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, t.logger)

	var (
		last     openai.JobStatus
		failures int
		seen     = make(map[string]struct{})
	)
	for {
		if ctx.Err() != nil {
			return t.cancel(ctx, jobID, last)
		}

		job, err := t.svc.RetrieveFineTuningJob(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return t.cancel(ctx, jobID, last)
			}
			failures++
			if failures >= t.opts.MaxPollFailures || openai.Permanent(err) {
				logger.Error("giving up on job status polling",
					slog.Int("failures", failures),
					logging.Error(err),
				)
				return Outcome{JobID: jobID, Status: last}, fmt.Errorf("%w: job %s after %d attempts: %w", ErrPollFailed, jobID, failures, err)
			}
			delay := t.pollBackoff(failures)
			logger.Warn("job status poll failed; retrying",
				slog.Int("failures", failures),
				slog.Duration("retry_in", delay),
				logging.Error(err),
			)
			if t.wait(ctx, delay) != nil {
				return t.cancel(ctx, jobID, last)
			}
			continue
		}
		failures = 0

		if job.Status != last {
			logger.Info("job status changed",
				slog.String("from", string(last)),
				slog.String("status", string(job.Status)),
			)
			last = job.Status
			t.report(Update{JobID: jobID, Status: job.Status, Time: time.Now()})
		}
		t.reportEvents(ctx, jobID, job.Status, seen)

		switch job.Status {
		case openai.StatusSucceeded:
			return t.succeeded(logger, jobID, job), nil
		case openai.StatusFailed:
			msg := job.ErrorMessage()
			logger.Warn("fine-tuning job failed", slog.String("reason", msg))
			return Outcome{JobID: jobID, Status: job.Status, Error: msg}, nil
		case openai.StatusCancelled:
			logger.Info("fine-tuning job cancelled")
			return Outcome{JobID: jobID, Status: job.Status}, nil
		}

		if t.wait(ctx, t.opts.PollInterval) != nil {
			return t.cancel(ctx, jobID, last)
		}
	}
}

func (t *Tracker) succeeded(logger *slog.Logger, jobID string, job openai.Job) Outcome {
	outcome := Outcome{JobID: jobID, Status: job.Status, Model: job.FineTunedModel}
	if job.FineTunedModel == "" {
		logger.Warn("succeeded job reported no fine-tuned model")
		return outcome
	}
	logger.Info("fine-tuning job succeeded", slog.String(logging.FieldModel, job.FineTunedModel))
	if t.opts.Checkpoints != nil {
		if err := t.opts.Checkpoints.Save(job.FineTunedModel); err != nil {
			logger.Warn("checkpoint not saved", logging.Error(err))
		}
	}
	return outcome
}

// cancel asks the service to stop jobID on a context detached from the
// cancelled parent.
func (t *Tracker) cancel(ctx context.Context, jobID string, last openai.JobStatus) (Outcome, error) {
	logger := logging.WithContext(ctx, t.logger)
	cause := ctx.Err()
	logger.Info("tracking interrupted; cancelling job", slog.String("status", string(last)))

	cancelCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer stop()

	job, err := t.svc.CancelFineTuningJob(cancelCtx, jobID)
	if err != nil {
		logger.Warn("cancel request failed", logging.Error(err))
		cancelErr := fmt.Errorf("cancel job %s: %w", jobID, err)
		outcome := Outcome{JobID: jobID, Status: last, CancelErr: cancelErr}
		return outcome, errors.Join(
			fmt.Errorf("tracking job %s interrupted: %w", jobID, cause),
			cancelErr,
		)
	}
	outcome := Outcome{JobID: jobID, Status: openai.StatusCancelled, CancelRequested: true}
	if job.Status != "" {
		outcome.Status = job.Status
	}
	t.report(Update{JobID: jobID, Status: outcome.Status, Message: "cancel requested", Time: time.Now()})
	return outcome, fmt.Errorf("tracking job %s interrupted: %w", jobID, cause)
}

// reportEvents forwards events not yet seen, oldest first. Failures only
// cost progress detail, so they are logged and dropped.
func (t *Tracker) reportEvents(ctx context.Context, jobID string, status openai.JobStatus, seen map[string]struct{}) {
	if t.opts.Progress == nil {
		return
	}
	events, err := t.svc.ListFineTuningEvents(ctx, jobID, eventPageSize)
	if err != nil {
		logging.WithContext(ctx, t.logger).Debug("job events unavailable", logging.Error(err))
		return
	}
	for _, event := range slices.Backward(events) {
		if _, ok := seen[event.ID]; ok || event.ID == "" {
			continue
		}
		seen[event.ID] = struct{}{}
		t.report(Update{
			JobID:   jobID,
			Status:  status,
			Message: event.Message,
			Time:    time.Unix(event.CreatedAt, 0),
		})
	}
}

func (t *Tracker) report(update Update) {
	if t.opts.Progress != nil {
		t.opts.Progress(update)
	}
}

// pollBackoff doubles the poll interval per consecutive failure.
func (t *Tracker) pollBackoff(failures int) time.Duration {
	delay := t.opts.PollInterval
	for i := 1; i < failures; i++ {
		if delay >= maxPollBackoff/2 {
			return maxPollBackoff
		}
		delay *= 2
	}
	return min(delay, maxPollBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
