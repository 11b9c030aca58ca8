package checkpoint

import (
	"context"
	"log/slog"

	"gendonk/internal/logging"
)

// Scanner finds the newest checkpoint among the service's jobs.
type Scanner interface {
	Resolve(ctx context.Context) (Resolution, error)
}

// ScanFunc adapts a function to Scanner, for callers that build the job
// listing client only when a scan is actually needed.
type ScanFunc func(ctx context.Context) (Resolution, error)

// Resolve calls f.
func (f ScanFunc) Resolve(ctx context.Context) (Resolution, error) {
	return f(ctx)
}

// Source answers "which model should chat use" from the slot file, scanning
// the job listing when the slot is empty or a refresh is requested. A scan
// hit is written back to the slot.
type Source struct {
	Store    Store
	Resolver Scanner
	Logger   *slog.Logger
}

// Resolve returns the current checkpoint.
func (s Source) Resolve(ctx context.Context, refresh bool) (Resolution, error) {
	logger := logging.NewComponentLogger(s.Logger, "checkpoint")
	if !refresh {
		model, ok, err := s.Store.Load()
		if err != nil {
			logger.Warn("checkpoint slot unreadable; scanning jobs",
				logging.Error(err),
				slog.String("path", s.Store.Path),
			)
		} else if ok {
			return Resolution{Model: model, Found: true}, nil
		}
	}

	res, err := s.Resolver.Resolve(ctx)
	if err != nil || !res.Found {
		return res, err
	}
	if err := s.Store.Save(res.Model); err != nil {
		logger.Warn("checkpoint slot not updated", logging.Error(err))
	}
	return res, nil
}
