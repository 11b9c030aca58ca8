package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gendonk/internal/dataset"
	"gendonk/internal/fileutil"
	"gendonk/internal/finetune"
	"gendonk/internal/logging"
	"gendonk/internal/records"
)

var (
	// ErrSheetRequired is returned when a workbook source names no sheet.
	ErrSheetRequired = errors.New("sheet name is required for Excel files")
	// ErrRunInProgress is returned when another run holds the work directory.
	ErrRunInProgress = errors.New("another fine-tuning run is in progress")
	// ErrNoRecords is returned by Run when conversion produced nothing to train on.
	ErrNoRecords = errors.New("no training records produced")
)

const runLockName = "gendonk.run.lock"

// Request selects the source table and the two columns to pair.
type Request struct {
	Source           string
	Sheet            string
	PromptColumn     string
	CompletionColumn string
	// Output overrides the default <work_dir>/<run_id>.jsonl destination.
	Output string
}

// Prepared describes the artifacts of a conversion.
type Prepared struct {
	RunID        string
	Format       dataset.Format
	TablePath    string
	TrainingFile string
	Columns      []string
	Stats        records.Stats
}

// Result is the outcome of a full Run.
type Result struct {
	Prepared
	Outcome finetune.Outcome
}

// JobRunner submits and tracks one training file.
type JobRunner interface {
	Run(ctx context.Context, trainingFile string) (finetune.Outcome, error)
}

// Pipeline wires conversion to job tracking.
type Pipeline struct {
	WorkDir   string
	Converter records.Converter
	Jobs      JobRunner
	Logger    *slog.Logger

	newRunID func() string
}

// Prepare converts req.Source into a training file without contacting the
// service.
func (p *Pipeline) Prepare(ctx context.Context, req Request) (Prepared, error) {
	var prepared Prepared
	if err := ctx.Err(); err != nil {
		return prepared, err
	}
	if strings.TrimSpace(p.WorkDir) == "" {
		return prepared, errors.New("workflow: work directory required")
	}
	format, err := dataset.DetectFormat(req.Source)
	if err != nil {
		return prepared, err
	}
	sheet := strings.TrimSpace(req.Sheet)
	if format == dataset.FormatXLSX && sheet == "" {
		return prepared, ErrSheetRequired
	}
	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return prepared, fmt.Errorf("create work directory: %w", err)
	}

	prepared.RunID = p.runID()
	prepared.Format = format
	if _, ok := logging.RunIDFromContext(ctx); !ok {
		ctx = logging.WithRunID(ctx, prepared.RunID)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.Logger, "workflow"))

	prepared.TablePath = filepath.Join(p.WorkDir, prepared.RunID+".csv")
	if err := p.stageTable(req.Source, format, sheet, prepared.TablePath); err != nil {
		return prepared, err
	}
	table, err := dataset.ReadCSVFile(prepared.TablePath)
	if err != nil {
		return prepared, fmt.Errorf("read staged table: %w", err)
	}
	prepared.Columns = table.Columns

	prepared.TrainingFile = req.Output
	if strings.TrimSpace(prepared.TrainingFile) == "" {
		prepared.TrainingFile = filepath.Join(p.WorkDir, prepared.RunID+".jsonl")
	}
	stats, err := p.Converter.ConvertFile(table, req.PromptColumn, req.CompletionColumn, prepared.TrainingFile)
	prepared.Stats = stats
	if err != nil {
		return prepared, err
	}
	logger.Info("training file written",
		slog.String("source", req.Source),
		slog.String("format", string(format)),
		slog.String("path", prepared.TrainingFile),
		slog.Int("rows", stats.Rows),
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
	)
	return prepared, nil
}

// Run prepares the training file and tracks a fine-tuning job for it.
// Cancelling ctx cancels the job.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	var result Result
	if p.Jobs == nil {
		return result, errors.New("workflow: job runner required")
	}
	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return result, fmt.Errorf("create work directory: %w", err)
	}
	unlock, err := fileutil.TryLock(filepath.Join(p.WorkDir, runLockName))
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return result, ErrRunInProgress
		}
		return result, err
	}
	defer unlock()

	prepared, err := p.Prepare(ctx, req)
	result.Prepared = prepared
	if err != nil {
		return result, err
	}
	if prepared.Stats.Written == 0 {
		return result, fmt.Errorf("%w from %s", ErrNoRecords, req.Source)
	}

	ctx = logging.WithRunID(ctx, prepared.RunID)
	outcome, err := p.Jobs.Run(ctx, prepared.TrainingFile)
	result.Outcome = outcome
	return result, err
}

func (p *Pipeline) stageTable(source string, format dataset.Format, sheet, dest string) error {
	switch format {
	case dataset.FormatXLSX:
		err := fileutil.WriteAtomic(dest, 0o644, func(w io.Writer) error {
			return dataset.SheetToCSV(source, sheet, w)
		})
		if err != nil {
			return fmt.Errorf("transcode sheet: %w", err)
		}
	default:
		if err := fileutil.CopyFile(source, dest); err != nil {
			return fmt.Errorf("stage csv: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) runID() string {
	if p.newRunID != nil {
		return p.newRunID()
	}
	return uuid.NewString()
}
