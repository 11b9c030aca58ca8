package records

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"

	"gendonk/internal/dataset"
	"gendonk/internal/fileutil"
)

var (
	// ErrUnknownColumn is wrapped by ColumnError.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrSystemPromptRequired is returned when the converter has no system prompt.
	ErrSystemPromptRequired = errors.New("system prompt required")
)

// ColumnError reports a selected column the table does not have.
type ColumnError struct {
	Role       string
	Column     string
	Suggestion string
	Available  []string
}

func (e *ColumnError) Error() string {
	msg := fmt.Sprintf("%s column %q not found", e.Role, e.Column)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	if len(e.Available) > 0 {
		msg += "; available columns: " + strings.Join(e.Available, ", ")
	}
	return msg
}

func (e *ColumnError) Unwrap() error { return ErrUnknownColumn }

// Stats summarizes one conversion.
type Stats struct {
	Rows    int
	Written int
	Skipped int
}

// Converter turns table rows into training records.
type Converter struct {
	SystemPrompt string
}

// Convert writes one JSON line per row whose prompt and completion cells are
// both present, in source order.
func (c Converter) Convert(table *dataset.Table, promptColumn, completionColumn string, w io.Writer) (Stats, error) {
	var stats Stats
	if strings.TrimSpace(c.SystemPrompt) == "" {
		return stats, ErrSystemPromptRequired
	}
	if table.Empty() {
		return stats, nil
	}
	if err := checkColumn(table, "question", promptColumn); err != nil {
		return stats, err
	}
	if err := checkColumn(table, "answer", completionColumn); err != nil {
		return stats, err
	}

	buffered := bufio.NewWriter(w)
	enc := json.NewEncoder(buffered)
	enc.SetEscapeHTML(false)
	for _, row := range table.Rows {
		stats.Rows++
		prompt, completion := row.Get(promptColumn), row.Get(completionColumn)
		if !prompt.Present || !completion.Present {
			stats.Skipped++
			continue
		}
		// Encode terminates each value with a newline.
		if err := enc.Encode(NewRecord(c.SystemPrompt, prompt.Value, completion.Value)); err != nil {
			return stats, fmt.Errorf("encode record %d: %w", stats.Rows, err)
		}
		stats.Written++
	}
	if err := buffered.Flush(); err != nil {
		return stats, fmt.Errorf("write records: %w", err)
	}
	return stats, nil
}

// ConvertFile writes the training file to path atomically: the destination is
// only replaced once every record has been written.
func (c Converter) ConvertFile(table *dataset.Table, promptColumn, completionColumn, path string) (Stats, error) {
	var stats Stats
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var err error
		stats, err = c.Convert(table, promptColumn, completionColumn, w)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("write training file: %w", err)
	}
	return stats, nil
}

func checkColumn(table *dataset.Table, role, column string) error {
	if table.HasColumn(column) {
		return nil
	}
	return &ColumnError{
		Role:       role,
		Column:     column,
		Suggestion: suggestColumn(table.Columns, column),
		Available:  table.Columns,
	}
}

// suggestColumn finds a column equal to name under Unicode case folding and
// surrounding-space trimming.
func suggestColumn(columns []string, name string) string {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	for _, column := range columns {
		if fold.String(strings.TrimSpace(column)) == want {
			return column
		}
	}
	return ""
}
