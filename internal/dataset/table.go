package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for sources that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported file format; only Excel (.xlsx) and CSV files are supported")

// Format identifies a tabular source encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file name to its source format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// Cell is one field of a row. Present is false for null values.
type Cell struct {
	Value   string
	Present bool
}

// Row maps column names to cells. Columns missing from the map are null.
type Row map[string]Cell

// Get returns the cell for column; missing columns yield an absent cell.
func (r Row) Get(column string) Cell {
	return r[column]
}

// Table is an ordered sequence of rows sharing one header.
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the source had neither a header nor rows.
func (t *Table) Empty() bool {
	return t == nil || (len(t.Columns) == 0 && len(t.Rows) == 0)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, column := range t.Columns {
		if column == name {
			return true
		}
	}
	return false
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) []Row {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
