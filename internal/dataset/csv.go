package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// naTokens are the cell spellings read as null, matching the defaults of the
// spreadsheet tooling operators export from.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNA reports whether a raw field value represents null.
func IsNA(value string) bool {
	_, ok := naTokens[value]
	return ok
}

// ReadCSVFile reads a delimited table from path.
func ReadCSVFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	table, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadCSV parses a header row followed by data rows. Short rows are padded
// with nulls; rows wider than the header are rejected. An empty input yields
// an empty table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	table := &Table{Columns: dedupeColumns(header)}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) > len(table.Columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("csv line %d: expected %d fields, saw %d", line, len(table.Columns), len(record))
		}
		row := make(Row, len(table.Columns))
		for i, column := range table.Columns {
			if i >= len(record) || IsNA(record[i]) {
				row[column] = Cell{}
				continue
			}
			row[column] = Cell{Value: record[i], Present: true}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// dedupeColumns names blank headers "Unnamed: i" and renames repeated names
// to name.1, name.2, ...
func dedupeColumns(header []string) []string {
	header = append([]string(nil), header...)
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			header[i] = "Unnamed: " + strconv.Itoa(i)
		}
	}
	columns := make([]string, len(header))
	counts := make(map[string]int, len(header))
	taken := make(map[string]struct{}, len(header))
	for _, name := range header {
		taken[name] = struct{}{}
	}
	for i, name := range header {
		n, seen := counts[name]
		if !seen {
			counts[name] = 1
			columns[i] = name
			continue
		}
		candidate := name + "." + strconv.Itoa(n)
		for {
			if _, clash := taken[candidate]; !clash {
				break
			}
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		counts[name] = n + 1
		taken[candidate] = struct{}{}
		columns[i] = candidate
	}
	return columns
}
