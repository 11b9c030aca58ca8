package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range rows {
			for c, value := range row {
				if value == nil {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(name, ref, value); err != nil {
					t.Fatalf("set cell: %v", err)
				}
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadSheetTranscodesAllRows(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"ready": {
			{"Input_Requirements", "Output_Documents", "Notes"},
			{"What is needed?", "A document", nil},
			{"Second", nil, "kept"},
			{nil, nil, nil},
			{"Fourth", "Answer", nil},
		},
	})

	table, err := ReadSheet(path, "ready")
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %v", table.Columns)
	}
	if len(table.Rows) != 4 {
		t.Fatalf("expected empty row to be kept, got %d rows", len(table.Rows))
	}
	if table.Rows[1].Get("Output_Documents").Present {
		t.Fatal("blank cell should be null")
	}
	if table.Rows[3].Get("Output_Documents").Value != "Answer" {
		t.Fatalf("unexpected last row %+v", table.Rows[3])
	}
}

func TestSheetNamesAndMissingSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"ready": {{"Q", "A"}},
	})
	names, err := SheetNames(path)
	if err != nil {
		t.Fatalf("SheetNames: %v", err)
	}
	if len(names) != 1 || names[0] != "ready" {
		t.Fatalf("unexpected sheets %v", names)
	}

	var buf bytes.Buffer
	err = SheetToCSV(path, "draft", &buf)
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}
