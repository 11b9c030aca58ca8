package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gendonk/internal/dataset"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var sheet string
	var rows int

	cmd := &cobra.Command{
		Use:         "inspect <file>",
		Short:       "List sheets and columns and preview rows of a spreadsheet or CSV",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := dataset.DetectFormat(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var table *dataset.Table
			switch format {
			case dataset.FormatXLSX:
				sheets, err := dataset.SheetNames(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Sheets: %s\n", strings.Join(sheets, ", "))
				if strings.TrimSpace(sheet) == "" {
					return nil
				}
				if table, err = dataset.ReadSheet(path, sheet); err != nil {
					return err
				}
			default:
				if table, err = dataset.ReadCSVFile(path); err != nil {
					return err
				}
			}
			printTablePreview(out, table, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sheet, "sheet", "s", "", "Sheet to preview (Excel files)")
	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "Number of rows to preview")
	return cmd
}

func printTablePreview(out io.Writer, table *dataset.Table, n int) {
	if table.Empty() {
		fmt.Fprintln(out, "Table is empty")
		return
	}
	fmt.Fprintf(out, "Columns (%d): %s\n", len(table.Columns), strings.Join(table.Columns, ", "))
	fmt.Fprintf(out, "Rows: %d\n", len(table.Rows))
	preview := table.Head(n)
	if len(preview) == 0 {
		return
	}
	cells := make([][]string, 0, len(preview))
	for _, row := range preview {
		line := make([]string, len(table.Columns))
		for i, column := range table.Columns {
			if cell := row.Get(column); cell.Present {
				line[i] = cell.Value
			} else {
				line[i] = "<null>"
			}
		}
		cells = append(cells, line)
	}
	fmt.Fprintln(out, renderTable(table.Columns, cells, nil))
}
