package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseCSV reads delimiter-separated rows. Empty rows are skipped; rows are
// kept structured for row-level chunking.
func parseCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	if bytes.Contains(data, []byte("\t")) && !bytes.Contains(data, []byte(",")) {
		reader.Comma = '\t'
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if rowHasContent(record) {
			rows = append(rows, record)
		}
	}

	if len(rows) == 0 {
		return &Result{}, nil
	}
	return &Result{Tables: []Table{{Rows: rows}}}, nil
}

// parseXLSX extracts every sheet row-by-row via excelize. One table per
// sheet; empty rows skipped.
func parseXLSX(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	result := &Result{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		var kept [][]string
		for _, row := range rows {
			if rowHasContent(row) {
				kept = append(kept, row)
			}
		}
		if len(kept) > 0 {
			result.Tables = append(result.Tables, Table{Rows: kept})
		}
	}

	return result, nil
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

// RenderRow joins a structured row into the delimiter-joined text form used
// for embedding.
func RenderRow(row []string) string {
	cells := make([]string, 0, len(row))
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, " | ")
}
