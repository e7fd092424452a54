// Package importer turns uploaded CSV files into entity and relationship
// submissions for the bulk import pipeline. It detects the field separator,
// validates the header against the per-kind column mappings, and yields raw
// attribute maps; coercion and validation stay with the submission pipeline
// so imported rows pass through the same checks as interactive ones.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/store"
)

// Table is a parsed CSV file: a trimmed header plus the non-empty data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// DetectSeparator picks the field separator from the header line. Pipe wins
// outright because the scraped exports use it, semicolon wins when it
// outnumbers commas, comma otherwise.
func DetectSeparator(headerLine string) rune {
	pipes := strings.Count(headerLine, "|")
	semicolons := strings.Count(headerLine, ";")
	commas := strings.Count(headerLine, ",")

	switch {
	case pipes > 0:
		return '|'
	case semicolons > commas:
		return ';'
	default:
		return ','
	}
}

// Parse reads a CSV file with automatic separator detection. Header cells are
// trimmed, fully empty rows are dropped, and every remaining cell is trimmed
// and sanitized for storage. Rows with a different cell count than the header
// are kept; the mapping layer reports them per row.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("csv file is empty")
	}

	headerLine, _, _ := strings.Cut(string(data), "\n")

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectSeparator(headerLine)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("csv file is empty")
	}

	header := make([]string, len(records[0]))
	for i, cell := range records[0] {
		header[i] = strings.TrimSpace(cell)
	}
	if len(store.DedupeStrings(header)) != len(header) {
		return nil, errors.New("duplicate column names in header")
	}

	table := &Table{Header: header}
	for _, record := range records[1:] {
		row := make([]string, len(record))
		empty := true
		for i, cell := range record {
			cleaned := strings.TrimSpace(util.SanitizePostgresText(cell))
			row[i] = cleaned
			if cleaned != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// columnIndex maps header names to their position.
func (t *Table) columnIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		idx[name] = i
	}
	return idx
}

// cell returns the trimmed value at the given column for a row, tolerating
// short rows.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
