// Package tabio reads and writes entity tables as delimited text or Excel
// workbooks. The file extension selects the format.
package tabio

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"clusterlab/domain/core"
	"clusterlab/domain/table"
)

// Options control how raw records become an entity table.
type Options struct {
	KeyField      string   // unique entity identifier column
	NameField     string   // non-numeric display-name column
	MissingTokens []string // cell values treated as missing
}

// DefaultOptions targets the World Bank indicator layout the toolkit was
// built around.
func DefaultOptions() Options {
	return Options{
		KeyField:      "Country Code",
		NameField:     "Country Name",
		MissingTokens: []string{"", "..", "NA", "N/A"},
	}
}

// Read loads a table from path. When fields is non-empty only those numeric
// columns (plus the display-name column) are retained. Every retained cell
// outside the name column is coerced to float64; unparseable values become
// NaN, never an error.
func Read(path string, opts Options, fields []string) (*table.Table, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	return fromRecords(records, opts, fields)
}

// Write stores the table at path, CSV or XLSX by extension. Missing values
// are written as empty cells.
func Write(path string, opts Options, t *table.Table) error {
	records := toRecords(opts, t)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeExcel(path, records)
	default:
		return writeCSV(path, records)
	}
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readExcel(path)
	default:
		return readCSV(path)
	}
}

func fromRecords(records [][]string, opts Options, fields []string) (*table.Table, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("input must have a header row and at least one data row: %w", core.ErrEmptyTable)
	}
	header := records[0]

	keyIdx := indexOf(header, opts.KeyField)
	if keyIdx < 0 {
		return nil, core.NewMissingFieldError(opts.KeyField)
	}
	nameIdx := indexOf(header, opts.NameField)
	if nameIdx < 0 {
		return nil, core.NewMissingFieldError(opts.NameField)
	}

	// Resolve the numeric columns to keep, in header order unless the
	// caller chose a subset.
	var colIdx []int
	var cols []string
	if len(fields) > 0 {
		for _, f := range fields {
			j := indexOf(header, f)
			if j < 0 {
				return nil, core.NewMissingFieldError(f)
			}
			colIdx = append(colIdx, j)
			cols = append(cols, f)
		}
	} else {
		for j, name := range header {
			if j == keyIdx || j == nameIdx {
				continue
			}
			colIdx = append(colIdx, j)
			cols = append(cols, name)
		}
	}

	t := &table.Table{Cols: cols}
	seen := make(map[string]struct{}, len(records)-1)
	for i, rec := range records[1:] {
		key := ""
		if keyIdx < len(rec) {
			key = strings.TrimSpace(rec[keyIdx])
		}
		if _, dup := seen[key]; dup || key == "" {
			return nil, core.NewDuplicateKeyError(key, i+1)
		}
		seen[key] = struct{}{}

		name := ""
		if nameIdx < len(rec) {
			name = strings.TrimSpace(rec[nameIdx])
		}

		row := make([]float64, len(colIdx))
		for k, j := range colIdx {
			cell := ""
			if j < len(rec) {
				cell = strings.TrimSpace(rec[j])
			}
			row[k] = coerce(cell, opts.MissingTokens)
		}
		t.Keys = append(t.Keys, key)
		t.Names = append(t.Names, name)
		t.Data = append(t.Data, row)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func toRecords(opts Options, t *table.Table) [][]string {
	header := append([]string{opts.KeyField, opts.NameField}, t.Cols...)
	records := make([][]string, 0, t.RowCount()+1)
	records = append(records, header)
	for i, row := range t.Data {
		rec := make([]string, 0, len(header))
		rec = append(rec, t.Keys[i], t.Names[i])
		for _, v := range row {
			if math.IsNaN(v) {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		records = append(records, rec)
	}
	return records
}

func coerce(cell string, missing []string) float64 {
	for _, tok := range missing {
		if cell == tok {
			return math.NaN()
		}
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func indexOf(header []string, name string) int {
	for j, h := range header {
		if strings.TrimSpace(h) == name {
			return j
		}
	}
	return -1
}
