// Package preprocess turns a raw indicator file into a clean, numeric,
// entity-indexed table: field selection, type coercion, sparsity pruning
// and nearest-neighbor imputation.
package preprocess

import (
	"fmt"

	"clusterlab/adapters/tabio"
	"clusterlab/domain/table"
	"clusterlab/internal"

	"github.com/montanaflynn/stats"
)

// Preprocessor owns the table being cleaned. Load replaces the held table;
// DropSparse and ImputeNearestNeighbor mutate it in place.
type Preprocessor struct {
	opts   tabio.Options
	tbl    *table.Table
	logger *internal.Logger
}

// New creates a preprocessor. A nil logger is quiet.
func New(opts tabio.Options, logger *internal.Logger) *Preprocessor {
	return &Preprocessor{opts: opts, logger: logger}
}

// Table returns the currently held table.
func (p *Preprocessor) Table() *table.Table { return p.tbl }

// Load reads the file at path and makes it the held table. When fields is
// non-empty only those columns (plus the display-name field) are kept.
// Unparseable numeric text becomes a missing value, never an error.
func (p *Preprocessor) Load(path string, fields []string) (*table.Table, error) {
	t, err := tabio.Read(path, p.opts, fields)
	if err != nil {
		return nil, err
	}
	p.tbl = t
	p.logMissingProfile()
	return t, nil
}

// DropSparse removes every row or column whose missing fraction strictly
// exceeds threshold (0 <= threshold <= 1) and returns the pruned table with
// the removed keys or column names. The held table is mutated in place.
func (p *Preprocessor) DropSparse(axis table.Axis, threshold float64) (*table.Table, []string, error) {
	if p.tbl == nil {
		return nil, nil, fmt.Errorf("no table loaded")
	}
	if threshold < 0 || threshold > 1 {
		return nil, nil, fmt.Errorf("threshold %v outside [0, 1]", threshold)
	}

	fractions := p.tbl.MissingFraction(axis)
	var sparse []int
	for i, f := range fractions {
		if f > threshold {
			sparse = append(sparse, i)
		}
	}

	var removed []string
	if axis == table.Rows {
		removed = p.tbl.DropRows(sparse)
	} else {
		removed = p.tbl.DropColumns(sparse)
	}
	p.logger.Info("[Preprocess] dropped %d sparse entries (threshold %.2f): %v", len(removed), threshold, removed)
	return p.tbl, removed, nil
}

// ImputeNearestNeighbor fills every missing numeric entry from the k
// nearest rows and makes the result the held table. Display names are
// untouched.
func (p *Preprocessor) ImputeNearestNeighbor(k int) (*table.Table, error) {
	if p.tbl == nil {
		return nil, fmt.Errorf("no table loaded")
	}
	filled, err := imputeKNN(p.tbl, k)
	if err != nil {
		return nil, err
	}
	p.tbl = filled
	return filled, nil
}

// Export writes the held table to path (CSV or XLSX by extension). When
// impute is true, imputation runs first and its result becomes the held
// table.
func (p *Preprocessor) Export(path string, impute bool) error {
	if p.tbl == nil {
		return fmt.Errorf("no table loaded")
	}
	if impute {
		if _, err := p.ImputeNearestNeighbor(DefaultNeighbors); err != nil {
			return err
		}
	}
	return tabio.Write(path, p.opts, p.tbl)
}

// logMissingProfile reports how sparse the loaded table is, per column and
// overall.
func (p *Preprocessor) logMissingProfile() {
	if p.logger == nil || p.tbl == nil {
		return
	}
	colFractions := p.tbl.MissingFraction(table.Columns)
	rowFractions := p.tbl.MissingFraction(table.Rows)

	meanCol, _ := stats.Mean(colFractions)
	maxRow, _ := stats.Max(rowFractions)
	p.logger.Info("[Preprocess] loaded %d entities x %d features, mean column sparsity %.1f%%, worst row %.1f%% missing",
		p.tbl.RowCount(), p.tbl.ColumnCount(), meanCol*100, maxRow*100)

	for j, f := range colFractions {
		if f > 0 {
			p.logger.Debug("[Preprocess] column %q missing %.1f%%", p.tbl.Cols[j], f*100)
		}
	}
}
