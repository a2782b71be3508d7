// Package table holds the entity table, the canonical data object passed
// between preprocessing and cluster analysis. Rows are keyed by a unique
// entity identifier, carry one display name and N numeric features; NaN
// marks a missing value.
package table

import (
	"math"

	"clusterlab/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Axis selects rows or columns for axis-wise operations.
type Axis int

const (
	Rows Axis = iota
	Columns
)

// Table is dense numeric data indexed by entity key.
type Table struct {
	Keys  []string    // unique entity identifiers, e.g. country codes
	Names []string    // display names aligned with Keys
	Cols  []string    // numeric feature names
	Data  [][]float64 // rows=entities, cols=features, NaN=missing
}

// Validate ensures the table is internally consistent and keys are unique.
func (t *Table) Validate() error {
	if len(t.Data) == 0 {
		return core.ErrEmptyTable
	}
	if len(t.Keys) != len(t.Data) || len(t.Names) != len(t.Data) {
		return core.NewMissingFieldError("entity index")
	}
	seen := make(map[string]struct{}, len(t.Keys))
	for i, key := range t.Keys {
		if key == "" {
			return core.NewDuplicateKeyError("", i)
		}
		if _, dup := seen[key]; dup {
			return core.NewDuplicateKeyError(key, i)
		}
		seen[key] = struct{}{}
	}
	for _, row := range t.Data {
		if len(row) != len(t.Cols) {
			return core.NewMissingFieldError("feature columns")
		}
	}
	return nil
}

// RowCount returns the number of entities.
func (t *Table) RowCount() int { return len(t.Data) }

// ColumnCount returns the number of numeric features.
func (t *Table) ColumnCount() int { return len(t.Cols) }

// Column returns a copy of column j.
func (t *Table) Column(j int) []float64 {
	col := make([]float64, len(t.Data))
	for i, row := range t.Data {
		col[i] = row[j]
	}
	return col
}

// ColumnIndex returns the index of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for j, c := range t.Cols {
		if c == name {
			return j, true
		}
	}
	return -1, false
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Keys:  append([]string(nil), t.Keys...),
		Names: append([]string(nil), t.Names...),
		Cols:  append([]string(nil), t.Cols...),
		Data:  make([][]float64, len(t.Data)),
	}
	for i, row := range t.Data {
		c.Data[i] = append([]float64(nil), row...)
	}
	return c
}

// MissingFraction computes the fraction of missing entries per row or per
// column along the given axis.
func (t *Table) MissingFraction(axis Axis) []float64 {
	if axis == Rows {
		out := make([]float64, len(t.Data))
		for i, row := range t.Data {
			if len(row) == 0 {
				continue
			}
			n := 0
			for _, v := range row {
				if math.IsNaN(v) {
					n++
				}
			}
			out[i] = float64(n) / float64(len(row))
		}
		return out
	}
	out := make([]float64, len(t.Cols))
	if len(t.Data) == 0 {
		return out
	}
	for j := range t.Cols {
		n := 0
		for _, row := range t.Data {
			if math.IsNaN(row[j]) {
				n++
			}
		}
		out[j] = float64(n) / float64(len(t.Data))
	}
	return out
}

// DropRows removes the rows at the given indices and returns their keys.
func (t *Table) DropRows(indices []int) []string {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		drop[i] = struct{}{}
	}
	removed := make([]string, 0, len(indices))
	keys := t.Keys[:0]
	names := t.Names[:0]
	data := t.Data[:0]
	for i := range t.Data {
		if _, ok := drop[i]; ok {
			removed = append(removed, t.Keys[i])
			continue
		}
		keys = append(keys, t.Keys[i])
		names = append(names, t.Names[i])
		data = append(data, t.Data[i])
	}
	t.Keys, t.Names, t.Data = keys, names, data
	return removed
}

// DropColumns removes the columns at the given indices and returns their names.
func (t *Table) DropColumns(indices []int) []string {
	drop := make(map[int]struct{}, len(indices))
	for _, j := range indices {
		drop[j] = struct{}{}
	}
	removed := make([]string, 0, len(indices))
	cols := make([]string, 0, len(t.Cols))
	keep := make([]int, 0, len(t.Cols))
	for j, name := range t.Cols {
		if _, ok := drop[j]; ok {
			removed = append(removed, name)
			continue
		}
		cols = append(cols, name)
		keep = append(keep, j)
	}
	for i, row := range t.Data {
		next := make([]float64, 0, len(keep))
		for _, j := range keep {
			next = append(next, row[j])
		}
		t.Data[i] = next
	}
	t.Cols = cols
	return removed
}

// Matrix returns the numeric data as a dense gonum matrix.
func (t *Table) Matrix() *mat.Dense {
	rows, cols := t.RowCount(), t.ColumnCount()
	m := mat.NewDense(rows, cols, nil)
	for i, row := range t.Data {
		m.SetRow(i, row)
	}
	return m
}

// Observations returns the rows as a slice of feature vectors, the shape
// expected by the clustering library.
func (t *Table) Observations() [][]float64 {
	obs := make([][]float64, len(t.Data))
	for i, row := range t.Data {
		obs[i] = append([]float64(nil), row...)
	}
	return obs
}

// Standardized returns a copy with each column rescaled to zero mean and
// unit variance. Column order and entity index are preserved; constant
// columns are centered only.
func (t *Table) Standardized() *Table {
	out := t.Clone()
	for j := range out.Cols {
		col := out.Column(j)
		mean, std := stat.MeanStdDev(col, nil)
		for i := range out.Data {
			v := out.Data[i][j] - mean
			if std > 0 {
				v /= std
			}
			out.Data[i][j] = v
		}
	}
	return out
}
