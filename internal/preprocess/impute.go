package preprocess

import (
	"math"
	"sort"

	"clusterlab/domain/core"
	"clusterlab/domain/table"
)

// DefaultNeighbors is the neighbor count used when none is given.
const DefaultNeighbors = 2

// imputeKNN fills missing entries with an inverse-distance weighted average
// of the k nearest rows. Distances are masked euclidean: computed over the
// columns both rows have observed, scaled by the shared count. Donor values
// come from the original observations only, so fill order cannot matter.
func imputeKNN(t *table.Table, k int) (*table.Table, error) {
	if t.ColumnCount() == 0 {
		return nil, core.NewImputationError("no numeric columns remain")
	}
	if k < 1 {
		k = DefaultNeighbors
	}

	src := t.Clone()
	out := t.Clone()

	// Column means as the fallback when no neighbor observed the column.
	colMeans := make([]float64, src.ColumnCount())
	for j := range src.Cols {
		sum, n := 0.0, 0
		for _, row := range src.Data {
			if !math.IsNaN(row[j]) {
				sum += row[j]
				n++
			}
		}
		if n == 0 {
			return nil, core.NewImputationError("column " + src.Cols[j] + " has no observed values")
		}
		colMeans[j] = sum / float64(n)
	}

	for i, row := range src.Data {
		for j, v := range row {
			if !math.IsNaN(v) {
				continue
			}
			out.Data[i][j] = imputeCell(src, i, j, k, colMeans[j])
		}
	}
	return out, nil
}

type donor struct {
	dist  float64
	value float64
}

func imputeCell(src *table.Table, i, j, k int, fallback float64) float64 {
	var donors []donor
	for r, row := range src.Data {
		if r == i || math.IsNaN(row[j]) {
			continue
		}
		d, ok := maskedDistance(src.Data[i], row)
		if !ok {
			continue
		}
		donors = append(donors, donor{dist: d, value: row[j]})
	}
	if len(donors) == 0 {
		return fallback
	}

	sort.Slice(donors, func(a, b int) bool { return donors[a].dist < donors[b].dist })
	if len(donors) > k {
		donors = donors[:k]
	}

	const eps = 1e-6
	num, den := 0.0, 0.0
	for _, d := range donors {
		w := 1 / (d.dist + eps)
		num += w * d.value
		den += w
	}
	return num / den
}

// maskedDistance is the root mean squared difference over the columns both
// rows observe. Returns false when the rows share no observed column.
func maskedDistance(a, b []float64) (float64, bool) {
	sum, n := 0.0, 0
	for j := range a {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			continue
		}
		diff := a[j] - b[j]
		sum += diff * diff
		n++
	}
	if n == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(n)), true
}
