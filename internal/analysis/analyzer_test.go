package analysis

import (
	"errors"
	"math"
	"testing"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"
	"clusterlab/domain/table"
)

// twoBlobTable is six entities in two tight, well-separated groups. The
// first three belong together, as do the last three.
func twoBlobTable() *table.Table {
	return &table.Table{
		Keys:  []string{"A1", "A2", "A3", "B1", "B2", "B3"},
		Names: []string{"Alfa", "Anna", "Aldo", "Bert", "Bill", "Beth"},
		Cols:  []string{"x", "y"},
		Data: [][]float64{
			{0, 0},
			{0.2, 0.1},
			{-0.1, 0.2},
			{10, 10},
			{10.2, 9.9},
			{9.9, 10.1},
		},
	}
}

func newBlobAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(twoBlobTable(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// splitsBlobs reports whether labels separate the first half of the
// entities from the second, whatever the label values are.
func splitsBlobs(labels []int) bool {
	half := len(labels) / 2
	for i := 1; i < half; i++ {
		if labels[i] != labels[0] {
			return false
		}
	}
	for i := half + 1; i < len(labels); i++ {
		if labels[i] != labels[half] {
			return false
		}
	}
	return labels[0] != labels[half]
}

func TestNewAnalyzerRejectsMissingValues(t *testing.T) {
	tbl := twoBlobTable()
	tbl.Data[2][1] = math.NaN()
	if _, err := NewAnalyzer(tbl, nil, nil); err == nil {
		t.Fatal("expected an error for a table with gaps")
	}
}

func TestComputePrincipalComponents(t *testing.T) {
	a := newBlobAnalyzer(t)
	ratios, err := a.ComputePrincipalComponents()
	if err != nil {
		t.Fatal(err)
	}
	if len(ratios) != 2 {
		t.Fatalf("expected 2 components, got %d", len(ratios))
	}
	sum := 0.0
	for i, r := range ratios {
		if r < 0 {
			t.Errorf("ratio %d negative: %v", i, r)
		}
		sum += r
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("ratios should sum to 1, got %v", sum)
	}
	// Both features vary along the same blob axis, so the first component
	// carries almost everything.
	if ratios[0] < 0.9 {
		t.Errorf("expected the first component to dominate, got %v", ratios[0])
	}
	if got := a.ExplainedVarianceRatios(); len(got) != 2 || got[0] != ratios[0] {
		t.Errorf("stored ratios mismatch: %v", got)
	}
}

func TestProjectionRequiresPrecompute(t *testing.T) {
	a := newBlobAnalyzer(t)

	_, err := a.Hierarchical(cluster.HierarchicalConfig{
		Metric: cluster.Euclidean, Method: cluster.Average, Threshold: 1, OnComponents: 1,
	})
	if !errors.Is(err, core.ErrPrecomputeRequired) {
		t.Fatalf("expected precompute error, got %v", err)
	}
	if err := a.PlotAlongComponents(0, 1); !errors.Is(err, core.ErrPrecomputeRequired) {
		t.Fatalf("expected precompute error, got %v", err)
	}
}

func TestClusterOnLeadingComponents(t *testing.T) {
	a := newBlobAnalyzer(t)
	if _, err := a.ComputePrincipalComponents(); err != nil {
		t.Fatal(err)
	}
	// The first component alone separates the blobs.
	g, err := a.Hierarchical(cluster.HierarchicalConfig{
		Metric: cluster.Euclidean, Method: cluster.Average, Threshold: 1, OnComponents: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !splitsBlobs(g.Labels) {
		t.Fatalf("projection onto PC1 should separate the blobs, got %v", g.Labels)
	}
}

func TestGroupsTableIsPartition(t *testing.T) {
	a := newBlobAnalyzer(t)
	g := a.GroupsTable([]int{1, 2, 1, 3, 2, 3})

	seen := make(map[string]int)
	for _, grp := range g.Groups {
		for _, m := range grp.Members {
			seen[m]++
		}
	}
	for _, name := range a.Names() {
		if seen[name] != 1 {
			t.Errorf("entity %q appears %d times across groups", name, seen[name])
		}
	}
}

func TestResultsAreCopied(t *testing.T) {
	a := newBlobAnalyzer(t)
	a.storeResult("manual", a.GroupsTable([]int{1, 1, 1, 2, 2, 2}))

	got := a.Results()
	delete(got, "manual")
	if _, ok := a.Result("manual"); !ok {
		t.Fatal("mutating the returned map must not affect the session")
	}
}
