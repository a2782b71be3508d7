package preprocess

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"clusterlab/adapters/tabio"
	"clusterlab/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawCSV = `Country Name,Country Code,gdp,life_exp,co2,obsolete
Italy,ITA,2.1,82.9,5.3,
France,FRA,2.9,82.5,4.6,
Germany,DEU,4.2,81.1,8.4,
Spain,ESP,1.4,83.2,,
Atlantis,ATL,,,,
`

func loadRaw(t *testing.T) *Preprocessor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, []byte(rawCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	p := New(tabio.DefaultOptions(), nil)
	if _, err := p.Load(path, nil); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFieldSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(rawCSV), 0o644))

	p := New(tabio.DefaultOptions(), nil)
	tbl, err := p.Load(path, []string{"gdp", "life_exp"})
	require.NoError(t, err)

	assert.Equal(t, []string{"gdp", "life_exp"}, tbl.Cols)
	assert.Equal(t, 5, tbl.RowCount())
	assert.Same(t, tbl, p.Table())
}

func TestDropSparseColumns(t *testing.T) {
	p := loadRaw(t)

	_, removed, err := p.DropSparse(table.Columns, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// The fully-missing column goes; co2 at 40% missing stays.
	if len(removed) != 1 || removed[0] != "obsolete" {
		t.Fatalf("expected [obsolete], got %v", removed)
	}
	if got := p.Table().Cols; len(got) != 3 {
		t.Fatalf("expected 3 columns to survive, got %v", got)
	}
}

func TestDropSparseRows(t *testing.T) {
	p := loadRaw(t)
	if _, _, err := p.DropSparse(table.Columns, 0.5); err != nil {
		t.Fatal(err)
	}

	_, removed, err := p.DropSparse(table.Rows, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	// The fully-missing entity goes; Spain with one gap stays.
	if len(removed) != 1 || removed[0] != "ATL" {
		t.Fatalf("expected [ATL], got %v", removed)
	}
	for _, key := range p.Table().Keys {
		if key == "ATL" {
			t.Fatal("ATL should have been dropped")
		}
	}
	if p.Table().RowCount() != 4 {
		t.Fatalf("expected 4 rows, got %d", p.Table().RowCount())
	}
}

func TestDropSparseKeepsDenseEntries(t *testing.T) {
	p := loadRaw(t)

	before := append([]string(nil), p.Table().Keys...)
	fractions := p.Table().MissingFraction(table.Rows)
	_, removed, err := p.DropSparse(table.Rows, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	removedSet := make(map[string]bool, len(removed))
	for _, k := range removed {
		removedSet[k] = true
	}
	for i, key := range before {
		if fractions[i] <= 0.5 && removedSet[key] {
			t.Errorf("entity %s at %.0f%% missing should not be dropped", key, fractions[i]*100)
		}
		if fractions[i] == 1 && !removedSet[key] {
			t.Errorf("fully-missing entity %s should be dropped", key)
		}
	}
}

func TestDropSparseThresholdValidation(t *testing.T) {
	p := loadRaw(t)
	for _, bad := range []float64{-0.1, 1.5} {
		if _, _, err := p.DropSparse(table.Rows, bad); err == nil {
			t.Errorf("expected error for threshold %v", bad)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	p := loadRaw(t)
	if _, _, err := p.DropSparse(table.Columns, 0.5); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.DropSparse(table.Rows, 0.5); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "clean.csv")
	if err := p.Export(out, true); err != nil {
		t.Fatal(err)
	}

	got, err := tabio.Read(out, tabio.DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := p.Table() // Export with impute promotes the filled table
	if got.RowCount() != want.RowCount() || got.ColumnCount() != want.ColumnCount() {
		t.Fatalf("shape changed across round trip: %dx%d vs %dx%d",
			got.RowCount(), got.ColumnCount(), want.RowCount(), want.ColumnCount())
	}
	for i := range want.Data {
		if got.Keys[i] != want.Keys[i] {
			t.Fatalf("row %d key mismatch: %s vs %s", i, got.Keys[i], want.Keys[i])
		}
		for j := range want.Data[i] {
			if math.Abs(got.Data[i][j]-want.Data[i][j]) > 1e-9 {
				t.Errorf("cell (%d,%d): want %v, got %v", i, j, want.Data[i][j], got.Data[i][j])
			}
		}
	}
}
