package analysis

import (
	"testing"

	"clusterlab/domain/cluster"
)

func TestKMeansSeparatesBlobs(t *testing.T) {
	a := newBlobAnalyzer(t)
	cfg := cluster.KMeansConfig{Clusters: 2, Restarts: 10, Evaluate: true}

	g, scores, err := a.KMeans(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !splitsBlobs(g.Labels) {
		t.Fatalf("expected the two blobs as clusters, got %v", g.Labels)
	}
	if _, ok := a.Result("kmeans2"); !ok {
		t.Fatal("run not stored under kmeans2")
	}
	if scores == nil {
		t.Fatal("expected quality scores when Evaluate is set")
	}
	if scores.Silhouette < 0.8 || scores.Silhouette > 1 {
		t.Errorf("tight separated blobs should score a high silhouette, got %v", scores.Silhouette)
	}
	if scores.CalinskiHarabasz <= 0 {
		t.Errorf("expected a positive Calinski-Harabasz score, got %v", scores.CalinskiHarabasz)
	}
}

func TestKMeansIsReproducible(t *testing.T) {
	a := newBlobAnalyzer(t)
	cfg := cluster.KMeansConfig{Clusters: 2, Restarts: 10}

	first, _, err := a.KMeans(cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := a.KMeans(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !samePartition(first.Labels, second.Labels) {
		t.Fatalf("identical input must give the same partition: %v vs %v", first.Labels, second.Labels)
	}
}

// samePartition reports whether two labelings group the entities the same
// way, ignoring the label values themselves.
func samePartition(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	fwd := make(map[int]int)
	rev := make(map[int]int)
	for i := range a {
		if l, ok := fwd[a[i]]; ok && l != b[i] {
			return false
		}
		if l, ok := rev[b[i]]; ok && l != a[i] {
			return false
		}
		fwd[a[i]] = b[i]
		rev[b[i]] = a[i]
	}
	return true
}

func TestKMeansValidation(t *testing.T) {
	a := newBlobAnalyzer(t)
	tests := []struct {
		name string
		cfg  cluster.KMeansConfig
	}{
		{name: "too few clusters", cfg: cluster.KMeansConfig{Clusters: 1}},
		{name: "more clusters than entities", cfg: cluster.KMeansConfig{Clusters: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := a.KMeans(tt.cfg); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestKMeansSweep(t *testing.T) {
	a := newBlobAnalyzer(t)
	sweep, err := a.KMeansSweep(2, 4, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if sweep.KMin != 2 || len(sweep.Silhouette) != 2 || len(sweep.CalinskiHarabasz) != 2 {
		t.Fatalf("expected curves for k=2,3, got %+v", sweep)
	}
	for _, name := range []string{"kmeans2", "kmeans3"} {
		if _, ok := a.Result(name); !ok {
			t.Errorf("%s missing from the session results", name)
		}
	}
	// Two real blobs: the natural count scores best.
	if sweep.Silhouette[0] <= sweep.Silhouette[1] {
		t.Errorf("silhouette at k=2 should beat k=3: %v", sweep.Silhouette)
	}
}

func TestKMeansSweepValidation(t *testing.T) {
	a := newBlobAnalyzer(t)
	for _, r := range [][2]int{{1, 4}, {3, 3}, {4, 2}} {
		if _, err := a.KMeansSweep(r[0], r[1], 1, 0); err == nil {
			t.Errorf("expected an error for range [%d, %d)", r[0], r[1])
		}
	}
}
