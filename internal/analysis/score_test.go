package analysis

import (
	"math"
	"testing"
)

func separated() ([][]float64, []int) {
	data := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
	return data, []int{1, 1, 1, 2, 2, 2}
}

func TestSilhouetteScore(t *testing.T) {
	data, labels := separated()
	got, err := silhouetteScore(data, labels)
	if err != nil {
		t.Fatal(err)
	}
	if got < 0.95 || got > 1 {
		t.Fatalf("tight separated clusters should score near 1, got %v", got)
	}

	// Mixing the labels across the blobs must hurt the score.
	worse, err := silhouetteScore(data, []int{1, 2, 1, 2, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if worse >= got {
		t.Fatalf("a shuffled labeling should score lower: %v vs %v", worse, got)
	}
}

func TestSilhouetteScoreDegenerate(t *testing.T) {
	data, _ := separated()
	tests := []struct {
		name   string
		labels []int
	}{
		{name: "single cluster", labels: []int{1, 1, 1, 1, 1, 1}},
		{name: "all singletons", labels: []int{1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := silhouetteScore(data, tt.labels); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestCalinskiHarabaszScore(t *testing.T) {
	data, labels := separated()
	got, err := calinskiHarabaszScore(data, labels)
	if err != nil {
		t.Fatal(err)
	}
	if got <= 1 {
		t.Fatalf("separated clusters should dominate the within dispersion, got %v", got)
	}

	worse, err := calinskiHarabaszScore(data, []int{1, 2, 1, 2, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if worse >= got {
		t.Fatalf("a shuffled labeling should score lower: %v vs %v", worse, got)
	}
}

func TestCalinskiHarabaszZeroWithin(t *testing.T) {
	data := [][]float64{{0, 0}, {0, 0}, {5, 5}, {5, 5}}
	got, err := calinskiHarabaszScore(data, []int{1, 1, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("duplicated points per cluster should score +Inf, got %v", got)
	}
}

func TestEvaluateClustering(t *testing.T) {
	data, labels := separated()
	s, err := evaluateClustering(data, labels)
	if err != nil {
		t.Fatal(err)
	}
	if s.Silhouette <= 0 || s.CalinskiHarabasz <= 0 {
		t.Fatalf("expected positive scores, got %+v", s)
	}
}
