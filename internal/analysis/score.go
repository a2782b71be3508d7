package analysis

import (
	"math"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"

	"gonum.org/v1/gonum/floats"
)

// evaluateClustering computes the two unsupervised quality metrics against
// the feature space the labels were fitted on.
func evaluateClustering(data [][]float64, labels []int) (cluster.Scores, error) {
	sil, err := silhouetteScore(data, labels)
	if err != nil {
		return cluster.Scores{}, err
	}
	ch, err := calinskiHarabaszScore(data, labels)
	if err != nil {
		return cluster.Scores{}, err
	}
	return cluster.Scores{Silhouette: sil, CalinskiHarabasz: ch}, nil
}

// silhouetteScore is the mean over all observations of (b-a)/max(a,b),
// where a is the mean intra-cluster distance and b the mean distance to the
// nearest other cluster. Singleton clusters contribute zero.
func silhouetteScore(data [][]float64, labels []int) (float64, error) {
	n := len(data)
	counts := labelCounts(labels)
	if len(counts) < 2 || len(counts) >= n {
		return 0, core.NewClusteringError("silhouette", "needs between 2 and n-1 clusters")
	}

	total := 0.0
	for i := range data {
		if counts[labels[i]] == 1 {
			continue
		}
		// Mean distance from i to every cluster.
		sums := make(map[int]float64)
		for j := range data {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(data[i], data[j], 2)
		}
		a := sums[labels[i]] / float64(counts[labels[i]]-1)
		b := math.Inf(1)
		for l, s := range sums {
			if l == labels[i] {
				continue
			}
			if m := s / float64(counts[l]); m < b {
				b = m
			}
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}

// calinskiHarabaszScore is the ratio of between-cluster to within-cluster
// dispersion, scaled by the degrees of freedom.
func calinskiHarabaszScore(data [][]float64, labels []int) (float64, error) {
	n := len(data)
	counts := labelCounts(labels)
	k := len(counts)
	if k < 2 || k >= n {
		return 0, core.NewClusteringError("calinski-harabasz", "needs between 2 and n-1 clusters")
	}

	dim := len(data[0])
	grand := make([]float64, dim)
	for _, row := range data {
		floats.Add(grand, row)
	}
	floats.Scale(1/float64(n), grand)

	centroids, _ := centroidsOf(data, labels)

	between, within := 0.0, 0.0
	for l, c := range centroids {
		d := floats.Distance(c, grand, 2)
		between += float64(counts[l]) * d * d
	}
	for i, row := range data {
		d := floats.Distance(row, centroids[labels[i]], 2)
		within += d * d
	}
	if within == 0 {
		return math.Inf(1), nil
	}
	return (between / float64(k-1)) / (within / float64(n-k)), nil
}

func labelCounts(labels []int) map[int]int {
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
