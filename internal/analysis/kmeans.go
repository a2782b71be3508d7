package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"
	"clusterlab/ports"

	"github.com/mpraski/clusters"
)

// kmeansSeed re-seeds centroid initialization before every fit, keeping
// repeated runs over identical input reproducible.
const kmeansSeed = 42

const kmeansIterations = 1000

// KMeans fits k-means over the selected feature space with the configured
// number of restarts, keeping the restart with the lowest within-cluster
// sum of squares. The grouping is stored under "kmeans<n>". When Evaluate
// is set, silhouette and Calinski-Harabasz scores are computed against the
// same feature space used for fitting.
func (a *Analyzer) KMeans(cfg cluster.KMeansConfig) (cluster.Grouping, *cluster.Scores, error) {
	data, err := a.featureSpace(cfg.OnComponents)
	if err != nil {
		return cluster.Grouping{}, nil, err
	}

	labels, err := fitKMeans(data, cfg.Clusters, cfg.Restarts)
	if err != nil {
		return cluster.Grouping{}, nil, err
	}
	g := a.GroupsTable(labels)
	a.storeResult(fmt.Sprintf("kmeans%d", cfg.Clusters), g)

	var scores *cluster.Scores
	if cfg.Evaluate {
		s, err := evaluateClustering(data, labels)
		if err != nil {
			return g, nil, err
		}
		scores = &s
		a.logger.Info("[Analyzer] kmeans%d: silhouette %.3f, calinski-harabasz %.1f",
			cfg.Clusters, s.Silhouette, s.CalinskiHarabasz)
	}
	return g, scores, nil
}

// KMeansSweep fits k-means for every cluster count in [kMin, kMax), stores
// each run and returns the silhouette and Calinski-Harabasz curves for
// comparison. Runs stay sequential: the shared seed discipline is what
// makes each fit reproducible.
func (a *Analyzer) KMeansSweep(kMin, kMax, restarts, onComponents int) (cluster.SweepScores, error) {
	if kMin < 2 || kMax <= kMin {
		return cluster.SweepScores{}, core.NewClusteringError("kmeans", fmt.Sprintf("invalid sweep range [%d, %d)", kMin, kMax))
	}
	data, err := a.featureSpace(onComponents)
	if err != nil {
		return cluster.SweepScores{}, err
	}

	sweep := cluster.SweepScores{
		KMin:             kMin,
		Silhouette:       make([]float64, 0, kMax-kMin),
		CalinskiHarabasz: make([]float64, 0, kMax-kMin),
	}
	for k := kMin; k < kMax; k++ {
		labels, err := fitKMeans(data, k, restarts)
		if err != nil {
			return cluster.SweepScores{}, err
		}
		a.storeResult(fmt.Sprintf("kmeans%d", k), a.GroupsTable(labels))
		s, err := evaluateClustering(data, labels)
		if err != nil {
			return cluster.SweepScores{}, err
		}
		sweep.Silhouette = append(sweep.Silhouette, s.Silhouette)
		sweep.CalinskiHarabasz = append(sweep.CalinskiHarabasz, s.CalinskiHarabasz)
	}

	a.renderSweep(sweep)
	return sweep, nil
}

func fitKMeans(data [][]float64, k, restarts int) ([]int, error) {
	if k < 2 {
		return nil, core.NewClusteringError("kmeans", fmt.Sprintf("need at least 2 clusters, got %d", k))
	}
	if k > len(data) {
		return nil, core.NewClusteringError("kmeans", fmt.Sprintf("%d clusters exceeds %d observations", k, len(data)))
	}
	if restarts < 1 {
		restarts = 1
	}

	// The library draws initial centroids from the global source.
	rand.Seed(kmeansSeed)

	var best []int
	bestWSS := math.Inf(1)
	for r := 0; r < restarts; r++ {
		c, err := clusters.KMeans(kmeansIterations, k, clusters.EuclideanDistance)
		if err != nil {
			return nil, core.WrapClusteringError("kmeans", err)
		}
		if err := c.Learn(data); err != nil {
			return nil, core.WrapClusteringError("kmeans", err)
		}
		labels := append([]int(nil), c.Guesses()...)
		wss := withinSumOfSquares(data, labels)
		if wss < bestWSS {
			bestWSS = wss
			best = labels
		}
	}
	return best, nil
}

// withinSumOfSquares measures fit quality of one restart: total squared
// distance from each observation to its cluster mean.
func withinSumOfSquares(data [][]float64, labels []int) float64 {
	centroids, _ := centroidsOf(data, labels)
	total := 0.0
	for i, row := range data {
		c := centroids[labels[i]]
		for j, v := range row {
			diff := v - c[j]
			total += diff * diff
		}
	}
	return total
}

func centroidsOf(data [][]float64, labels []int) (map[int][]float64, map[int]int) {
	dim := len(data[0])
	centroids := make(map[int][]float64)
	counts := make(map[int]int)
	for i, row := range data {
		l := labels[i]
		if centroids[l] == nil {
			centroids[l] = make([]float64, dim)
		}
		for j, v := range row {
			centroids[l][j] += v
		}
		counts[l]++
	}
	for l, c := range centroids {
		for j := range c {
			c[j] /= float64(counts[l])
		}
	}
	return centroids, counts
}

func (a *Analyzer) renderSweep(sweep cluster.SweepScores) {
	if a.renderer == nil {
		return
	}
	x := make([]float64, len(sweep.Silhouette))
	for i := range x {
		x[i] = float64(sweep.KMin + i)
	}
	err := a.renderer.Line("KMeans cluster-count comparison", x, []ports.LineSeries{
		{Name: "Silhouette Score", Y: sweep.Silhouette},
		{Name: "Calinski-Harabasz Score", Y: sweep.CalinskiHarabasz},
	})
	if err != nil {
		a.logger.Warn("[Analyzer] sweep render failed: %v", err)
	}
}
