package analysis

import (
	"sort"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"

	"github.com/mpraski/clusters"
)

// Density runs DBSCAN over the selected feature space. Entities outside any
// dense region receive the noise label. The grouping is stored under
// "dbscan". No cluster count is specified in advance; the partition falls
// out of the density structure.
func (a *Analyzer) Density(cfg cluster.DensityConfig) (cluster.Grouping, error) {
	data, err := a.featureSpace(cfg.OnComponents)
	if err != nil {
		return cluster.Grouping{}, err
	}
	minPts := cfg.MinClusterSize
	if minPts < 1 {
		minPts = cluster.DefaultDensityConfig().MinClusterSize
	}
	eps := cfg.Eps
	if eps <= 0 {
		eps = kDistanceEps(data, minPts)
	}

	c, err := clusters.DBSCAN(minPts, eps, 1, clusters.EuclideanDistance)
	if err != nil {
		return cluster.Grouping{}, core.WrapClusteringError("dbscan", err)
	}
	if err := c.Learn(data); err != nil {
		return cluster.Grouping{}, core.WrapClusteringError("dbscan", err)
	}

	// The library numbers clusters from 1 and leaves noise below that.
	labels := make([]int, len(data))
	for i, g := range c.Guesses() {
		if g < 1 {
			labels[i] = cluster.Noise
		} else {
			labels[i] = g
		}
	}

	g := a.GroupsTable(labels)
	a.storeResult("dbscan", g)
	a.logger.Info("[Analyzer] dbscan: %d clusters, eps %.3f, min points %d", g.ClusterCount(), eps, minPts)
	return g, nil
}

// kDistanceEps picks a neighborhood radius from the k-distance curve: the
// median distance to the k-th nearest neighbor.
func kDistanceEps(data [][]float64, k int) float64 {
	n := len(data)
	if n < 2 {
		return 1
	}
	if k >= n {
		k = n - 1
	}
	kd := make([]float64, n)
	dists := make([]float64, 0, n-1)
	for i := range data {
		dists = dists[:0]
		for j := range data {
			if i != j {
				dists = append(dists, clusters.EuclideanDistance(data[i], data[j]))
			}
		}
		sort.Float64s(dists)
		kd[i] = dists[k-1]
	}
	sort.Float64s(kd)
	return kd[len(kd)/2]
}
