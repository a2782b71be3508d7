// Package cluster defines the result and configuration types shared by the
// clustering procedures.
package cluster

import "sort"

// Noise is the label assigned by density-based procedures to entities that
// belong to no dense region. Regular cluster labels start at 1.
const Noise = -1

// Group is one cluster: its label and the display names of its members in
// entity-index order.
type Group struct {
	Label   int
	Members []string
}

// Grouping is the outcome of one clustering run: a label per entity plus
// the groups sorted by ascending label.
type Grouping struct {
	Labels []int // aligned with the analyzer's entity index
	Groups []Group
}

// NewGrouping builds a Grouping from flat labels aligned with names.
// Labels are sorted ascending; members keep index order.
func NewGrouping(labels []int, names []string) Grouping {
	byLabel := make(map[int][]string)
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], names[i])
	}
	order := make([]int, 0, len(byLabel))
	for l := range byLabel {
		order = append(order, l)
	}
	sort.Ints(order)
	groups := make([]Group, 0, len(order))
	for _, l := range order {
		groups = append(groups, Group{Label: l, Members: byLabel[l]})
	}
	return Grouping{
		Labels: append([]int(nil), labels...),
		Groups: groups,
	}
}

// ClusterCount returns the number of groups excluding noise.
func (g Grouping) ClusterCount() int {
	n := len(g.Groups)
	for _, grp := range g.Groups {
		if grp.Label == Noise {
			n--
		}
	}
	return n
}

// Linkage method for hierarchical agglomeration.
type Method string

const (
	Average  Method = "average"
	Complete Method = "complete"
	Single   Method = "single"
	Weighted Method = "weighted"
	Centroid Method = "centroid" // Euclidean data only
	Median   Method = "median"   // Euclidean data only
	Ward     Method = "ward"     // Euclidean data only
)

// Methods lists every supported linkage method.
func Methods() []Method {
	return []Method{Average, Complete, Single, Weighted, Centroid, Median, Ward}
}

// Metric is a pairwise distance for hierarchical clustering.
type Metric string

const (
	Euclidean   Metric = "euclidean"
	SqEuclidean Metric = "sqeuclidean"
	CityBlock   Metric = "cityblock"
	Chebyshev   Metric = "chebyshev"
	Cosine      Metric = "cosine"
	Correlation Metric = "correlation"
)

// Covariance is the covariance structure of a Gaussian mixture.
type Covariance string

const (
	Full      Covariance = "full"
	Diag      Covariance = "diag"
	Tied      Covariance = "tied"
	Spherical Covariance = "spherical"
)

// HierarchicalConfig tunes one hierarchical run. Threshold is the tree-cut
// distance for flat labels.
type HierarchicalConfig struct {
	Metric       Metric
	Method       Method
	Threshold    float64
	OnComponents int // 0 = full feature space, k>0 = first k PC scores
}

// DensityConfig tunes the DBSCAN run. Eps <= 0 picks a heuristic radius
// from the k-distance curve.
type DensityConfig struct {
	MinClusterSize int
	Eps            float64
	OnComponents   int
}

// DefaultDensityConfig mirrors the toolkit's historical defaults.
func DefaultDensityConfig() DensityConfig {
	return DensityConfig{MinClusterSize: 2}
}

// MixtureConfig tunes Gaussian mixture fits.
type MixtureConfig struct {
	Components   int
	Covariance   Covariance
	Restarts     int // random restarts, best log-likelihood kept
	OnComponents int
}

// DefaultMixtureConfig matches the documented defaults: full covariance,
// fifty restarts.
func DefaultMixtureConfig(components int) MixtureConfig {
	return MixtureConfig{
		Components: components,
		Covariance: Full,
		Restarts:   50,
	}
}

// KMeansConfig tunes one k-means run.
type KMeansConfig struct {
	Clusters     int
	Restarts     int
	OnComponents int
	Evaluate     bool // compute silhouette + Calinski-Harabasz scores
}

// DefaultKMeansConfig matches the documented defaults.
func DefaultKMeansConfig(clusters int) KMeansConfig {
	return KMeansConfig{Clusters: clusters, Restarts: 50, Evaluate: true}
}

// Scores are the clustering-quality metrics of one run.
type Scores struct {
	Silhouette       float64
	CalinskiHarabasz float64
}

// SweepScores are per-k quality curves from a k-means sweep; index 0
// corresponds to KMin.
type SweepScores struct {
	KMin             int
	Silhouette       []float64
	CalinskiHarabasz []float64
}

// BICReport is the outcome of a mixture component-count sweep. Selection
// only; no grouping is stored.
type BICReport struct {
	Counts []int
	Scores []float64
	BestN  int
	Best   float64
}
