package analysis

import (
	"fmt"
	"math"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"
	"clusterlab/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// merge is one agglomeration step. Leaves are nodes 0..n-1; the node formed
// by step s is n+s. Height is the inter-cluster distance at which the two
// nodes were joined.
type merge struct {
	left, right int
	height      float64
	size        int
}

// distanceFunc maps a metric name to its pairwise distance.
func distanceFunc(metric cluster.Metric) (func(a, b []float64) float64, error) {
	switch metric {
	case cluster.Euclidean:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 2) }, nil
	case cluster.SqEuclidean:
		return func(a, b []float64) float64 {
			d := floats.Distance(a, b, 2)
			return d * d
		}, nil
	case cluster.CityBlock:
		return func(a, b []float64) float64 { return floats.Distance(a, b, 1) }, nil
	case cluster.Chebyshev:
		return func(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }, nil
	case cluster.Cosine:
		return cosineDistance, nil
	case cluster.Correlation:
		return func(a, b []float64) float64 { return 1 - stat.Correlation(a, b, nil) }, nil
	default:
		return nil, core.NewClusteringError("linkage", fmt.Sprintf("unknown metric %q", metric))
	}
}

func cosineDistance(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}

// squaredSpace reports whether the method's Lance-Williams recurrence runs
// on squared euclidean distances.
func squaredSpace(method cluster.Method) bool {
	switch method {
	case cluster.Centroid, cluster.Median, cluster.Ward:
		return true
	}
	return false
}

// linkageMatrix agglomerates the observations bottom-up and returns the
// n-1 merges. Geometry-based methods (centroid, median, ward) are defined
// on euclidean data only.
func linkageMatrix(data [][]float64, metric cluster.Metric, method cluster.Method) ([]merge, error) {
	n := len(data)
	if n < 2 {
		return nil, core.NewClusteringError("linkage", "need at least two observations")
	}
	switch method {
	case cluster.Average, cluster.Complete, cluster.Single, cluster.Weighted,
		cluster.Centroid, cluster.Median, cluster.Ward:
	default:
		return nil, core.NewClusteringError("linkage", fmt.Sprintf("unknown method %q", method))
	}
	squared := squaredSpace(method)
	if squared && metric != cluster.Euclidean {
		return nil, core.NewClusteringError("linkage",
			fmt.Sprintf("method %q requires the euclidean metric, got %q", method, metric))
	}
	dist, err := distanceFunc(metric)
	if err != nil {
		return nil, err
	}

	// Working distance matrix; squared-space methods store d^2 and report
	// sqrt(d^2) as the merge height.
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := dist(data[i], data[j])
			if squared {
				v *= v
			}
			d[i][j], d[j][i] = v, v
		}
	}

	active := make([]bool, n)
	size := make([]float64, n)
	node := make([]int, n) // current node id held at slot i
	for i := range active {
		active[i] = true
		size[i] = 1
		node[i] = i
	}

	merges := make([]merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		// Nearest active pair.
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && d[i][j] < best {
					bi, bj, best = i, j, d[i][j]
				}
			}
		}

		height := best
		if squared {
			height = math.Sqrt(math.Max(best, 0))
		}
		merges = append(merges, merge{
			left:   node[bi],
			right:  node[bj],
			height: height,
			size:   int(size[bi] + size[bj]),
		})

		// Lance-Williams update of slot bi against every other cluster.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			d[bi][k] = lanceWilliams(method, d[bi][k], d[bj][k], best, size[bi], size[bj], size[k])
			d[k][bi] = d[bi][k]
		}
		size[bi] += size[bj]
		node[bi] = n + step
		active[bj] = false
	}
	return merges, nil
}

// lanceWilliams combines the distances from clusters i and j to cluster k
// after i and j merge. dik/djk/dij are in the method's working space.
func lanceWilliams(method cluster.Method, dik, djk, dij, ni, nj, nk float64) float64 {
	switch method {
	case cluster.Single:
		return math.Min(dik, djk)
	case cluster.Complete:
		return math.Max(dik, djk)
	case cluster.Average:
		return (ni*dik + nj*djk) / (ni + nj)
	case cluster.Weighted:
		return (dik + djk) / 2
	case cluster.Centroid:
		s := ni + nj
		return (ni*dik+nj*djk)/s - (ni*nj*dij)/(s*s)
	case cluster.Median:
		return dik/2 + djk/2 - dij/4
	case cluster.Ward:
		s := ni + nj + nk
		return ((ni+nk)*dik + (nj+nk)*djk - nk*dij) / s
	}
	return dik
}

// cutTree assigns flat cluster labels by cutting the merge tree at the
// given distance: two entities share a label when every merge joining them
// happened at or below threshold. Labels start at 1 in entity-index order.
func cutTree(merges []merge, n int, threshold float64) []int {
	parent := make([]int, n+len(merges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	// Subtree maximum height guards against inversions from the
	// geometry-based methods.
	maxHeight := make([]float64, n+len(merges))
	for s, m := range merges {
		id := n + s
		h := math.Max(m.height, math.Max(maxHeight[m.left], maxHeight[m.right]))
		maxHeight[id] = h
		if h <= threshold {
			ra, rb := find(m.left), find(m.right)
			parent[ra] = id
			parent[rb] = id
		}
	}

	labels := make([]int, n)
	next := 1
	byRoot := make(map[int]int)
	for i := 0; i < n; i++ {
		root := find(i)
		if _, ok := byRoot[root]; !ok {
			byRoot[root] = next
			next++
		}
		labels[i] = byRoot[root]
	}
	return labels
}

// dendrogramTree converts the merges into a renderable tree. Leaves carry
// entity display names, internal nodes their merge height.
func dendrogramTree(merges []merge, names []string) *ports.TreeNode {
	n := len(names)
	nodes := make([]*ports.TreeNode, n+len(merges))
	for i, name := range names {
		nodes[i] = &ports.TreeNode{Name: name}
	}
	for s, m := range merges {
		nodes[n+s] = &ports.TreeNode{
			Name:     fmt.Sprintf("%.2f", m.height),
			Height:   m.height,
			Children: []*ports.TreeNode{nodes[m.left], nodes[m.right]},
		}
	}
	return nodes[len(nodes)-1]
}
