package analysis

import (
	"fmt"

	"clusterlab/domain/cluster"

	"golang.org/x/sync/errgroup"
)

// Hierarchical agglomerates the selected feature space with the configured
// metric and method, cuts the tree at the threshold distance and stores the
// grouping under "hierarchical_<method>_<metric>".
func (a *Analyzer) Hierarchical(cfg cluster.HierarchicalConfig) (cluster.Grouping, error) {
	data, err := a.featureSpace(cfg.OnComponents)
	if err != nil {
		return cluster.Grouping{}, err
	}

	merges, err := linkageMatrix(data, cfg.Metric, cfg.Method)
	if err != nil {
		return cluster.Grouping{}, err
	}
	labels := cutTree(merges, len(data), cfg.Threshold)
	g := a.GroupsTable(labels)

	name := fmt.Sprintf("hierarchical_%s_%s", cfg.Method, cfg.Metric)
	a.storeResult(name, g)
	a.renderDendrogram(name, merges)
	a.logger.Info("[Analyzer] %s: %d clusters at threshold %.3f", name, g.ClusterCount(), cfg.Threshold)
	return g, nil
}

// HierarchicalAll runs every supported linkage method over the same feature
// space, one stored result per method. Methods are independent of each
// other, so they run in parallel; result writes are serialized by the
// session. Geometry-based methods are skipped for non-euclidean metrics.
func (a *Analyzer) HierarchicalAll(metric cluster.Metric, threshold float64, onComponents int) (map[string]cluster.Grouping, error) {
	// Fail on a bad projection once, before spawning anything.
	if _, err := a.featureSpace(onComponents); err != nil {
		return nil, err
	}

	out := make(map[string]cluster.Grouping)
	var eg errgroup.Group
	for _, method := range cluster.Methods() {
		if squaredSpace(method) && metric != cluster.Euclidean {
			a.logger.Debug("[Analyzer] skipping %s linkage: needs euclidean metric", method)
			continue
		}
		cfg := cluster.HierarchicalConfig{
			Metric:       metric,
			Method:       method,
			Threshold:    threshold,
			OnComponents: onComponents,
		}
		eg.Go(func() error {
			g, err := a.Hierarchical(cfg)
			if err != nil {
				return err
			}
			a.mu.Lock()
			out[fmt.Sprintf("hierarchical_%s_%s", cfg.Method, cfg.Metric)] = g
			a.mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Analyzer) renderDendrogram(name string, merges []merge) {
	if a.renderer == nil {
		return
	}
	root := dendrogramTree(merges, a.names)
	if err := a.renderer.Tree("Dendrogram "+name, root); err != nil {
		a.logger.Warn("[Analyzer] dendrogram render failed: %v", err)
	}
}
