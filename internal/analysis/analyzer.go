// Package analysis turns a cleaned numeric entity table into labeled
// partitions: standardization, optional principal-component projection, the
// clustering procedures and their quality scores. One Analyzer is one
// session; every stored run belongs to it.
package analysis

import (
	"fmt"
	"math"
	"sync"

	"clusterlab/adapters/report"
	"clusterlab/adapters/tabio"
	"clusterlab/domain/cluster"
	"clusterlab/domain/core"
	"clusterlab/domain/table"
	"clusterlab/internal"
	"clusterlab/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Analyzer holds the session state. The standardized table and the computed
// principal components are immutable once set; clustering methods only read
// them, so runs with different configurations can execute in parallel. The
// results map is the single mutable collection and every write goes through
// storeResult.
type Analyzer struct {
	session  core.SessionID
	tbl      *table.Table // standardized features
	names    []string     // display names aligned with tbl rows
	renderer ports.Renderer
	logger   *internal.Logger

	scores *mat.Dense // PC scores, nil until ComputePrincipalComponents
	ratios []float64  // explained-variance ratio per component

	mu      sync.Mutex
	results map[string]cluster.Grouping
}

// NewAnalyzer standardizes the given cleaned table and starts an empty
// session. Renderer and logger may be nil.
func NewAnalyzer(t *table.Table, renderer ports.Renderer, logger *internal.Logger) (*Analyzer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	for _, row := range t.Data {
		for _, v := range row {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("table contains missing values; impute before analysis")
			}
		}
	}
	a := &Analyzer{
		session:  core.NewSessionID(),
		tbl:      t.Standardized(),
		names:    append([]string(nil), t.Names...),
		renderer: renderer,
		logger:   logger,
		results:  make(map[string]cluster.Grouping),
	}
	a.logger.Info("[Analyzer] session %s: %d entities, %d features", a.session, t.RowCount(), t.ColumnCount())
	return a, nil
}

// LoadAnalyzer reads a cleaned table from path and constructs the session.
func LoadAnalyzer(path string, opts tabio.Options, renderer ports.Renderer, logger *internal.Logger) (*Analyzer, error) {
	t, err := tabio.Read(path, opts, nil)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(t, renderer, logger)
}

// Session returns the session identifier.
func (a *Analyzer) Session() core.SessionID { return a.session }

// Names returns the entity display names in index order.
func (a *Analyzer) Names() []string { return append([]string(nil), a.names...) }

// ComputePrincipalComponents fits a full-rank orthogonal decomposition over
// the standardized features and stores the component scores for later
// projections. Returns the explained-variance ratio per component.
func (a *Analyzer) ComputePrincipalComponents() ([]float64, error) {
	var pc stat.PC
	if ok := pc.PrincipalComponents(a.tbl.Matrix(), nil); !ok {
		return nil, core.NewClusteringError("pca", "decomposition failed")
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var scores mat.Dense
	scores.Mul(a.tbl.Matrix(), &vecs)
	a.scores = &scores

	total := floats.Sum(vars)
	ratios := make([]float64, len(vars))
	for i, v := range vars {
		if total > 0 {
			ratios[i] = v / total
		}
	}
	a.ratios = ratios

	a.renderVarianceCurve(ratios)
	a.logger.Info("[Analyzer] computed %d principal components, first explains %.1f%%", len(ratios), first(ratios)*100)
	return append([]float64(nil), ratios...), nil
}

// ExplainedVarianceRatios returns the per-component variance ratios, or nil
// before ComputePrincipalComponents.
func (a *Analyzer) ExplainedVarianceRatios() []float64 {
	return append([]float64(nil), a.ratios...)
}

// featureSpace selects the observations every clustering method operates
// on: the full standardized space for onComponents == 0, otherwise the
// first onComponents principal-component scores.
func (a *Analyzer) featureSpace(onComponents int) ([][]float64, error) {
	if onComponents <= 0 {
		return a.tbl.Observations(), nil
	}
	if a.scores == nil {
		return nil, fmt.Errorf("%w: call ComputePrincipalComponents before projecting", core.ErrPrecomputeRequired)
	}
	rows, cols := a.scores.Dims()
	if onComponents < cols {
		cols = onComponents
	}
	data := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = a.scores.At(i, j)
		}
		data[i] = row
	}
	return data, nil
}

// GroupsTable converts flat labels aligned with the entity index into a
// grouping: one group per distinct label, labels ascending, members in
// index order.
func (a *Analyzer) GroupsTable(labels []int) cluster.Grouping {
	return cluster.NewGrouping(labels, a.names)
}

// storeResult records a finished run. Never called on failure, so a failed
// run leaves the collection unchanged for its name.
func (a *Analyzer) storeResult(name string, g cluster.Grouping) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[name] = g
	a.logger.Debug("[Analyzer] stored run %q with %d groups", name, len(g.Groups))
}

// Result returns the grouping stored under name.
func (a *Analyzer) Result(name string) (cluster.Grouping, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.results[name]
	return g, ok
}

// Results returns a copy of the session's run collection.
func (a *Analyzer) Results() map[string]cluster.Grouping {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]cluster.Grouping, len(a.results))
	for k, v := range a.results {
		out[k] = v
	}
	return out
}

// WriteReport writes an HTML summary of every stored run to path.
func (a *Analyzer) WriteReport(path string) error {
	return report.WriteHTML(path, a.session, a.Results())
}

// PlotAlongComponents renders the entities along two principal components,
// labeled by display name. Requires ComputePrincipalComponents.
func (a *Analyzer) PlotAlongComponents(pc1, pc2 int) error {
	if a.scores == nil {
		return fmt.Errorf("%w: call ComputePrincipalComponents before plotting", core.ErrPrecomputeRequired)
	}
	_, cols := a.scores.Dims()
	if pc1 < 0 || pc2 < 0 || pc1 >= cols || pc2 >= cols {
		return fmt.Errorf("component out of range: have %d components", cols)
	}
	if a.renderer == nil {
		return nil
	}
	points := make([]ports.ScatterPoint, len(a.names))
	for i, name := range a.names {
		points[i] = ports.ScatterPoint{
			Name: name,
			X:    a.scores.At(i, pc1),
			Y:    a.scores.At(i, pc2),
		}
	}
	title := fmt.Sprintf("Entities along PC%d and PC%d", pc1+1, pc2+1)
	if err := a.renderer.Scatter(title, points); err != nil {
		a.logger.Warn("[Analyzer] scatter render failed: %v", err)
	}
	return nil
}

func (a *Analyzer) renderVarianceCurve(ratios []float64) {
	if a.renderer == nil {
		return
	}
	x := make([]float64, len(ratios))
	labels := make([]string, len(ratios))
	cumulative := make([]float64, len(ratios))
	sum := 0.0
	for i, r := range ratios {
		x[i] = float64(i + 1)
		labels[i] = fmt.Sprintf("PC%d", i+1)
		sum += r
		cumulative[i] = sum
	}
	if err := a.renderer.Bar("Variance Explained per Component", labels, ratios); err != nil {
		a.logger.Warn("[Analyzer] variance bars render failed: %v", err)
	}
	err := a.renderer.Line("Proportion of Variance Explained", x, []ports.LineSeries{
		{Name: "Individual component", Y: ratios},
		{Name: "Cumulative", Y: cumulative},
	})
	if err != nil {
		a.logger.Warn("[Analyzer] variance curve render failed: %v", err)
	}
}

func first(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}
