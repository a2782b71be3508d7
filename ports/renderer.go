package ports

// Renderer is the diagnostic-chart collaborator. The analysis core hands it
// plain arrays; how they are drawn is the adapter's business. A nil
// Renderer disables diagnostics entirely.
type Renderer interface {
	// Line draws one or more named series over a shared x axis.
	Line(title string, x []float64, series []LineSeries) error

	// Bar draws labeled values.
	Bar(title string, labels []string, values []float64) error

	// Scatter draws labeled 2-D points, optionally colored by cluster label.
	Scatter(title string, points []ScatterPoint) error

	// Tree draws a merge tree (dendrogram).
	Tree(title string, root *TreeNode) error
}

// LineSeries is one named curve.
type LineSeries struct {
	Name string
	Y    []float64
}

// ScatterPoint is one labeled observation.
type ScatterPoint struct {
	Name    string
	X, Y    float64
	Cluster int
}

// TreeNode is one node of a dendrogram; leaves carry entity names.
type TreeNode struct {
	Name     string
	Height   float64
	Children []*TreeNode
}
