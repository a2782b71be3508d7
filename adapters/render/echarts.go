// Package render draws the diagnostic charts with go-echarts, one
// self-contained HTML file per chart.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clusterlab/ports"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EChartsRenderer implements ports.Renderer by writing charts into a
// directory.
type EChartsRenderer struct {
	dir string
}

// NewECharts creates the output directory if needed.
func NewECharts(dir string) (*EChartsRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}
	return &EChartsRenderer{dir: dir}, nil
}

// Line draws one or more named series over a shared x axis.
func (r *EChartsRenderer) Line(title string, x []float64, series []ports.LineSeries) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	xs := make([]string, len(x))
	for i, v := range x {
		xs[i] = fmt.Sprintf("%g", v)
	}
	line.SetXAxis(xs)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Y))
		for i, v := range s.Y {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}
	return r.write(title, line)
}

// Bar draws labeled values.
func (r *EChartsRenderer) Bar(title string, labels []string, values []float64) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}
	bar.SetXAxis(labels).AddSeries(title, data)
	return r.write(title, bar)
}

// Scatter draws labeled points, one series per cluster label.
func (r *EChartsRenderer) Scatter(title string, points []ports.ScatterPoint) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)

	byCluster := make(map[int][]opts.ScatterData)
	for _, p := range points {
		byCluster[p.Cluster] = append(byCluster[p.Cluster], opts.ScatterData{
			Name:  p.Name,
			Value: []interface{}{p.X, p.Y},
		})
	}
	labels := make([]int, 0, len(byCluster))
	for l := range byCluster {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	for _, l := range labels {
		name := fmt.Sprintf("cluster %d", l)
		if l < 0 {
			name = "noise"
		}
		if len(labels) == 1 {
			name = "entities"
		}
		scatter.AddSeries(name, byCluster[l])
	}
	return r.write(title, scatter)
}

// Tree draws a dendrogram.
func (r *EChartsRenderer) Tree(title string, root *ports.TreeNode) error {
	tree := charts.NewTree()
	tree.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
	tree.AddSeries(title, []opts.TreeData{*toTreeData(root)})
	return r.write(title, tree)
}

func toTreeData(n *ports.TreeNode) *opts.TreeData {
	d := &opts.TreeData{Name: n.Name}
	for _, c := range n.Children {
		d.Children = append(d.Children, toTreeData(c))
	}
	return d
}

type renderable interface {
	Render(w io.Writer) error
}

func (r *EChartsRenderer) write(title string, chart renderable) error {
	path := filepath.Join(r.dir, slug(title)+".html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return chart.Render(f)
}

func slug(title string) string {
	s := strings.ToLower(title)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
	return strings.Trim(strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '-' }), "-"), "-")
}
