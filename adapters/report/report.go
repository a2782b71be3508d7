// Package report summarizes a session's stored clustering runs as markdown
// and renders it to HTML.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"

	"github.com/gomarkdown/markdown"
)

// Markdown builds the session summary: one section per stored run, one row
// per cluster.
func Markdown(session core.SessionID, results map[string]cluster.Grouping) []byte {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "# Clustering session %s\n\n", session)
	fmt.Fprintf(&b, "%d stored runs.\n\n", len(results))
	for _, name := range names {
		g := results[name]
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "| Cluster | Members |\n|---|---|\n")
		for _, grp := range g.Groups {
			label := fmt.Sprintf("%d", grp.Label)
			if grp.Label == cluster.Noise {
				label = "noise"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", label, strings.Join(grp.Members, ", "))
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// HTML renders the markdown summary.
func HTML(md []byte) []byte {
	return markdown.ToHTML(md, nil, nil)
}

// WriteHTML writes the full session report to path.
func WriteHTML(path string, session core.SessionID, results map[string]cluster.Grouping) error {
	html := HTML(Markdown(session, results))
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
