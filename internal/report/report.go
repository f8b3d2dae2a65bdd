// Package report renders a per-run aggregation summary as PDF, with one
// table row per locality searched.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/oneeighty/connect/internal/registry/companieshouse"
)

// Summary is everything the run report needs to render.
type Summary struct {
	RunID            string
	StartedAt        string
	Duration         string
	CharitiesFetched int
	CompaniesFetched int
	Merged           int
	Persisted        int
	Localities       map[string]companieshouse.LocalityStats
}

// Generator writes run reports under a base directory.
type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

// Write renders the summary and saves it as <dir>/run_<runID>.pdf,
// returning the full path.
func (g *Generator) Write(summary Summary) (string, error) {
	doc, err := g.Render(summary)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(g.dir, fmt.Sprintf("run_%s.pdf", summary.RunID))

	content, err := io.ReadAll(doc)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Render produces the PDF document without touching disk.
func (g *Generator) Render(summary Summary) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Aggregation run report", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Run: "+summary.RunID, props.Text{Top: 0}),
			text.New("Started: "+summary.StartedAt, props.Text{Top: 5}),
			text.New("Duration: "+summary.Duration, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Charities fetched: %d", summary.CharitiesFetched), props.Text{Top: 0}),
			text.New(fmt.Sprintf("Companies fetched: %d", summary.CompaniesFetched), props.Text{Top: 5}),
			text.New(fmt.Sprintf("Merged: %d  Persisted: %d", summary.Merged, summary.Persisted), props.Text{Top: 10}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Locality", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Auto", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "CIC", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "SIC", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	var total companieshouse.LocalityStats
	for _, locality := range sortedLocalities(summary.Localities) {
		stats := summary.Localities[locality]
		total.AutoInclude += stats.AutoInclude
		total.CICTypes += stats.CICTypes
		total.SICFiltered += stats.SICFiltered
		m.AddRow(8,
			text.NewCol(4, locality, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", stats.AutoInclude), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", stats.CICTypes), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", stats.SICFiltered), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", stats.Total()), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		text.NewCol(4, "All localities", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, fmt.Sprintf("%d", total.AutoInclude), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, fmt.Sprintf("%d", total.CICTypes), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, fmt.Sprintf("%d", total.SICFiltered), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, fmt.Sprintf("%d", total.Total()), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func sortedLocalities(stats map[string]companieshouse.LocalityStats) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
