// Package report renders an analyte's summary as markdown and HTML.
package report

import (
	"bytes"
	"fmt"

	"cytodash/domain/cytokine"
	"cytodash/internal/dashboard"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/guregu/null.v3"
)

const notAvailable = "N/A"

// Report is the summary of one analyte
type Report struct {
	Series     cytokine.AggregatedSeries
	Stats      []cytokine.TimepointStats
	Source     string
	Timepoints int
	Categories int
}

// Generate assembles the report for an analyte from the dashboard service
func Generate(svc *dashboard.Service, analyte string) (*Report, error) {
	series, err := svc.Series(analyte)
	if err != nil {
		return nil, err
	}
	stats, err := svc.Stats(analyte)
	if err != nil {
		return nil, err
	}
	return &Report{
		Series:     series,
		Stats:      stats,
		Source:     svc.Dataset().Source,
		Timepoints: len(svc.Timepoints()),
		Categories: len(svc.Taxonomy().Names()),
	}, nil
}

// Markdown renders the report as a markdown document
func (r *Report) Markdown() []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", r.Series.DisplayName)
	fmt.Fprintf(&b, "**Analyte:** %s  \n**Category:** %s\n\n", r.Series.Analyte, r.Series.Category)

	hc, ad := cytokine.LabelHealthyControl, cytokine.LabelADMCI
	fmt.Fprintf(&b, "| Timepoint | %s mean | %s max | %s n | %s mean | %s max | %s n |\n", hc, hc, hc, ad, ad, ad)
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range r.Stats {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %d |\n",
			s.Label,
			concentration(s.HC.Mean), concentration(s.HC.Max), s.HC.N,
			concentration(s.ADMCI.Mean), concentration(s.ADMCI.Max), s.ADMCI.N,
		)
	}

	fmt.Fprintf(&b, "\n_%s with %d timepoints and %d cytokine categories_\n", r.Source, r.Timepoints, r.Categories)
	return b.Bytes()
}

// HTML renders the markdown document to an HTML fragment
func (r *Report) HTML() []byte {
	return ToHTML(r.Markdown())
}

// ToHTML converts markdown to HTML with tables enabled. Raw HTML in the
// document is dropped and links are limited to safe protocols, since analyte
// and source names come straight from the input file.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.Safelink})
	return markdown.ToHTML(md, p, renderer)
}

func concentration(v null.Float) string {
	if !v.Valid {
		return notAvailable
	}
	return fmt.Sprintf("%.2f pg/mL", v.Float64)
}
