package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/format"
	"ltv-dashboard/pkg/stattest"
	"ltv-dashboard/pkg/table"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const titleWidth = 60

// Renderer écrit les résultats en texte : titres colorés + tableaux ASCII.
type Renderer struct {
	w       io.Writer
	title   *color.Color
	accent  *color.Color
	warning *color.Color
}

// NewRenderer ; useColor=false pour un fichier ou le tableau de bord terminal.
func NewRenderer(w io.Writer, useColor bool) *Renderer {
	r := &Renderer{
		w:       w,
		title:   color.New(color.FgCyan, color.Bold),
		accent:  color.New(color.FgYellow),
		warning: color.New(color.FgRed),
	}
	if !useColor {
		r.title.DisableColor()
		r.accent.DisableColor()
		r.warning.DisableColor()
	} else {
		r.title.EnableColor()
		r.accent.EnableColor()
		r.warning.EnableColor()
	}
	return r
}

func (r *Renderer) heading(s string) {
	r.title.Fprintln(r.w, format.Wrap(s, titleWidth))
}

// Error affiche une erreur de calcul à la place du résultat.
func (r *Renderer) Error(err error) {
	r.warning.Fprintf(r.w, "Error: %v\n", err)
}

// Report affiche un tableau de métriques avec ses formateurs.
func (r *Renderer) Report(rep *calculator.Report) {
	r.heading(rep.Title)
	tw := r.newTable(append([]string{rep.Frame.IndexName}, rep.Frame.Columns...))
	for i, label := range rep.Frame.Index {
		line := []string{label}
		for j := range rep.Frame.Columns {
			line = append(line, rep.Cell(i, j))
		}
		tw.Append(line)
	}
	tw.Render()
}

// Cohort affiche les deux matrices (LTV puis rétention).
func (r *Renderer) Cohort(rep *calculator.CohortReport) {
	r.heading(rep.Title)
	r.accent.Fprintln(r.w, rep.LTVTitle)
	r.Frame(rep.LTV)
	r.accent.Fprintln(r.w, rep.RetentionTitle)
	r.Frame(rep.Retention)
}

// Frame affiche une grille brute.
func (r *Renderer) Frame(f *table.Frame) {
	tw := r.newTable(append([]string{f.IndexName}, f.Columns...))
	for i, label := range f.Index {
		line := []string{label}
		for _, v := range f.Values[i] {
			line = append(line, Number(v))
		}
		tw.Append(line)
	}
	tw.Render()
}

// Test affiche un résultat de test avec son interprétation.
func (r *Renderer) Test(res *stattest.Result) {
	r.heading(res.Question)
	fmt.Fprintln(r.w, "Number of customers:")
	r.Frame(res.Contingency)

	var pLine string
	switch res.Kind {
	case stattest.KindTTest:
		fmt.Fprintf(r.w, "Percentage of %s:\n", res.OutcomeLabel)
		fmt.Fprintf(r.w, "for %s = %s\n", res.GroupA, Number(round2(res.PercentA)))
		fmt.Fprintf(r.w, "for %s = %s\n", res.GroupB, Number(round2(res.PercentB)))
		pLine = "P-value of t-test (for independent samples) = "
	default:
		fmt.Fprintf(r.w, "Number of customers. %% of totals by %s:\n", res.ColumnLabel)
		r.Frame(res.Percent)
		pLine = "P-value of Chi-square test = "
	}

	fmt.Fprintln(r.w, res.NullHypothesis)
	fmt.Fprintln(r.w, pLine+Number(res.PValue))
	if res.Decision == stattest.Reject {
		r.accent.Fprintln(r.w, "We reject the null hypothesis.")
	} else {
		r.accent.Fprintln(r.w, "We fail to reject the null hypothesis.")
	}
	fmt.Fprintln(r.w, res.Interpretation)
}

// Summary affiche le résumé exécutif.
func (r *Renderer) Summary(paragraphs []string) {
	r.heading("Executive Summary")
	for _, p := range paragraphs {
		fmt.Fprintln(r.w, p)
	}
}

func (r *Renderer) newTable(header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(r.w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(header)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	return tw
}

// Number affiche un nombre brut : "1.0" pour un entier, "NaN" pour une cellule vide.
func Number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.RoundToEven(v*100) / 100
}
