package tui

import (
	"bytes"
	"fmt"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/chart"
	"ltv-dashboard/pkg/database"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/report"
	"ltv-dashboard/pkg/stattest"
	"ltv-dashboard/pkg/table"
)

// Section est une entrée de la barre latérale.
type Section int

const (
	SectionSummary Section = iota
	SectionFactors
	SectionCohorts
	SectionRevenue
	SectionTests
)

var sectionNames = []string{
	"Executive Summary",
	"LTV Factors",
	"LTV Cohorts",
	"Revenue Structure",
	"Statistical Tests",
}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return fmt.Sprintf("Section(%d)", int(s))
	}
	return sectionNames[s]
}

// testNames : un préréglage chi-deux par entrée, puis le t-test.
func testNames() []string {
	names := make([]string, 0, len(models.ChiSquarePresets)+1)
	for _, p := range models.ChiSquarePresets {
		names = append(names, "Chi-square: "+p.Name)
	}
	return append(names, "T-test: "+models.TTestDimension.Label())
}

// Selection est l'état courant des contrôles.
type Selection struct {
	Section   Section
	Dimension models.Dimension
	Test      int // indice dans testNames()
	A, B      string
}

// Render produit le texte du panneau principal, sans couleurs : tableau puis
// graphique texte pour les sections de rapport.
func Render(data *table.Table, summaryPath string, sel Selection) string {
	var buf bytes.Buffer
	r := report.NewRenderer(&buf, false)

	switch sel.Section {
	case SectionSummary:
		paragraphs, err := database.LoadSummary(summaryPath)
		if err != nil {
			r.Error(fmt.Errorf("executive summary: %w", err))
			break
		}
		r.Summary(paragraphs)
	case SectionFactors:
		rep, err := calculator.LTVFactors(data, sel.Dimension)
		if err != nil {
			r.Error(err)
			break
		}
		r.Report(rep)
		plot(r)(chart.FromReport(rep))
	case SectionCohorts:
		rep, err := calculator.Cohort(data, sel.Dimension)
		if err != nil {
			r.Error(err)
			break
		}
		r.Cohort(rep)
		plot(r)(chart.FromCohort(rep))
	case SectionRevenue:
		rep, err := calculator.RevenueStructure(data, sel.Dimension)
		if err != nil {
			r.Error(err)
			break
		}
		r.Report(rep)
		plot(r)(chart.FromReport(rep))
	case SectionTests:
		res, err := runTest(data, sel)
		if err != nil {
			r.Error(err)
			break
		}
		r.Test(res)
	}
	return buf.String()
}

// plot dessine le graphique sous le tableau, ou l'erreur à sa place.
func plot(r *report.Renderer) func(*chart.Chart, error) {
	return func(c *chart.Chart, err error) {
		if err != nil {
			r.Error(err)
			return
		}
		r.Chart(c)
	}
}

func runTest(data *table.Table, sel Selection) (*stattest.Result, error) {
	if sel.Test >= 0 && sel.Test < len(models.ChiSquarePresets) {
		d := models.ChiSquarePresets[sel.Test].Dimension
		return stattest.ChiSquare(data, models.TestOutcome, models.TestOutcomeLabel, d.Column(), d.Label())
	}
	if sel.A == "" || sel.B == "" {
		return nil, fmt.Errorf("select two %s values to compare", models.TTestDimension.Label())
	}
	d := models.TTestDimension
	return stattest.TTest(data, models.TestOutcome, models.TestOutcomeLabel, d.Column(), d.Label(), sel.A, sel.B)
}
