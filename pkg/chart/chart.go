package chart

import (
	"errors"
	"fmt"
	"math"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/format"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

// ErrNothingToPlot : aucune catégorie à tracer (table vide ou seulement la ligne Total).
var ErrNothingToPlot = errors.New("no data to plot")

// Titres des deux camemberts.
const (
	RevenuePieTitle   = "Percentage of revenue"
	CustomersPieTitle = "Percentage of customers"
)

// Point est une valeur étiquetée d'une série.
type Point struct {
	Label string
	Value float64
}

// Series est une courbe, une barre par point ou une part par point.
type Series struct {
	Name   string
	Format format.Style
	Points []Point
}

// Panel est un sous-graphique.
type Panel struct {
	Title  string
	Series []Series
}

// Chart décrit un graphique prêt à dessiner, indépendamment du support.
type Chart struct {
	Kind   models.ChartKind
	Title  string
	XAxis  string // axe des mois pour les courbes
	Legend string // titre de légende, vide pour les barres
	Panels []Panel
}

// FromReport construit le graphique d'un rapport à une dimension :
// barres pour les facteurs LTV, camemberts pour la structure du revenu.
func FromReport(rep *calculator.Report) (*Chart, error) {
	switch rep.Chart {
	case models.BarChart:
		return bars(rep)
	case models.PieChart:
		return pies(rep)
	}
	return nil, fmt.Errorf("chart kind %q not supported for %s", rep.Chart, rep.Title)
}

// bars : un panneau par colonne de métrique. La ligne Total est retirée et
// l'index inversé ; le premier point est la barre du bas.
func bars(rep *calculator.Report) (*Chart, error) {
	f := rep.Frame
	rows := plotRows(f)
	if len(rows) == 0 {
		return nil, ErrNothingToPlot
	}

	c := &Chart{Kind: models.BarChart, Title: rep.Title}
	for j, col := range f.Columns {
		style := format.StyleFloat
		if j < len(rep.Formats) {
			style = rep.Formats[j]
		}
		s := Series{Name: col, Format: style, Points: make([]Point, 0, len(rows))}
		for _, i := range rows {
			v := f.Values[i][j]
			if math.IsNaN(v) {
				v = 0
			}
			s.Points = append(s.Points, Point{Label: f.Index[i], Value: v})
		}
		c.Panels = append(c.Panels, Panel{Title: col, Series: []Series{s}})
	}
	return c, nil
}

// plotRows renvoie les lignes hors Total, dans l'ordre décroissant de l'index.
func plotRows(f *table.Frame) []int {
	rows := make([]int, 0, f.Rows())
	for i := f.Rows() - 1; i >= 0; i-- {
		if f.Index[i] != calculator.TotalLabel {
			rows = append(rows, i)
		}
	}
	return rows
}

func pies(rep *calculator.Report) (*Chart, error) {
	f := rep.Frame
	if f.Rows() == 0 {
		return nil, ErrNothingToPlot
	}
	legend := f.IndexName
	if legend == "" {
		legend = "Category"
	}
	c := &Chart{Kind: models.PieChart, Title: rep.Title, Legend: legend}
	for _, p := range []struct{ col, title string }{
		{calculator.ColPersRevenue, RevenuePieTitle},
		{calculator.ColPersCustomer, CustomersPieTitle},
	} {
		vals, ok := f.Column(p.col)
		if !ok {
			return nil, fmt.Errorf("pie chart: missing column %q", p.col)
		}
		s := Series{Name: p.col, Format: format.StylePercent}
		for i, v := range vals {
			s.Points = append(s.Points, Point{Label: f.Index[i], Value: v})
		}
		c.Panels = append(c.Panels, Panel{Title: p.title, Series: []Series{s}})
	}
	return c, nil
}

// FromCohort construit les deux panneaux de courbes (LTV puis rétention),
// une série par catégorie, un point par mois de cohorte. Les NaN sont conservés.
func FromCohort(rep *calculator.CohortReport) (*Chart, error) {
	if rep.LTV.Rows() == 0 || len(rep.LTV.Columns) == 0 {
		return nil, ErrNothingToPlot
	}
	return &Chart{
		Kind:   models.LineChart,
		Title:  rep.Title,
		XAxis:  rep.XLabel,
		Legend: rep.IndexName,
		Panels: []Panel{
			{Title: rep.LTVTitle, Series: lines(rep.LTV, format.StyleFloat)},
			{Title: rep.RetentionTitle, Series: lines(rep.Retention, format.StyleFloat)},
		},
	}, nil
}

func lines(f *table.Frame, style format.Style) []Series {
	out := make([]Series, f.Rows())
	for i, label := range f.Index {
		s := Series{Name: label, Format: style, Points: make([]Point, len(f.Columns))}
		for j, month := range f.Columns {
			s.Points[j] = Point{Label: month, Value: f.Values[i][j]}
		}
		out[i] = s
	}
	return out
}
