package report

import (
	"fmt"
	"math"
	"strings"

	"ltv-dashboard/pkg/chart"
	"ltv-dashboard/pkg/models"

	"github.com/mattn/go-runewidth"
)

const (
	barWidth   = 40
	labelWidth = 28
	sparks     = "▁▂▃▄▅▆▇█"
)

// Chart dessine un graphique en texte : barres horizontales, parts sur 100
// (camemberts) ou courbes en sparklines.
func (r *Renderer) Chart(c *chart.Chart) {
	fmt.Fprintln(r.w)
	r.heading(c.Title)
	for _, p := range c.Panels {
		r.accent.Fprintln(r.w, p.Title)
		switch c.Kind {
		case models.LineChart:
			r.sparkPanel(p)
		case models.PieChart:
			for _, s := range p.Series {
				r.barBlock(s, 100)
			}
		default:
			for _, s := range p.Series {
				r.barBlock(s, 0)
			}
		}
	}
	if c.XAxis != "" {
		fmt.Fprintln(r.w, c.XAxis+": "+months(c))
	}
	if c.Legend != "" {
		fmt.Fprintln(r.w, "Legend: "+c.Legend)
	}
}

// barBlock : la barre du bas (premier point) est écrite en dernier.
// scale = 0 : la plus grande valeur occupe toute la largeur.
func (r *Renderer) barBlock(s chart.Series, scale float64) {
	if scale == 0 {
		for _, p := range s.Points {
			scale = math.Max(scale, math.Abs(p.Value))
		}
	}
	for i := len(s.Points) - 1; i >= 0; i-- {
		p := s.Points[i]
		n := 0
		if scale > 0 && !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			n = int(math.Round(math.Min(math.Abs(p.Value)/scale, 1) * barWidth))
		}
		fmt.Fprintf(r.w, "  %s %s %s\n", label(p.Label), strings.Repeat("█", n), s.Format.Format(p.Value))
	}
}

func (r *Renderer) sparkPanel(p chart.Panel) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range p.Series {
		for _, pt := range s.Points {
			if !math.IsNaN(pt.Value) && !math.IsInf(pt.Value, 0) {
				lo, hi = math.Min(lo, pt.Value), math.Max(hi, pt.Value)
			}
		}
	}
	for _, s := range p.Series {
		fmt.Fprintf(r.w, "  %s %s %s\n", label(s.Name), spark(s.Points, lo, hi), lastValue(s.Points))
	}
}

// spark : un caractère par mois, '·' pour une cellule vide.
func spark(points []chart.Point, lo, hi float64) string {
	levels := []rune(sparks)
	var b strings.Builder
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			b.WriteRune('·')
			continue
		}
		k := len(levels) - 1
		if hi > lo {
			k = int(math.Round((p.Value - lo) / (hi - lo) * float64(len(levels)-1)))
		}
		b.WriteRune(levels[k])
	}
	return b.String()
}

func lastValue(points []chart.Point) string {
	for i := len(points) - 1; i >= 0; i-- {
		if !math.IsNaN(points[i].Value) {
			return Number(points[i].Value)
		}
	}
	return "NaN"
}

func months(c *chart.Chart) string {
	if len(c.Panels) == 0 || len(c.Panels[0].Series) == 0 {
		return ""
	}
	pts := c.Panels[0].Series[0].Points
	if len(pts) == 0 {
		return ""
	}
	if len(pts) == 1 {
		return pts[0].Label
	}
	return pts[0].Label + " … " + pts[len(pts)-1].Label
}

// label tronque et complète à largeur fixe (largeur d'affichage, pas octets).
func label(s string) string {
	return runewidth.FillRight(runewidth.Truncate(s, labelWidth, "…"), labelWidth)
}
