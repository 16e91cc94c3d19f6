package report

import (
	"io"
	"math"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/stattest"
	"ltv-dashboard/pkg/table"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FrameJSON est une grille exportée ; NaN/Inf deviennent null.
type FrameJSON struct {
	IndexName string       `json:"index_name"`
	Index     []string     `json:"index"`
	Columns   []string     `json:"columns"`
	Values    [][]*float64 `json:"values"`
}

// ReportJSON exporte un rapport à une dimension (facteurs LTV, structure du revenu).
type ReportJSON struct {
	Title   string    `json:"title"`
	Chart   string    `json:"chart"`
	Formats []string  `json:"formats"`
	Frame   FrameJSON `json:"frame"`
}

// CohortJSON exporte les deux matrices de cohorte et leurs libellés.
type CohortJSON struct {
	Title          string    `json:"title"`
	Chart          string    `json:"chart"`
	IndexName      string    `json:"index_name"`
	XLabel         string    `json:"x_label"`
	LTVTitle       string    `json:"ltv_title"`
	RetentionTitle string    `json:"retention_title"`
	LTV            FrameJSON `json:"ltv"`
	Retention      FrameJSON `json:"retention"`
}

// DimensionJSON regroupe les trois rapports d'une dimension du mode batch.
type DimensionJSON struct {
	Dimension string     `json:"dimension"`
	Label     string     `json:"label"`
	Factors   ReportJSON `json:"ltv_factors"`
	Cohort    CohortJSON `json:"cohort"`
	Revenue   ReportJSON `json:"revenue_structure"`
}

// TestJSON exporte le résultat d'un chi-deux ou d'un t-test.
type TestJSON struct {
	Test           string    `json:"test"`
	Question       string    `json:"question"`
	Contingency    FrameJSON `json:"contingency_table"`
	Percent        FrameJSON `json:"contingency_table_percent"`
	Statistic      *float64  `json:"statistic"`
	DOF            float64   `json:"dof"`
	PValue         *float64  `json:"p_value"`
	Decision       string    `json:"decision"`
	NullHypothesis string    `json:"null_hypothesis"`
	Interpretation string    `json:"interpretation"`
	GroupA         string    `json:"group_1,omitempty"`
	GroupB         string    `json:"group_2,omitempty"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ExportFrame convertit une grille.
func ExportFrame(f *table.Frame) FrameJSON {
	out := FrameJSON{IndexName: f.IndexName, Index: f.Index, Columns: f.Columns, Values: make([][]*float64, len(f.Values))}
	for i, row := range f.Values {
		out.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			out.Values[i][j] = finite(v)
		}
	}
	return out
}

// ExportReport convertit un rapport ; les formateurs sont exportés par nom.
func ExportReport(r *calculator.Report) ReportJSON {
	formats := make([]string, len(r.Formats))
	for i, f := range r.Formats {
		formats[i] = string(f)
	}
	return ReportJSON{Title: r.Title, Chart: string(r.Chart), Formats: formats, Frame: ExportFrame(r.Frame)}
}

// ExportCohort convertit un rapport de cohorte.
func ExportCohort(c *calculator.CohortReport) CohortJSON {
	return CohortJSON{
		Title:          c.Title,
		Chart:          string(c.Chart),
		IndexName:      c.IndexName,
		XLabel:         c.XLabel,
		LTVTitle:       c.LTVTitle,
		RetentionTitle: c.RetentionTitle,
		LTV:            ExportFrame(c.LTV),
		Retention:      ExportFrame(c.Retention),
	}
}

// Export convertit un calcul batch en structure JSON.
func Export(reports []calculator.DimensionReports) []DimensionJSON {
	out := make([]DimensionJSON, len(reports))
	for i, r := range reports {
		out[i] = DimensionJSON{
			Dimension: string(r.Dimension),
			Label:     r.Dimension.Label(),
			Factors:   ExportReport(r.Factors),
			Cohort:    ExportCohort(r.Cohort),
			Revenue:   ExportReport(r.Revenue),
		}
	}
	return out
}

// ExportTest convertit un résultat de test ; p-value arrondie à 3 décimales.
func ExportTest(res *stattest.Result) TestJSON {
	return TestJSON{
		Test:           res.Kind.String(),
		Question:       res.Question,
		Contingency:    ExportFrame(res.Contingency),
		Percent:        ExportFrame(res.Percent),
		Statistic:      finite(res.Statistic),
		DOF:            res.DOF,
		PValue:         finite(res.PValue),
		Decision:       res.Decision.String(),
		NullHypothesis: res.NullHypothesis,
		Interpretation: res.Interpretation,
		GroupA:         res.GroupA,
		GroupB:         res.GroupB,
	}
}

// WriteJSON écrit v indenté.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
