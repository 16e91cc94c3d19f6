package calculator

import (
	"errors"
	"math"

	"ltv-dashboard/pkg/format"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

// ErrNoData est renvoyée quand la table clients est vide.
var ErrNoData = errors.New("no customer data loaded")

// TotalLabel est l'étiquette de la ligne de synthèse.
const TotalLabel = "Total"

// Report est un tableau de métriques prêt à afficher.
type Report struct {
	Dimension models.Dimension
	Title     string
	Frame     *table.Frame
	Formats   []format.Style // un par colonne
	Chart     models.ChartKind
}

// Cell renvoie la valeur formatée d'une cellule.
func (r *Report) Cell(i, j int) string {
	v := r.Frame.Values[i][j]
	if j < len(r.Formats) {
		return r.Formats[j].Format(v)
	}
	return format.Float(v)
}

// CohortReport porte les deux séries temporelles (LTV, rétention) par mois de cohorte.
type CohortReport struct {
	Dimension      models.Dimension
	Title          string
	IndexName      string
	LTV            *table.Frame
	Retention      *table.Frame
	LTVTitle       string
	RetentionTitle string
	XLabel         string
	Chart          models.ChartKind
}

// round arrondit au demi-pair sur x*10^n, comme numpy.
func round(x float64, n int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(n))
	return math.RoundToEven(x*p) / p
}
