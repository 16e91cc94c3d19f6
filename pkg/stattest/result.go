package stattest

import (
	"errors"
	"math"

	"ltv-dashboard/pkg/table"
)

// Alpha est le seuil de décision, comparaison stricte p < Alpha.
const Alpha = 0.05

var (
	// ErrSameCategory : le t-test compare deux catégories identiques.
	ErrSameCategory = errors.New("you cannot select the same category twice")
	// ErrDegenerate : tableau de contingence inexploitable.
	ErrDegenerate = errors.New("degenerate contingency table")
)

// Kind distingue les deux tests.
type Kind int

const (
	KindChiSquare Kind = iota
	KindTTest
)

func (k Kind) String() string {
	if k == KindTTest {
		return "T-test"
	}
	return "Chi-square test"
}

// Decision est le résultat binaire d'un test.
type Decision int

const (
	FailToReject Decision = iota
	Reject
)

func (d Decision) String() string {
	if d == Reject {
		return "reject"
	}
	return "fail_to_reject"
}

// Decide applique la règle p < Alpha ; NaN ne rejette pas.
func Decide(p float64) Decision {
	if p < Alpha {
		return Reject
	}
	return FailToReject
}

// Result est le résultat commun aux deux tests.
//
// Pour un chi-deux, Percent est la vue normalisée par colonne ; pour un t-test,
// c'est une ligne unique : le pourcentage d'issues positives par catégorie.
type Result struct {
	Kind           Kind
	Question       string
	OutcomeLabel   string
	ColumnLabel    string
	Contingency    *table.Frame
	Percent        *table.Frame
	Statistic      float64
	DOF            float64
	RawPValue      float64
	PValue         float64 // arrondi à 3 décimales
	Decision       Decision
	NullHypothesis string
	Interpretation string
	GroupA         string // t-test uniquement
	GroupB         string
	PercentA       float64
	PercentB       float64
}

func roundP(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return p
	}
	return math.RoundToEven(p*1000) / 1000
}
