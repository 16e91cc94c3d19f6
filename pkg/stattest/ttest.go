package stattest

import (
	"fmt"
	"math"

	"ltv-dashboard/pkg/table"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTest compare l'issue moyenne de deux catégories de column (t-test à variances
// égales, échantillons indépendants).
func TTest(t *table.Table, outcome, outcomeLabel, column, columnLabel, a, b string) (*Result, error) {
	if a == b {
		return nil, ErrSameCategory
	}
	if t == nil {
		return nil, fmt.Errorf("t-test: %w: no table", ErrDegenerate)
	}
	oc, err := t.Column(outcome)
	if err != nil {
		return nil, fmt.Errorf("t-test: %w", err)
	}
	if oc.Kind() == table.String {
		return nil, fmt.Errorf("t-test: outcome %q is not numeric", outcome)
	}

	ct, err := t.CrossTab(outcome, column)
	if err != nil {
		return nil, fmt.Errorf("t-test: %w", err)
	}
	percent := positivePercent(ct)

	sampleA, err := samples(t, outcome, column, a)
	if err != nil {
		return nil, err
	}
	sampleB, err := samples(t, outcome, column, b)
	if err != nil {
		return nil, err
	}
	statistic, dof, p, err := pooledT(sampleA, sampleB)
	if err != nil {
		return nil, fmt.Errorf("t-test %s vs %s: %w", a, b, err)
	}

	pa, _ := percent.Get(percent.Index[0], a)
	pb, _ := percent.Get(percent.Index[0], b)
	res := &Result{
		Kind:           KindTTest,
		Question:       fmt.Sprintf("Is there a significant difference between percentage of %s for %s and %s?", outcomeLabel, a, b),
		OutcomeLabel:   outcomeLabel,
		ColumnLabel:    columnLabel,
		Contingency:    ct.Counts,
		Percent:        percent,
		Statistic:      statistic,
		DOF:            dof,
		RawPValue:      p,
		PValue:         roundP(p),
		Decision:       Decide(p),
		NullHypothesis: fmt.Sprintf("Null hypothesis: percentage of returned customers is the same for %s and %s.", a, b),
		GroupA:         a,
		GroupB:         b,
		PercentA:       pa,
		PercentB:       pb,
	}
	if res.Decision == Reject {
		res.Interpretation = fmt.Sprintf("There is statistical evidence that percentage of %s differs for %s and %s.", outcomeLabel, a, b)
	} else {
		res.Interpretation = fmt.Sprintf("There is NO statistically significant evidence that %s differs for %s and %s.", outcomeLabel, a, b)
	}
	return res, nil
}

// positivePercent : part d'issues positives par colonne. La ligne positive est
// True (ou 1) ; à défaut, toutes les lignes non nulles.
func positivePercent(ct *table.CrossTab) *table.Frame {
	counts := ct.Counts
	positive := -1
	for i, k := range ct.Rows {
		if k.Num == 1 {
			positive = i
			break
		}
	}
	out := table.NewFrame(counts.IndexName, []string{"True"}, counts.Columns)
	for j := range counts.Columns {
		total, hits := 0.0, 0.0
		for i, k := range ct.Rows {
			v := counts.Values[i][j]
			total += v
			if (positive >= 0 && i == positive) || (positive < 0 && k.Num != 0) {
				hits += v
			}
		}
		out.Values[0][j] = hits / total * 100
	}
	return out
}

func samples(t *table.Table, outcome, column, value string) ([]float64, error) {
	idx, err := t.Where(column, value)
	if err != nil {
		return nil, fmt.Errorf("t-test: %w", err)
	}
	vals, err := t.Floats(outcome, idx)
	if err != nil {
		return nil, fmt.Errorf("t-test: %w", err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("t-test: no observations for %q", value)
	}
	return vals, nil
}

// pooledT : statistique t à variance commune et p-value bilatérale.
func pooledT(a, b []float64) (t, dof, p float64, err error) {
	n1, n2 := float64(len(a)), float64(len(b))
	dof = n1 + n2 - 2
	if dof < 1 {
		return 0, 0, 0, fmt.Errorf("not enough observations (%d and %d)", len(a), len(b))
	}
	m1, ss1 := sumSquares(a)
	m2, ss2 := sumSquares(b)
	pooled := (ss1 + ss2) / dof
	t = (m1 - m2) / math.Sqrt(pooled*(1/n1+1/n2))
	if math.IsNaN(t) {
		return t, dof, math.NaN(), nil
	}
	st := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	p = 2 * st.CDF(-math.Abs(t))
	return t, dof, p, nil
}

// sumSquares renvoie la moyenne et la somme des carrés des écarts ; un
// échantillon d'un seul point n'a pas de variance et contribue 0.
func sumSquares(x []float64) (mean, ss float64) {
	mean, variance := stat.MeanVariance(x, nil)
	if len(x) < 2 {
		return mean, 0
	}
	return mean, variance * float64(len(x)-1)
}
