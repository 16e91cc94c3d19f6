package stattest

import (
	"fmt"
	"math"

	"ltv-dashboard/pkg/table"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare teste l'indépendance entre l'issue (lignes) et la colonne choisie.
func ChiSquare(t *table.Table, outcome, outcomeLabel, column, columnLabel string) (*Result, error) {
	if t == nil {
		return nil, fmt.Errorf("chi-square: %w: no table", ErrDegenerate)
	}
	ct, err := t.CrossTab(outcome, column)
	if err != nil {
		return nil, fmt.Errorf("chi-square: %w", err)
	}

	statistic, dof, p, err := pearson(ct.Counts.Values)
	if err != nil {
		return nil, fmt.Errorf("chi-square %s × %s: %w", outcome, column, err)
	}

	res := &Result{
		Kind:           KindChiSquare,
		Question:       fmt.Sprintf("Does percentage of %s differ across %s?", outcomeLabel, columnLabel),
		OutcomeLabel:   outcomeLabel,
		ColumnLabel:    columnLabel,
		Contingency:    ct.Counts,
		Percent:        columnPercent(ct.Counts),
		Statistic:      statistic,
		DOF:            dof,
		RawPValue:      p,
		PValue:         roundP(p),
		Decision:       Decide(p),
		NullHypothesis: fmt.Sprintf("Null hypothesis: %s distribution is independent of %s.", outcomeLabel, columnLabel),
	}
	if res.Decision == Reject {
		res.Interpretation = fmt.Sprintf("There is statistical evidence that %s distribution differs across %s.", outcomeLabel, columnLabel)
	} else {
		res.Interpretation = fmt.Sprintf("There is NO statistical evidence that %s distribution differs across %s.", outcomeLabel, columnLabel)
	}
	return res, nil
}

// columnPercent normalise chaque colonne à 100, arrondi à l'entier (demi-pair).
func columnPercent(counts *table.Frame) *table.Frame {
	out := table.NewFrame(counts.IndexName, counts.Index, counts.Columns)
	for j := range counts.Columns {
		total := 0.0
		for i := range counts.Index {
			total += counts.Values[i][j]
		}
		for i := range counts.Index {
			out.Values[i][j] = math.RoundToEven(counts.Values[i][j] / total * 100)
		}
	}
	return out
}

// pearson calcule la statistique du chi-deux d'indépendance et sa p-value.
// Correction de Yates quand dof == 1.
func pearson(obs [][]float64) (stat, dof, p float64, err error) {
	r := len(obs)
	if r == 0 || len(obs[0]) == 0 {
		return 0, 0, 0, fmt.Errorf("%w: empty table", ErrDegenerate)
	}
	c := len(obs[0])
	if r < 2 || c < 2 {
		return 0, 0, 0, fmt.Errorf("%w: %d×%d table has no degrees of freedom", ErrDegenerate, r, c)
	}

	rowSum := make([]float64, r)
	colSum := make([]float64, c)
	n := 0.0
	for i := range obs {
		for j, v := range obs[i] {
			rowSum[i] += v
			colSum[j] += v
			n += v
		}
	}
	dof = float64((r - 1) * (c - 1))

	for i := range obs {
		for j, o := range obs[i] {
			e := rowSum[i] * colSum[j] / n
			if e == 0 {
				return 0, 0, 0, fmt.Errorf("%w: expected frequency is zero at (%d, %d)", ErrDegenerate, i, j)
			}
			if dof == 1 {
				d := e - o
				o += math.Copysign(math.Min(0.5, math.Abs(d)), d)
			}
			stat += (o - e) * (o - e) / e
		}
	}

	p = distuv.ChiSquared{K: dof}.Survival(stat)
	return stat, dof, p, nil
}
