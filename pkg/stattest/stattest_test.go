package stattest

import (
	"errors"
	"math"
	"testing"

	"ltv-dashboard/pkg/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var specs = []table.Spec{
	{Name: "customer_country", Kind: table.String},
	{Name: "returned_customer", Kind: table.Bool},
	{Name: "label", Kind: table.String},
}

func newTable(t require.TestingT, countries []string, returned []bool) *table.Table {
	b := table.NewBuilder(specs)
	for i := range countries {
		r := "False"
		if returned[i] {
			r = "True"
		}
		require.NoError(t, b.Append([]string{countries[i], r, "x"}))
	}
	return b.Build()
}

// repeat construit n lignes (pays, issue) identiques.
func repeat(countries *[]string, returned *[]bool, country string, ret bool, n int) {
	for i := 0; i < n; i++ {
		*countries = append(*countries, country)
		*returned = append(*returned, ret)
	}
}

func TestChiSquare_BalancedTwoByTwo(t *testing.T) {
	tb := newTable(t, []string{"US", "US", "FR", "FR"}, []bool{true, false, true, false})
	res, err := ChiSquare(tb, "returned_customer", "Returned customer", "customer_country", "Customer Country")
	require.NoError(t, err)

	assert.Equal(t, KindChiSquare, res.Kind)
	assert.Equal(t, []string{"False", "True"}, res.Contingency.Index)
	assert.Equal(t, []string{"FR", "US"}, res.Contingency.Columns)
	for _, row := range res.Contingency.Values {
		for _, v := range row {
			assert.Equal(t, 1.0, v)
		}
	}
	assert.Equal(t, 1.0, res.PValue)
	assert.Equal(t, FailToReject, res.Decision)
	assert.Equal(t, "Null hypothesis: Returned customer distribution is independent of Customer Country.", res.NullHypothesis)
	assert.Equal(t, "There is NO statistical evidence that Returned customer distribution differs across Customer Country.", res.Interpretation)
	assert.Equal(t, "Does percentage of Returned customer differ across Customer Country?", res.Question)
}

func TestChiSquare_KnownStatistic(t *testing.T) {
	// 2×3 : pas de correction de Yates, dof = 2, p = exp(-chi2/2)
	var c []string
	var r []bool
	repeat(&c, &r, "A", false, 20)
	repeat(&c, &r, "A", true, 10)
	repeat(&c, &r, "B", false, 10)
	repeat(&c, &r, "B", true, 20)
	repeat(&c, &r, "C", false, 10)
	repeat(&c, &r, "C", true, 10)
	res, err := ChiSquare(newTable(t, c, r), "returned_customer", "Returned customer", "customer_country", "Customer Country")
	require.NoError(t, err)

	assert.InDelta(t, 100.0/15, res.Statistic, 1e-9)
	assert.Equal(t, 2.0, res.DOF)
	assert.InDelta(t, math.Exp(-100.0/30), res.RawPValue, 1e-9)
	assert.Equal(t, 0.036, res.PValue)
	assert.Equal(t, Reject, res.Decision)
	assert.Equal(t, "There is statistical evidence that Returned customer distribution differs across Customer Country.", res.Interpretation)

	// vue % : chaque colonne somme à 100
	a, _ := res.Percent.Get("False", "A")
	assert.Equal(t, 67.0, a)
}

func TestChiSquare_YatesCorrection(t *testing.T) {
	// [[10, 20], [30, 40]] ; scipy.stats.chi2_contingency -> chi2 = 0.4464, p = 0.504
	var c []string
	var r []bool
	repeat(&c, &r, "A", false, 10)
	repeat(&c, &r, "B", false, 20)
	repeat(&c, &r, "A", true, 30)
	repeat(&c, &r, "B", true, 40)
	res, err := ChiSquare(newTable(t, c, r), "returned_customer", "Returned customer", "customer_country", "Customer Country")
	require.NoError(t, err)
	assert.InDelta(t, 0.4464, res.Statistic, 1e-3)
	assert.InDelta(t, 0.504, res.PValue, 1e-3)
}

func TestChiSquare_SingleCategoryIsDegenerate(t *testing.T) {
	tb := newTable(t, []string{"US", "US"}, []bool{true, false})
	_, err := ChiSquare(tb, "returned_customer", "Returned customer", "customer_country", "Customer Country")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerate))
}

func TestChiSquare_EmptyTable(t *testing.T) {
	_, err := ChiSquare(table.Empty(specs), "returned_customer", "Returned customer", "customer_country", "Customer Country")
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestChiSquare_UnknownColumn(t *testing.T) {
	tb := newTable(t, []string{"US"}, []bool{true})
	_, err := ChiSquare(tb, "returned_customer", "Returned customer", "nope", "Nope")
	assert.Error(t, err)
}

func TestDecide_Boundary(t *testing.T) {
	assert.Equal(t, FailToReject, Decide(0.05))
	assert.Equal(t, Reject, Decide(0.0499999))
	assert.Equal(t, FailToReject, Decide(math.NaN()))
	assert.Equal(t, "fail_to_reject", FailToReject.String())
	assert.Equal(t, "reject", Reject.String())
}

func TestTTest_SameCategoryRejected(t *testing.T) {
	// table nil : la validation doit précéder tout calcul
	_, err := TTest(nil, "returned_customer", "Returned customer", "customer_country", "Customer Country", "US", "US")
	assert.ErrorIs(t, err, ErrSameCategory)
}

func TestTTest_KnownValues(t *testing.T) {
	tb := newTable(t,
		[]string{"US", "US", "US", "US", "FR", "FR", "FR", "FR"},
		[]bool{true, false, true, true, false, false, true, false},
	)
	res, err := TTest(tb, "returned_customer", "Returned customer", "customer_country", "Customer Country", "US", "FR")
	require.NoError(t, err)

	assert.Equal(t, KindTTest, res.Kind)
	assert.InDelta(t, math.Sqrt2, res.Statistic, 1e-9)
	assert.Equal(t, 6.0, res.DOF)
	// scipy.stats.ttest_ind([1,0,1,1], [0,0,1,0]) -> p = 0.2070
	assert.InDelta(t, 0.207, res.PValue, 1e-3)
	assert.Equal(t, FailToReject, res.Decision)
	assert.Equal(t, 75.0, res.PercentA)
	assert.Equal(t, 25.0, res.PercentB)
	assert.Equal(t, "Null hypothesis: percentage of returned customers is the same for US and FR.", res.NullHypothesis)
	assert.Equal(t, "There is NO statistically significant evidence that Returned customer differs for US and FR.", res.Interpretation)
}

func TestTTest_Reject(t *testing.T) {
	var c []string
	var r []bool
	repeat(&c, &r, "US", true, 18)
	repeat(&c, &r, "US", false, 2)
	repeat(&c, &r, "FR", true, 2)
	repeat(&c, &r, "FR", false, 18)
	res, err := TTest(newTable(t, c, r), "returned_customer", "Returned customer", "customer_country", "Customer Country", "US", "FR")
	require.NoError(t, err)
	assert.Equal(t, Reject, res.Decision)
	assert.Equal(t, "There is statistical evidence that percentage of Returned customer differs for US and FR.", res.Interpretation)
}

func TestTTest_MissingCategory(t *testing.T) {
	tb := newTable(t, []string{"US", "US"}, []bool{true, false})
	_, err := TTest(tb, "returned_customer", "Returned customer", "customer_country", "Customer Country", "US", "DE")
	assert.Error(t, err)
}

func TestTTest_TextOutcomeRejected(t *testing.T) {
	tb := newTable(t, []string{"US", "FR"}, []bool{true, false})
	_, err := TTest(tb, "label", "Label", "customer_country", "Customer Country", "US", "FR")
	assert.Error(t, err)
}

func TestPositivePercent_FallbackNonZero(t *testing.T) {
	b := table.NewBuilder([]table.Spec{{Name: "o", Kind: table.Number}, {Name: "c", Kind: table.String}})
	for _, r := range [][]string{{"0", "A"}, {"2", "A"}, {"3", "A"}, {"0", "B"}} {
		require.NoError(t, b.Append(r))
	}
	ct, err := b.Build().CrossTab("o", "c")
	require.NoError(t, err)
	pct := positivePercent(ct)
	a, _ := pct.Get("True", "A")
	assert.InDelta(t, 200.0/3, a, 1e-9)
	bb, _ := pct.Get("True", "B")
	assert.Equal(t, 0.0, bb)
}

func TestProperty_PercentColumnsSumTo100(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 60).Draw(rt, "n")
		countries := make([]string, n)
		returned := make([]bool, n)
		for i := 0; i < n; i++ {
			countries[i] = rapid.SampledFrom([]string{"US", "FR", "DE"}).Draw(rt, "country")
			returned[i] = rapid.Bool().Draw(rt, "returned")
		}
		b := table.NewBuilder(specs)
		for i := range countries {
			r := "False"
			if returned[i] {
				r = "True"
			}
			if err := b.Append([]string{countries[i], r, "x"}); err != nil {
				rt.Fatalf("append: %v", err)
			}
		}
		ct, err := b.Build().CrossTab("returned_customer", "customer_country")
		if err != nil {
			rt.Fatalf("crosstab: %v", err)
		}
		pct := columnPercent(ct.Counts)
		for j, col := range pct.Columns {
			sum := 0.0
			for i := range pct.Index {
				sum += pct.Values[i][j]
			}
			if math.Abs(sum-100) > 1 {
				rt.Fatalf("column %s sums to %v", col, sum)
			}
		}
	})
}

func TestNilTableIsReportedNotPanicking(t *testing.T) {
	_, err := ChiSquare(nil, "returned_customer", "Returned customer", "customer_country", "Customer Country")
	assert.ErrorIs(t, err, ErrDegenerate)
	_, err = TTest(nil, "returned_customer", "Returned customer", "customer_country", "Customer Country", "US", "FR")
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestPooledT_SingleObservationGroup(t *testing.T) {
	// [0] contre [1, 0] : ss = 0 + 0.5, dof = 1
	tstat, dof, p, err := pooledT([]float64{0}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, dof)
	assert.InDelta(t, -0.5/math.Sqrt(0.5*1.5), tstat, 1e-12)
	assert.False(t, math.IsNaN(p))

	_, _, _, err = pooledT([]float64{1}, []float64{0})
	assert.Error(t, err)
}

func TestSumSquares(t *testing.T) {
	mean, ss := sumSquares([]float64{1, 0, 1, 1})
	assert.InDelta(t, 0.75, mean, 1e-12)
	assert.InDelta(t, 0.75, ss, 1e-12)
	mean, ss = sumSquares([]float64{4})
	assert.Equal(t, 4.0, mean)
	assert.Equal(t, 0.0, ss)
}
