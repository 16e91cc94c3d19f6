package calculator

import (
	"fmt"

	"ltv-dashboard/pkg/format"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

// Colonnes du tableau "LTV factors".
const (
	ColLTV          = "LTV"
	ColNumCust      = "Num of cust"
	ColPersCust     = "Pers of cust"
	ColPercRepCust  = "Perc rep cust"
	ColAvgNumPur    = "Avg num pur"
	ColFirstPur     = "First pur"
	ColRepPur       = "Rep pur"
	ColPersRevenue  = "Pers of revenue"
	ColPersCustomer = "Pers of customers"
)

var factorColumns = []string{ColLTV, ColNumCust, ColPersCust, ColPercRepCust, ColAvgNumPur, ColFirstPur, ColRepPur}

var factorFormats = []format.Style{
	format.StyleFloat,
	format.StyleIntThousands,
	format.StylePercent,
	format.StylePercent,
	format.StyleFloat,
	format.StyleInt,
	format.StyleInt,
}

// sums est l'ordre des agrégats dans customerAggs.
type sums struct {
	first, next, customers, returned, nextCnt float64
}

var customerAggs = []table.Agg{
	{Column: models.ColFirstPurchaseSum, Func: table.Sum},
	{Column: models.ColNextSum, Func: table.Sum},
	{Column: models.ColCustomerID, Func: table.Count},
	{Column: models.ColReturnedCustomer, Func: table.Sum},
	{Column: models.ColNextPurchasesCnt, Func: table.Sum},
}

func toSums(v []float64) sums {
	return sums{first: v[0], next: v[1], customers: v[2], returned: v[3], nextCnt: v[4]}
}

func (s sums) add(o sums) sums {
	return sums{
		first:     s.first + o.first,
		next:      s.next + o.next,
		customers: s.customers + o.customers,
		returned:  s.returned + o.returned,
		nextCnt:   s.nextCnt + o.nextCnt,
	}
}

func (s sums) ltv() float64 { return round((s.first+s.next)/s.customers, 2) }

// LTVFactors groupe la table par dimension et calcule les ratios de LTV,
// plus une ligne "Total" égale à la somme des groupes.
func LTVFactors(t *table.Table, dim models.Dimension) (*Report, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	groups, err := t.GroupBy([]string{dim.Column()}, customerAggs)
	if err != nil {
		return nil, fmt.Errorf("ltv factors by %s: %w", dim, err)
	}

	index := make([]string, 0, len(groups)+1)
	rows := make([]sums, 0, len(groups)+1)
	var total sums
	for _, g := range groups {
		s := toSums(g.Values)
		index = append(index, g.Keys[0].Label)
		rows = append(rows, s)
		total = total.add(s)
	}
	index = append(index, TotalLabel)
	rows = append(rows, total)

	n := float64(t.Len())
	f := table.NewFrame(dim.Column(), index, factorColumns)
	for i, s := range rows {
		f.Values[i] = []float64{
			s.ltv(),
			round(s.customers, 0),
			round(s.customers/n*100, 1),
			round(s.returned/s.customers*100, 1),
			round(s.nextCnt/s.returned, 1),
			round(s.first/s.customers, 2),
			round(s.next/s.returned, 2),
		}
	}

	return &Report{
		Dimension: dim,
		Title:     fmt.Sprintf("LTV factors. Split by %s.", dim.Label()),
		Frame:     f,
		Formats:   append([]format.Style(nil), factorFormats...),
		Chart:     models.BarChart,
	}, nil
}
