package calculator

import (
	"fmt"

	"ltv-dashboard/pkg/format"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

// RevenueStructure calcule la part du chiffre d'affaires et la part des clients par groupe.
// Pas de ligne "Total" : les parts somment déjà à 100.
func RevenueStructure(t *table.Table, dim models.Dimension) (*Report, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	groups, err := t.GroupBy([]string{dim.Column()}, customerAggs)
	if err != nil {
		return nil, fmt.Errorf("revenue structure by %s: %w", dim, err)
	}
	firstTotal, err := t.Sum(models.ColFirstPurchaseSum)
	if err != nil {
		return nil, err
	}
	nextTotal, err := t.Sum(models.ColNextSum)
	if err != nil {
		return nil, err
	}
	revenue := firstTotal + nextTotal
	n := float64(t.Len())

	index := make([]string, len(groups))
	for i, g := range groups {
		index[i] = g.Keys[0].Label
	}
	f := table.NewFrame(dim.Column(), index, []string{ColPersRevenue, ColPersCustomer})
	for i, g := range groups {
		s := toSums(g.Values)
		f.Values[i][0] = round((s.first+s.next)/revenue*100, 1)
		f.Values[i][1] = round(s.customers/n*100, 1)
	}

	return &Report{
		Dimension: dim,
		Title:     fmt.Sprintf("Distribution by %s", dim.Label()),
		Frame:     f,
		Formats:   []format.Style{format.StyleFloat, format.StyleFloat},
		Chart:     models.PieChart,
	}, nil
}
