package calculator

import (
	"fmt"
	"sort"

	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

// Cohort croise la dimension avec le mois de cohorte et calcule, par cellule,
// la LTV et le taux de rétention (fraction, pas pourcentage).
// Les combinaisons sans client restent à NaN ; pas de ligne "Total".
func Cohort(t *table.Table, dim models.Dimension) (*CohortReport, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	groups, err := t.GroupBy([]string{dim.Column(), models.ColCohortMonth}, customerAggs)
	if err != nil {
		return nil, fmt.Errorf("cohort by %s: %w", dim, err)
	}

	// groups est trié par (dimension, mois) : l'index sort dans l'ordre
	var index []string
	rowPos := map[string]int{}
	months := map[string]table.Key{}
	for _, g := range groups {
		label := g.Keys[0].Label
		if _, ok := rowPos[label]; !ok {
			rowPos[label] = len(index)
			index = append(index, label)
		}
		months[g.Keys[1].Label] = g.Keys[1]
	}
	keys := make([]table.Key, 0, len(months))
	for _, k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	columns := make([]string, len(keys))
	for i, k := range keys {
		columns[i] = k.Label
	}
	colPos := make(map[string]int, len(columns))
	for i, c := range columns {
		colPos[c] = i
	}

	ltv := table.NewFrame(dim.Column(), index, columns)
	retention := table.NewFrame(dim.Column(), index, columns)
	for _, g := range groups {
		s := toSums(g.Values)
		i, j := rowPos[g.Keys[0].Label], colPos[g.Keys[1].Label]
		ltv.Values[i][j] = s.ltv()
		retention.Values[i][j] = round(s.returned/s.customers, 2)
	}

	return &CohortReport{
		Dimension:      dim,
		Title:          fmt.Sprintf("LTV dynamics split by %s.", dim.Label()),
		IndexName:      dim.Column(),
		LTV:            ltv,
		Retention:      retention,
		LTVTitle:       "LTV (Revenue per 1 customer) in 6 months",
		RetentionTitle: "Retention rate (percentage of returned customers) in 6 months",
		XLabel:         "Cohort month",
		Chart:          models.LineChart,
	}, nil
}
