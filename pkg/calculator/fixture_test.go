package calculator

import (
	"strconv"

	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"
)

type row struct {
	gender   string
	country  string
	cohort   string
	first    float64
	next     float64
	returned bool
	nextCnt  int
}

// fataler couvre *testing.T et *rapid.T
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func buildTable(t fataler, rows ...row) *table.Table {
	t.Helper()
	b := table.NewBuilder(models.CustomerSchema)
	for i, r := range rows {
		values := map[string]string{
			models.ColCustomerID:         strconv.Itoa(i + 1),
			models.ColAgeGroup:           "26-35",
			models.ColGender:             r.gender,
			models.ColCustomerCountry:    r.country,
			models.ColStoreCountry:       r.country,
			models.ColFirstPaymentMethod: "Card",
			models.ColFirstCurrency:      "USD",
			models.ColFirstPurchaseSum:   strconv.FormatFloat(r.first, 'f', -1, 64),
			models.ColFirstPurchaseProds: "1",
			models.ColFirstSumGroup:      "0-500",
			models.ColFirstProdsGroup:    "1",
			models.ColCohortMonth:        r.cohort,
			models.ColReturnedCustomer:   strconv.FormatBool(r.returned),
			models.ColNextSum:            strconv.FormatFloat(r.next, 'f', -1, 64),
			models.ColNextPurchasesCnt:   strconv.Itoa(r.nextCnt),
		}
		ordered := make([]string, len(models.CustomerSchema))
		for j, s := range models.CustomerSchema {
			ordered[j] = values[s.Name]
		}
		if err := b.Append(ordered); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return b.Build()
}

func sampleTable(t fataler) *table.Table {
	return buildTable(t,
		row{gender: "F", country: "US", cohort: "2023-01", first: 100, next: 50, returned: true, nextCnt: 2},
		row{gender: "F", country: "FR", cohort: "2023-02", first: 200},
		row{gender: "M", country: "US", cohort: "2023-01", first: 300, next: 100, returned: true, nextCnt: 1},
	)
}
