package report

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/chart"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/stattest"
	"ltv-dashboard/pkg/table"

	"github.com/mattn/go-runewidth"
)

func customers(t *testing.T) *table.Table {
	t.Helper()
	rows := [][]string{
		{"1", "18-25", "F", "US", "US", "Card", "USD", "100", "1", "0-100", "1", "2023-01", "True", "50", "2"},
		{"2", "26-35", "M", "FR", "FR", "Cash", "EUR", "200", "2", "100-300", "2", "2023-02", "False", "0", "0"},
		{"3", "26-35", "M", "US", "US", "Cash", "USD", "2000", "2", "100-300", "2", "2023-02", "False", "0", "0"},
	}
	b := table.NewBuilder(models.CustomerSchema)
	for _, r := range rows {
		if err := b.Append(r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return b.Build()
}

func TestRenderer_Report(t *testing.T) {
	rep, err := calculator.LTVFactors(customers(t), models.Gender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Report(rep)
	out := buf.String()
	for _, want := range []string{"LTV factors. Split by Customer Gender.", "Num of cust", "Total", "nan", "1100.0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("colour codes written with colour disabled")
	}
}

func TestRenderer_Cohort(t *testing.T) {
	rep, err := calculator.Cohort(customers(t), models.Gender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Cohort(rep)
	out := buf.String()
	for _, want := range []string{"LTV dynamics split by Customer Gender.", "2023-01", "Retention rate", "NaN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_TTestPrintsBothGroups(t *testing.T) {
	res, err := stattest.TTest(customers(t), models.ColReturnedCustomer, "Returned customer",
		models.ColCustomerCountry, "Customer Country", "US", "FR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Test(res)
	out := buf.String()
	if !strings.Contains(out, "for US = 50.0") || !strings.Contains(out, "for FR = 0.0") {
		t.Fatalf("percent lines wrong:\n%s", out)
	}
	if !strings.Contains(out, "P-value of t-test (for independent samples) = ") {
		t.Fatalf("missing p-value line:\n%s", out)
	}
}

func TestRenderer_ChiSquare(t *testing.T) {
	res, err := stattest.ChiSquare(customers(t), models.ColReturnedCustomer, "Returned customer",
		models.ColFirstPaymentMethod, "First purchase payment method")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Test(res)
	out := buf.String()
	for _, want := range []string{"% of totals by First purchase payment method", "P-value of Chi-square test = ", res.Interpretation} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_Error(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, false).Error(errors.New("boom"))
	if buf.String() != "Error: boom\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestNumber(t *testing.T) {
	cases := map[float64]string{1: "1.0", 0.036: "0.036", 175.5: "175.5"}
	for in, want := range cases {
		if got := Number(in); got != want {
			t.Fatalf("Number(%v) = %q, want %q", in, got, want)
		}
	}
	if Number(math.NaN()) != "NaN" {
		t.Fatal("NaN not rendered")
	}
}

func TestWriteJSON_NaNAsNull(t *testing.T) {
	reports, err := calculator.Run(context.Background(), customers(t), models.RunConfig{Dimensions: []models.Dimension{models.Gender}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Export(reports)); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"dimension": "gender"`) || !strings.Contains(out, "null") {
		t.Fatalf("unexpected json:\n%s", out)
	}
	var back []DimensionJSON
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("json not readable: %v", err)
	}
	if back[0].Factors.Frame.Index[len(back[0].Factors.Frame.Index)-1] != calculator.TotalLabel {
		t.Fatal("Total row lost in export")
	}
}

func TestRenderer_ChartBars(t *testing.T) {
	rep, err := calculator.LTVFactors(customers(t), models.Gender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := chart.FromReport(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Chart(c)
	out := buf.String()
	if !strings.Contains(out, strings.Repeat("█", barWidth)+" 1100.0") {
		t.Fatalf("largest LTV bar should span the full width:\n%s", out)
	}
	// F au-dessus de M, comme des barres horizontales dont M est en bas
	if strings.Index(out, "150.0") > strings.Index(out, "1100.0") {
		t.Fatalf("bars out of order:\n%s", out)
	}
	if strings.Contains(out, calculator.TotalLabel) {
		t.Fatalf("Total row must not be plotted:\n%s", out)
	}
}

func TestRenderer_ChartPies(t *testing.T) {
	rep, err := calculator.RevenueStructure(customers(t), models.Gender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := chart.FromReport(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Chart(c)
	out := buf.String()
	for _, want := range []string{chart.RevenuePieTitle, chart.CustomersPieTitle, strings.Repeat("█", 37) + " 94% ", "Legend: gender"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_ChartLines(t *testing.T) {
	rep, err := calculator.Cohort(customers(t), models.Gender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := chart.FromCohort(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	NewRenderer(&buf, false).Chart(c)
	out := buf.String()
	for _, want := range []string{"▁· 150.0", "·█ 1100.0", "█· 1.0", "·▁ 0.0", "Cohort month: 2023-01 … 2023-02", "Legend: gender"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLabel_DisplayWidth(t *testing.T) {
	if got := label("Évry"); runewidth.StringWidth(got) != labelWidth {
		t.Fatalf("label %q has width %d, want %d", got, runewidth.StringWidth(got), labelWidth)
	}
	long := strings.Repeat("x", labelWidth+5)
	if got := label(long); runewidth.StringWidth(got) != labelWidth || !strings.HasSuffix(got, "…") {
		t.Fatalf("long label not truncated: %q", got)
	}
}
