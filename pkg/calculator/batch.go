package calculator

import (
	"context"
	"fmt"
	"log"

	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"

	"github.com/schollz/progressbar/v3"
)

// DimensionReports regroupe les trois rapports d'une dimension.
type DimensionReports struct {
	Dimension models.Dimension
	Factors   *Report
	Cohort    *CohortReport
	Revenue   *Report
}

// Run calcule les trois rapports pour chaque dimension demandée (toutes par défaut).
func Run(ctx context.Context, t *table.Table, cfg models.RunConfig) ([]DimensionReports, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	dims := cfg.Dimensions
	if len(dims) == 0 {
		dims = models.Dimensions
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.Default(int64(len(dims)))
	} else {
		bar = progressbar.DefaultSilent(int64(len(dims)))
	}

	results := make([]DimensionReports, 0, len(dims))
	for _, d := range dims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		factors, err := LTVFactors(t, d)
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", d, err)
		}
		cohort, err := Cohort(t, d)
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", d, err)
		}
		revenue, err := RevenueStructure(t, d)
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", d, err)
		}
		results = append(results, DimensionReports{
			Dimension: d,
			Factors:   factors,
			Cohort:    cohort,
			Revenue:   revenue,
		})

		_ = bar.Add(1)
		if cfg.Verbose {
			total := factors.Frame.Values[factors.Frame.Rows()-1]
			log.Printf("[INFO] %s -> groups=%d LTV=%.2f | cohorts=%d",
				d, factors.Frame.Rows()-1, total[0], len(cohort.LTV.Columns))
		}
	}
	return results, nil
}
