package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/config"
	"ltv-dashboard/pkg/database"
	"ltv-dashboard/pkg/menu"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/report"
	"ltv-dashboard/pkg/stattest"
	"ltv-dashboard/pkg/table"
	"ltv-dashboard/pkg/tui"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	defaults := config.Default()
	configFile := flag.String("config", "", "Fichier YAML de configuration")
	flag.String("csv", defaults.Data.CSV, "Fichier CSV de la table clients")
	flag.String("dsn", "", "DSN MariaDB/MySQL ou sqlite://chemin (défaut $LTV_DASHBOARD_DSN)")
	flag.String("table", defaults.Data.Table, "Table SQL des clients")
	flag.String("summary", defaults.Summary, "Fichier du résumé exécutif")
	flag.String("mode", defaults.Mode, "Mode : menu, tui, batch, report")
	reportKind := flag.String("report", "ltv", "Rapport du mode report : ltv, cohort, revenue, chi2, ttest")
	dims := flag.String("dim", "", "Dimension(s), clé ou libellé, séparées par des virgules")
	groupA := flag.String("a", "", "Première catégorie du t-test")
	groupB := flag.String("b", "", "Seconde catégorie du t-test")
	flag.String("json", "", "Export JSON (batch/report) ; - pour la sortie standard")
	flag.Bool("v", false, "Mode verbeux")
	flag.Parse()

	// YAML puis flags explicites
	cfg := defaults
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	visited := map[string]string{}
	flag.Visit(func(f *flag.Flag) { visited[f.Name] = f.Value.String() })
	applyFlags(cfg, visited, os.Getenv("LTV_DASHBOARD_DSN"))
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	dimensions, err := parseDimensions(*dims)
	if err != nil {
		log.Fatalf("flags: %v", err)
	}
	if cfg.Verbose {
		cfg.Print()
	}

	// En mode tui, les logs ne doivent pas écrire sur l'écran
	if cfg.Mode == config.ModeTUI {
		closeLog := redirectLog(cfg.Logging.File)
		defer closeLog()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data := loadData(ctx, cfg)
	useColor := !color.NoColor

	switch cfg.Mode {
	case config.ModeMenu:
		err = menu.New(os.Stdin, os.Stdout, data, cfg.Summary, useColor).Run(ctx)
	case config.ModeTUI:
		err = tui.New(data, cfg.Summary).Run()
	case config.ModeBatch:
		err = runBatch(ctx, data, cfg, dimensions, useColor)
	case config.ModeReport:
		err = runReport(data, cfg, *reportKind, dimensions, *groupA, *groupB, useColor)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[ERROR] %s: %v", cfg.Mode, err)
	}
}

// applyFlags applique les flags explicitement passés par-dessus cfg (YAML ou
// défauts). Le DSN d'environnement ne sert que si ni le YAML ni -dsn n'en
// donnent, et un -csv explicite sans -dsn l'écarte.
func applyFlags(cfg *config.Config, visited map[string]string, envDSN string) {
	if cfg.Data.DSN == "" {
		cfg.Data.DSN = envDSN
	}
	for name, v := range visited {
		switch name {
		case "csv":
			cfg.Data.CSV = v
			if _, ok := visited["dsn"]; !ok {
				cfg.Data.DSN = ""
			}
		case "dsn":
			cfg.Data.DSN = v
		case "table":
			cfg.Data.Table = v
		case "summary":
			cfg.Summary = v
		case "mode":
			cfg.Mode = v
		case "json":
			cfg.Output.JSON = v
		case "v":
			cfg.Verbose = v == "true"
		}
	}
}

func parseDimensions(s string) ([]models.Dimension, error) {
	var out []models.Dimension
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := models.ParseDimension(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// loadData charge la table une fois. En cas d'échec on continue avec une
// table vide : chaque rapport affichera l'erreur.
func loadData(ctx context.Context, cfg *config.Config) *table.Table {
	start := time.Now()
	var (
		t   *table.Table
		err error
	)
	if cfg.Data.DSN != "" {
		t, err = loadSQL(ctx, cfg)
	} else {
		t, err = database.LoadCSV(cfg.Data.CSV)
	}
	if err != nil {
		log.Printf("[ERROR] load: %v", err)
		return table.Empty(models.CustomerSchema)
	}
	if cfg.Verbose {
		log.Printf("[INFO] %s customers loaded in %s", humanize.Comma(int64(t.Len())), time.Since(start).Round(time.Millisecond))
	}
	return t
}

func loadSQL(ctx context.Context, cfg *config.Config) (*table.Table, error) {
	db, dsnUsed, err := database.Open(cfg.Data.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if cfg.Verbose {
		log.Printf("[INFO] connected dsn=%s", dsnUsed)
	}
	return database.LoadSQL(ctx, db, cfg.Data.Table)
}

func redirectLog(path string) func() {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[WARN] log file %s: %v, logs discarded", path, err)
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}

func runBatch(ctx context.Context, data *table.Table, cfg *config.Config, dims []models.Dimension, useColor bool) error {
	reports, err := calculator.Run(ctx, data, models.RunConfig{
		Dimensions: dims,
		Verbose:    cfg.Verbose,
		Progress:   cfg.Output.JSON != "-",
	})
	if err != nil {
		return err
	}
	if cfg.Output.JSON != "" {
		return writeJSON(cfg.Output.JSON, report.Export(reports))
	}
	r := report.NewRenderer(os.Stdout, useColor)
	for _, dr := range reports {
		r.Report(dr.Factors)
		r.Cohort(dr.Cohort)
		r.Report(dr.Revenue)
	}
	return nil
}

func runReport(data *table.Table, cfg *config.Config, kind string, dims []models.Dimension, a, b string, useColor bool) error {
	dim := models.Dimensions[0]
	switch kind {
	case "chi2":
		dim = models.ChiSquarePresets[0].Dimension
	case "ttest":
		dim = models.TTestDimension
	}
	if len(dims) > 0 {
		dim = dims[0]
	}

	var (
		text func(*report.Renderer)
		out  any
	)
	switch kind {
	case "ltv", "revenue":
		compute := calculator.LTVFactors
		if kind == "revenue" {
			compute = calculator.RevenueStructure
		}
		rep, err := compute(data, dim)
		if err != nil {
			return err
		}
		text = func(r *report.Renderer) { r.Report(rep) }
		out = report.ExportReport(rep)
	case "cohort":
		rep, err := calculator.Cohort(data, dim)
		if err != nil {
			return err
		}
		text = func(r *report.Renderer) { r.Cohort(rep) }
		out = report.ExportCohort(rep)
	case "chi2", "ttest":
		var (
			res *stattest.Result
			err error
		)
		if kind == "chi2" {
			res, err = stattest.ChiSquare(data, models.TestOutcome, models.TestOutcomeLabel, dim.Column(), dim.Label())
		} else {
			res, err = stattest.TTest(data, models.TestOutcome, models.TestOutcomeLabel, dim.Column(), dim.Label(), a, b)
		}
		if err != nil {
			return err
		}
		text = func(r *report.Renderer) { r.Test(res) }
		out = report.ExportTest(res)
	default:
		return fmt.Errorf("unknown report %q (ltv, cohort, revenue, chi2, ttest)", kind)
	}

	if cfg.Output.JSON != "" {
		return writeJSON(cfg.Output.JSON, out)
	}
	text(report.NewRenderer(os.Stdout, useColor))
	return nil
}

func writeJSON(path string, v any) error {
	if path == "-" {
		return report.WriteJSON(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	log.Printf("[INFO] JSON written to %s", path)
	return f.Close()
}
