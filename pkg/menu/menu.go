package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ltv-dashboard/pkg/calculator"
	"ltv-dashboard/pkg/chart"
	"ltv-dashboard/pkg/database"
	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/report"
	"ltv-dashboard/pkg/stattest"
	"ltv-dashboard/pkg/table"

	"github.com/dustin/go-humanize"
)

// back : l'utilisateur a choisi 0 / exit.
const back = -1

var sections = []string{
	"Read executive summary",
	"LTV factors",
	"LTV cohort",
	"Revenue structure",
	"Statistical test",
}

var testKinds = []string{"Chi-square test", "T-test"}

// Menu est le menu numéroté historique, piloté par un lecteur et un écrivain.
type Menu struct {
	in          *bufio.Reader
	out         io.Writer
	render      *report.Renderer
	data        *table.Table
	summaryPath string
}

// New prépare le menu sur data. summaryPath pointe vers le résumé exécutif.
func New(in io.Reader, out io.Writer, data *table.Table, summaryPath string, useColor bool) *Menu {
	return &Menu{
		in:          bufio.NewReader(in),
		out:         out,
		render:      report.NewRenderer(out, useColor),
		data:        data,
		summaryPath: summaryPath,
	}
}

// Run boucle sur le menu principal jusqu'à 0 / exit, fin d'entrée ou annulation.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(m.out, "\n\t\t Global Fashion Retail Sales:")
		fmt.Fprintf(m.out, "\nCustomers: %s\n", humanize.Comma(int64(m.data.Len())))
		choice, err := m.choose("\nMain menu", sections)
		if err != nil || choice == back {
			return ignoreEOF(err)
		}

		switch choice {
		case 0:
			m.summary()
		case 1:
			err = m.perDimension(func(d models.Dimension) {
				rep, err := calculator.LTVFactors(m.data, d)
				if err != nil {
					m.render.Error(err)
					return
				}
				m.render.Report(rep)
				m.plot(chart.FromReport(rep))
			})
		case 2:
			err = m.perDimension(func(d models.Dimension) {
				rep, err := calculator.Cohort(m.data, d)
				if err != nil {
					m.render.Error(err)
					return
				}
				m.render.Cohort(rep)
				m.plot(chart.FromCohort(rep))
			})
		case 3:
			err = m.perDimension(func(d models.Dimension) {
				rep, err := calculator.RevenueStructure(m.data, d)
				if err != nil {
					m.render.Error(err)
					return
				}
				m.render.Report(rep)
				m.plot(chart.FromReport(rep))
			})
		case 4:
			err = m.tests()
		}
		if err != nil {
			return ignoreEOF(err)
		}
	}
}

func (m *Menu) plot(c *chart.Chart, err error) {
	if err != nil {
		m.render.Error(err)
		return
	}
	m.render.Chart(c)
}

func (m *Menu) summary() {
	paragraphs, err := database.LoadSummary(m.summaryPath)
	if err != nil {
		m.render.Error(fmt.Errorf("executive summary: %w", err))
		return
	}
	m.render.Summary(paragraphs)
}

// perDimension redemande une dimension après chaque rapport, jusqu'à 0 / exit.
func (m *Menu) perDimension(show func(models.Dimension)) error {
	labels := make([]string, len(models.Dimensions))
	for i, d := range models.Dimensions {
		labels[i] = d.Label()
	}
	for {
		choice, err := m.choose("To select a column name enter its number:", labels)
		if err != nil || choice == back {
			return err
		}
		show(models.Dimensions[choice])
	}
}

func (m *Menu) tests() error {
	for {
		choice, err := m.choose("\nStatistical tests:", testKinds)
		if err != nil || choice == back {
			return err
		}
		if choice == 0 {
			err = m.chiSquare()
		} else {
			err = m.tTest()
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) chiSquare() error {
	names := make([]string, len(models.ChiSquarePresets))
	for i, p := range models.ChiSquarePresets {
		names[i] = p.Name
	}
	for {
		choice, err := m.choose("\nChi-square test options:", names)
		if err != nil || choice == back {
			return err
		}
		d := models.ChiSquarePresets[choice].Dimension
		res, err := stattest.ChiSquare(m.data, models.TestOutcome, models.TestOutcomeLabel, d.Column(), d.Label())
		if err != nil {
			m.render.Error(err)
			continue
		}
		m.render.Test(res)
	}
}

func (m *Menu) tTest() error {
	d := models.TTestDimension
	for {
		countries, err := m.data.Distinct(d.Column())
		if err != nil {
			m.render.Error(err)
			return nil
		}
		if len(countries) == 0 {
			fmt.Fprintln(m.out, "Error: No countries available in the dataset.")
			return nil
		}
		first, err := m.choose("\nAvailable countries:", countries)
		if err != nil || first == back {
			return err
		}
		a := countries[first]

		others := make([]string, 0, len(countries)-1)
		for _, c := range countries {
			if c != a {
				others = append(others, c)
			}
		}
		if len(others) == 0 {
			fmt.Fprintln(m.out, "Error: No other countries available for comparison.")
			return nil
		}
		second, err := m.choose("\nSelect second country:", others)
		if err != nil || second == back {
			return err
		}

		res, err := stattest.TTest(m.data, models.TestOutcome, models.TestOutcomeLabel, d.Column(), d.Label(), a, others[second])
		if err != nil {
			m.render.Error(fmt.Errorf("running T-test: %w", err))
			continue
		}
		m.render.Test(res)
	}
}

// choose affiche les options numérotées à partir de 1 et renvoie l'indice
// choisi, ou back. Une saisie invalide repose la question.
func (m *Menu) choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		fmt.Fprintln(m.out, "Error: No options available.")
		return back, nil
	}
	for {
		fmt.Fprintln(m.out, prompt)
		for i, o := range options {
			fmt.Fprintf(m.out, "%d. %s\n", i+1, o)
		}
		fmt.Fprintln(m.out, "0. Exit")
		fmt.Fprint(m.out, "Choose an option: ")

		line, err := m.readLine()
		if err != nil {
			return back, err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "0" || choice == "exit" {
			return back, nil
		}
		n, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Fprintln(m.out, "Please enter a number or 'exit'.")
			continue
		}
		if n < 1 || n > len(options) {
			fmt.Fprintln(m.out, "Invalid option.")
			continue
		}
		return n - 1, nil
	}
}

func (m *Menu) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
