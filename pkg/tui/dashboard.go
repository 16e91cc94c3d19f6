package tui

import (
	"fmt"

	"ltv-dashboard/pkg/models"
	"ltv-dashboard/pkg/table"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Dashboard est le tableau de bord terminal : sections à gauche, contrôles en
// haut, rapport au centre.
type Dashboard struct {
	app       *tview.Application
	sidebar   *tview.List
	split     *tview.DropDown
	test      *tview.DropDown
	groupA    *tview.DropDown
	groupB    *tview.DropDown
	view      *tview.TextView
	status    *tview.TextView
	focusable []tview.Primitive

	data        *table.Table
	summaryPath string
	categories  []string
	sel         Selection
}

// New construit l'interface sans la démarrer.
func New(data *table.Table, summaryPath string) *Dashboard {
	d := &Dashboard{
		app:         tview.NewApplication(),
		data:        data,
		summaryPath: summaryPath,
		sel:         Selection{Dimension: models.Dimensions[0]},
	}
	d.categories, _ = data.Distinct(models.TTestDimension.Column())

	d.view = tview.NewTextView().SetScrollable(true).SetWrap(false)
	d.view.SetBorder(true).SetTitleAlign(tview.AlignLeft)

	d.status = tview.NewTextView()
	d.status.SetTextColor(tcell.ColorYellow)
	d.status.SetText(fmt.Sprintf(" %s customers | Tab: next pane  Esc/q: quit", humanize.Comma(int64(data.Len()))))

	d.sidebar = tview.NewList().ShowSecondaryText(false)
	d.sidebar.SetBorder(true).SetTitle(" Global Fashion Retail Sales ")
	for _, name := range sectionNames {
		d.sidebar.AddItem(name, "", 0, nil)
	}
	d.sidebar.SetChangedFunc(func(index int, _, _ string, _ rune) {
		d.sel.Section = Section(index)
		d.refresh()
	})

	labels := make([]string, len(models.Dimensions))
	for i, dim := range models.Dimensions {
		labels[i] = dim.Label()
	}
	d.split = tview.NewDropDown().SetLabel("Split by ").SetOptions(labels, func(_ string, index int) {
		if index >= 0 {
			d.sel.Dimension = models.Dimensions[index]
			d.refresh()
		}
	})
	d.test = tview.NewDropDown().SetLabel("Test ").SetOptions(testNames(), func(_ string, index int) {
		d.sel.Test = index
		d.refresh()
	})
	d.groupA = tview.NewDropDown().SetLabel("A ").SetOptions(d.categories, func(text string, _ int) {
		d.sel.A = text
		d.refresh()
	})
	d.groupB = tview.NewDropDown().SetLabel("B ").SetOptions(d.categories, func(text string, _ int) {
		d.sel.B = text
		d.refresh()
	})
	d.split.SetCurrentOption(0)
	d.test.SetCurrentOption(0)
	if len(d.categories) > 1 {
		d.groupA.SetCurrentOption(0)
		d.groupB.SetCurrentOption(1)
	}

	controls := tview.NewFlex().
		AddItem(d.split, 0, 2, false).
		AddItem(d.test, 0, 2, false).
		AddItem(d.groupA, 0, 1, false).
		AddItem(d.groupB, 0, 1, false)
	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(controls, 1, 0, false).
		AddItem(d.view, 0, 1, false).
		AddItem(d.status, 1, 0, false)
	layout := tview.NewFlex().
		AddItem(d.sidebar, 24, 0, true).
		AddItem(main, 0, 1, false)

	d.focusable = []tview.Primitive{d.sidebar, d.split, d.test, d.groupA, d.groupB, d.view}
	d.app.SetRoot(layout, true).SetFocus(d.sidebar)
	d.app.SetInputCapture(d.handleKey)
	d.refresh()
	return d
}

// Run bloque jusqu'à la fermeture de l'interface.
func (d *Dashboard) Run() error {
	return d.app.Run()
}

// Stop ferme l'interface.
func (d *Dashboard) Stop() {
	d.app.Stop()
}

// Text renvoie le contenu courant du panneau principal.
func (d *Dashboard) Text() string {
	return d.view.GetText(false)
}

// Select active une section (comme un clic dans la barre latérale).
func (d *Dashboard) Select(s Section) {
	d.sidebar.SetCurrentItem(int(s))
	d.sel.Section = s
	d.refresh()
}

func (d *Dashboard) refresh() {
	// les options initiales déclenchent les callbacks avant la fin de New
	if d.view == nil || d.focusable == nil {
		return
	}
	d.view.SetTitle(" " + d.sel.Section.String() + " ")
	d.view.SetText(Render(d.data, d.summaryPath, d.sel))
	d.view.ScrollToBeginning()
}

func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEsc:
		d.Stop()
		return nil
	case tcell.KeyTab:
		d.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		d.cycleFocus(-1)
		return nil
	case tcell.KeyRune:
		if event.Rune() == 'q' {
			d.Stop()
			return nil
		}
	}
	return event
}

func (d *Dashboard) cycleFocus(step int) {
	current := d.app.GetFocus()
	next := 0
	for i, p := range d.focusable {
		if p == current {
			next = (i + step + len(d.focusable)) % len(d.focusable)
			break
		}
	}
	d.app.SetFocus(d.focusable[next])
}
