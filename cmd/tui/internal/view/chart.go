package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/overview"
	"github.com/MrJamesThe3rd/spendboard/internal/rates"
)

const barWidth = 40

// ChartModel draws the income/expense series for a year or month as bars.
type ChartModel struct {
	CommonModel
	svc    *dashboard.Service
	filter datefilter.Filter

	points   []overview.Point
	currency string
	loading  bool
	err      error
}

func NewChartModel(svc *dashboard.Service, f datefilter.Filter) ChartModel {
	return ChartModel{svc: svc, filter: f, loading: true}
}

func (m ChartModel) Title() string     { return "Chart" }
func (m ChartModel) ShortHelp() string { return "Esc: back" }

func (m ChartModel) Init() tea.Cmd {
	svc, f := m.svc, m.filter

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		points, err := svc.Chart(ctx, f)

		return chartLoadedMsg{points: points, currency: svc.Rates().Target, err: err}
	}
}

type chartLoadedMsg struct {
	points   []overview.Point
	currency string
	err      error
}

func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chartLoadedMsg:
		m.loading = false
		m.points = msg.points
		m.currency = msg.currency
		m.err = msg.err
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ChartModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading chart...")
	}

	if m.err != nil {
		return errorView(m.err)
	}

	if len(m.points) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("Charts are available for a year or a month.\n\n(Esc to back)")
	}

	peak := 0.0
	for _, p := range m.points {
		peak = max(peak, p.Income, p.Expense)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(DescribeFilter(m.filter)) + "\n\n")

	for _, p := range m.points {
		fmt.Fprintf(&b, "%4s %s %s\n", p.Period, expenseStyle.Render(bar(p.Expense, peak)), faintStyle.Render(rates.Format(p.Expense, m.currency)))

		if p.Income > 0 {
			fmt.Fprintf(&b, "%4s %s %s\n", "", incomeStyle.Render(bar(p.Income, peak)), faintStyle.Render(rates.Format(p.Income, m.currency)))
		}
	}

	b.WriteString("\n" + faintStyle.Render("(Esc to back)"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func bar(v, peak float64) string {
	if peak <= 0 || v <= 0 {
		return ""
	}

	n := max(int(v/peak*barWidth), 1)

	return strings.Repeat("█", n)
}
