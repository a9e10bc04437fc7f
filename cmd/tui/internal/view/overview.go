package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/rates"
)

// displayCurrencies are always shown in the rate bar.
var displayCurrencies = []string{"USD", "TWD"}

type OverviewModel struct {
	CommonModel
	svc    *dashboard.Service
	filter datefilter.Filter

	spinner spinner.Model
	table   table.Model
	loading bool
	summary dashboard.Summary
	rates   dashboard.RatesView
	status  string
	err     error
}

func NewOverviewModel(svc *dashboard.Service, f datefilter.Filter) OverviewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := []table.Column{
		{Title: "Category", Width: 22},
		{Title: "Amount", Width: 16},
		{Title: "Share", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	return OverviewModel{
		svc:     svc,
		filter:  f,
		spinner: s,
		table:   t,
		loading: true,
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return s
}

func (m OverviewModel) Title() string { return "Overview" }
func (m OverviewModel) ShortHelp() string {
	return "f: period | t: transactions | g: chart | r: refresh | c: clear cache | q: quit"
}

func (m OverviewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m OverviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.rates = msg.rates
		m.refreshTable()

		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Refresh failed: %v", msg.err)
			return m, nil
		}

		m.status = msg.status
		m.loading = true

		return m, tea.Batch(m.spinner.Tick, m.loadCmd())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-16, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.status = "Refreshing..."
			return m, m.refreshCmd()
		case "c":
			return m, m.clearCacheCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *OverviewModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.summary.CategoryBreakdown))
	for _, c := range m.summary.CategoryBreakdown {
		rows = append(rows, table.Row{
			c.Category,
			rates.Format(c.Amount, m.summary.Currency),
			fmt.Sprintf("%.1f%%", c.Percentage),
		})
	}

	m.table.SetRows(rows)
}

func (m OverviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Loading transactions...")
	}

	if m.err != nil {
		return errorView(m.err)
	}

	header := fmt.Sprintf("Period: %s | %d transactions", activeStyle(DescribeFilter(m.filter)), m.summary.Count)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Spendboard"),
		header,
		"",
		m.cards(),
		"",
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		m.rateBar(),
	)

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m OverviewModel) cards() string {
	card := lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(24)

	net := m.summary.Net
	netStyle := incomeStyle

	if net < 0 {
		netStyle = expenseStyle
	}

	sign := ""
	if net >= 0 {
		sign = "+"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card.Render(fmt.Sprintf("Net\n%s\n%s",
			netStyle.Render(rates.Format(net, m.summary.Currency)),
			faintStyle.Render(fmt.Sprintf("%s%.1f%% of income", sign, m.summary.NetPercentage)),
		)),
		card.Render(fmt.Sprintf("Income\n%s", incomeStyle.Render(rates.Format(m.summary.TotalIncome, m.summary.Currency)))),
		card.Render(fmt.Sprintf("Expense\n%s", expenseStyle.Render(rates.Format(m.summary.TotalExpense, m.summary.Currency)))),
	)
}

func (m OverviewModel) rateBar() string {
	parts := make([]string, 0, len(displayCurrencies))

	for _, c := range displayCurrencies {
		value := "N/A"
		if r, ok := m.rates.Rates[c]; ok && r > 0 {
			value = fmt.Sprintf("%.4f", r)
		} else if m.rates.Loading {
			value = "..."
		}

		parts = append(parts, fmt.Sprintf("%s/%s: %s", c, m.rates.Target, value))
	}

	return faintStyle.Render("Exchange rates: " + strings.Join(parts, "  "))
}

// Messages

type overviewLoadedMsg struct {
	summary dashboard.Summary
	rates   dashboard.RatesView
	err     error
}

func (m OverviewModel) loadCmd() tea.Cmd {
	svc, f := m.svc, m.filter

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		summary, err := svc.Overview(ctx, f)

		return overviewLoadedMsg{summary: summary, rates: svc.Rates(), err: err}
	}
}

type refreshedMsg struct {
	status string
	err    error
}

func (m OverviewModel) refreshCmd() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		n, err := svc.Refresh(ctx)
		if err != nil {
			return refreshedMsg{err: err}
		}

		return refreshedMsg{status: fmt.Sprintf("Reloaded %d transactions", n)}
	}
}

func (m OverviewModel) clearCacheCmd() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		if err := svc.ClearCache(ctx); err != nil {
			return refreshedMsg{err: err}
		}

		return refreshedMsg{status: "Cache cleared"}
	}
}
