package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/rates"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

// rowItem wraps a ledger row to implement list.Item.
type rowItem struct {
	row dashboard.Row
}

func (i rowItem) Title() string {
	amount := i.row.Display

	switch i.row.Type {
	case transaction.TypeIncome:
		amount = incomeStyle.Render("+" + amount)
	case transaction.TypeExpense:
		amount = expenseStyle.Render("-" + amount)
	default:
		amount = faintStyle.Render(amount)
	}

	date := i.row.Date
	if len(date) > 10 {
		date = date[:10]
	}

	return fmt.Sprintf("%s  %-14s  %s", date, amount, i.row.ItemName)
}

func (i rowItem) Description() string {
	desc := i.row.Category

	if i.row.Currency != "" {
		desc += "  " + rates.Format(i.row.OriginalAmount, i.row.Currency)
	}

	if len(i.row.Notes) > 0 {
		desc += "  [" + strings.Join(i.row.Notes, ", ") + "]"
	}

	return desc
}

func (i rowItem) FilterValue() string {
	return i.row.ItemName + " " + i.row.Category
}

type TransactionsModel struct {
	CommonModel
	svc    *dashboard.Service
	filter datefilter.Filter

	list    list.Model
	loading bool
	err     error
}

func NewTransactionsModel(svc *dashboard.Service, f datefilter.Filter) TransactionsModel {
	l := list.New([]list.Item{}, rowItemDelegate{}, 0, 0)
	l.Title = "Transactions: " + DescribeFilter(f)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		svc:     svc,
		filter:  f,
		list:    l,
		loading: true,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	return "Esc: back | /: filter"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		items := make([]list.Item, len(msg.rows))
		for i, r := range msg.rows {
			items[i] = rowItem{row: r}
		}

		return m, m.list.SetItems(items)

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.list.FilterState() == list.Unfiltered {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return errorView(m.err)
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No transactions found\n\n(Esc to back)")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(m.list.View())
}

// Messages

type rowsLoadedMsg struct {
	rows []dashboard.Row
	err  error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	svc, f := m.svc, m.filter

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		rows, err := svc.Transactions(ctx, f)

		return rowsLoadedMsg{rows: rows, err: err}
	}
}

// rowItemDelegate renders items in the list.
type rowItemDelegate struct{}

func (d rowItemDelegate) Height() int                             { return 2 }
func (d rowItemDelegate) Spacing() int                            { return 0 }
func (d rowItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(rowItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> ") + title
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s", faintStyle.Render(i.Description()))
}
