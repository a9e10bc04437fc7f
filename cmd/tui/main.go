package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendboard/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/spendboard/internal/app"
	"github.com/MrJamesThe3rd/spendboard/internal/config"
	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
)

type View int

const (
	ViewOverview     View = 0
	ViewFilter       View = 1
	ViewTransactions View = 2
	ViewChart        View = 3
)

type model struct {
	svc    *dashboard.Service
	filter datefilter.Filter
	size   tea.WindowSizeMsg

	currentView View

	overviewView     view.OverviewModel
	filterView       view.FilterPicker
	transactionsView view.TransactionsModel
	chartView        view.ChartModel
}

func newModel(svc *dashboard.Service, f datefilter.Filter) model {
	return model{
		svc:          svc,
		filter:       f,
		currentView:  ViewOverview,
		overviewView: view.NewOverviewModel(svc, f),
	}
}

func (m model) Init() tea.Cmd {
	return m.overviewView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewOverview {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "f":
				m.currentView = ViewFilter
				m.filterView = view.NewFilterPicker(m.svc)

				return m, m.filterView.Init()
			case "t":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.svc, m.filter)

				return m, tea.Batch(m.transactionsView.Init(), m.resize())
			case "g":
				m.currentView = ViewChart
				m.chartView = view.NewChartModel(m.svc, m.filter)

				return m, m.chartView.Init()
			}
		}
	case view.FilterSelectedMsg:
		m.filter = msg.Filter
		m.currentView = ViewOverview
		m.overviewView = view.NewOverviewModel(m.svc, m.filter)

		return m, tea.Batch(m.overviewView.Init(), m.resize())
	case view.BackMsg:
		m.currentView = ViewOverview
		return m, nil
	}

	switch m.currentView {
	case ViewOverview:
		var newModel tea.Model
		newModel, cmd = m.overviewView.Update(msg)
		m.overviewView = newModel.(view.OverviewModel)
	case ViewFilter:
		var newModel tea.Model
		newModel, cmd = m.filterView.Update(msg)
		m.filterView = newModel.(view.FilterPicker)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewChart:
		var newModel tea.Model
		newModel, cmd = m.chartView.Update(msg)
		m.chartView = newModel.(view.ChartModel)
	}

	return m, cmd
}

// resize replays the last window size to a freshly built screen.
func (m model) resize() tea.Cmd {
	if m.size.Width == 0 {
		return nil
	}

	size := m.size

	return func() tea.Msg { return size }
}

func (m model) View() string {
	switch m.currentView {
	case ViewOverview:
		return m.overviewView.View()
	case ViewFilter:
		return m.filterView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewChart:
		return m.chartView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	// The terminal belongs to bubbletea; logs go to a file when asked for.
	logOut := io.Discard
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "spendboard")
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()

		logOut = f
	}

	log := slog.New(slog.NewTextHandler(logOut, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.Wire(cfg, log)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.Start(ctx)

	f, err := a.Dashboard.DefaultFilter(ctx)
	if err != nil {
		log.Warn("failed to pick default period", "error", err)
		f = datefilter.Filter{Type: datefilter.TypeCustom}
	}

	p := tea.NewProgram(newModel(a.Dashboard, f), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
