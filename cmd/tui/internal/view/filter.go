package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
)

type filterMode int

const (
	filterModeYear filterMode = iota
	filterModeMonth
	filterModeAll
	filterModeCustom
)

func (f filterMode) String() string {
	switch f {
	case filterModeYear:
		return "Year"
	case filterModeMonth:
		return "Month"
	case filterModeAll:
		return "All Time"
	case filterModeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// FilterSelectedMsg is emitted once the user has settled on a filter.
type FilterSelectedMsg struct {
	Filter datefilter.Filter
}

type filterState int

const (
	filterStateLoading filterState = iota
	filterStateSelect
	filterStateForm
	filterStateCustom
)

// filterValues is shared with the huh form, which keeps pointers into it.
type filterValues struct {
	year  int
	month int
}

// FilterPicker lets the user choose a year, a month or a custom range among the
// periods that actually have transactions.
type FilterPicker struct {
	CommonModel
	svc *dashboard.Service

	state    filterState
	selected filterMode

	years  []int
	months map[int][]int

	form   *huh.Form
	values *filterValues

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewFilterPicker(svc *dashboard.Service) FilterPicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return FilterPicker{
		svc:        svc,
		state:      filterStateLoading,
		values:     &filterValues{},
		startInput: si,
		endInput:   ei,
	}
}

func (m FilterPicker) Title() string { return "Choose Period" }
func (m FilterPicker) ShortHelp() string {
	return "Up/Down: move | Enter: select | Esc: back"
}

type availabilityMsg struct {
	years  []int
	months map[int][]int
	err    error
}

func (m FilterPicker) Init() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := LoadCtx()
		defer cancel()

		years, err := svc.Years(ctx)
		if err != nil {
			return availabilityMsg{err: err}
		}

		months := make(map[int][]int, len(years))

		for _, y := range years {
			ms, err := svc.Months(ctx, y)
			if err != nil {
				return availabilityMsg{err: err}
			}

			months[y] = ms
		}

		return availabilityMsg{years: years, months: months}
	}
}

func (m FilterPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(availabilityMsg); ok {
		m.err = msg.err
		m.years = msg.years
		m.months = msg.months
		m.state = filterStateSelect

		return m, nil
	}

	switch m.state {
	case filterStateSelect:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.updateSelect(keyMsg)
		}
	case filterStateForm:
		return m.updateForm(msg)
	case filterStateCustom:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.updateCustom(keyMsg)
		}

		return m.updateInputs(msg)
	}

	return m, nil
}

func (m FilterPicker) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.selected > filterModeYear {
			m.selected--
		}
	case "down", "j":
		if m.selected < filterModeCustom {
			m.selected++
		}
	case "enter":
		m.err = nil

		switch m.selected {
		case filterModeAll:
			return m, selected(datefilter.Filter{Type: datefilter.TypeCustom})
		case filterModeCustom:
			m.state = filterStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		if len(m.years) == 0 {
			m.err = fmt.Errorf("no transactions to pick a period from")
			return m, nil
		}

		m.values.year = m.years[0]
		m.values.month = 0
		m.form = m.buildForm()
		m.state = filterStateForm

		return m, m.form.Init()
	}

	return m, nil
}

func (m FilterPicker) buildForm() *huh.Form {
	yearSelect := huh.NewSelect[int]().
		Title("Year").
		Options(huh.NewOptions(m.years...)...).
		Value(&m.values.year)

	if m.selected == filterModeYear {
		return huh.NewForm(huh.NewGroup(yearSelect)).WithWidth(30).WithShowHelp(false)
	}

	months := m.months
	values := m.values

	monthSelect := huh.NewSelect[int]().
		Title("Month").
		OptionsFunc(func() []huh.Option[int] {
			opts := make([]huh.Option[int], 0, 12)
			for _, mo := range months[values.year] {
				opts = append(opts, huh.NewOption(time.Month(mo).String(), mo))
			}

			return opts
		}, &values.year).
		Value(&values.month)

	return huh.NewForm(huh.NewGroup(yearSelect, monthSelect)).WithWidth(30).WithShowHelp(false)
}

func (m FilterPicker) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = filterStateSelect
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.selected == filterModeYear {
		return m, selected(datefilter.ForYear(m.values.year))
	}

	if m.values.month == 0 {
		m.err = fmt.Errorf("no months with transactions in %d", m.values.year)
		m.state = filterStateSelect

		return m, nil
	}

	return m, selected(datefilter.ForMonth(m.values.year, m.values.month))
}

func (m FilterPicker) updateCustom(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		loc := m.svc.Dates().Location()

		from, err := time.ParseInLocation(time.DateOnly, m.startInput.Value(), loc)
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil
		}

		to, err := time.ParseInLocation(time.DateOnly, m.endInput.Value(), loc)
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil
		}

		f := datefilter.ForRange(from, to.AddDate(0, 0, 1).Add(-time.Nanosecond))
		if err := f.Validate(); err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, selected(f)

	case "esc":
		m.state = filterStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func (m FilterPicker) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func selected(f datefilter.Filter) tea.Cmd {
	return func() tea.Msg {
		return FilterSelectedMsg{Filter: f}
	}
}

func (m FilterPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	var body string

	switch m.state {
	case filterStateLoading:
		body = "Loading available periods..."
	case filterStateForm:
		body = m.form.View() + "\n\n(Enter to confirm, Esc to back)"
	case filterStateCustom:
		body = fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)",
			m.startInput.View(),
			m.endInput.View(),
		)
	default:
		body = "Select Period:\n\n"
		for i := filterModeYear; i <= filterModeCustom; i++ {
			cursor := " "
			if m.selected == i {
				cursor = ">"
			}

			body += fmt.Sprintf("%s %s\n", cursor, i.String())
		}

		body += "\n(Enter to select, Esc to back)"
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body + errStr)
}
