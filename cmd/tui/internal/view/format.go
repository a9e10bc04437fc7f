package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
)

// loadTimeout covers a cold start that has to page through the whole remote table.
const loadTimeout = 60 * time.Second

var (
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
)

// LoadCtx returns a context with the timeout used for dashboard loads.
func LoadCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), loadTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// DescribeFilter renders a filter the way the header shows it.
func DescribeFilter(f datefilter.Filter) string {
	switch f.Type {
	case datefilter.TypeYear:
		if f.Year != nil {
			return fmt.Sprintf("Year %d", *f.Year)
		}
	case datefilter.TypeMonth:
		if f.Year != nil && f.Month != nil {
			return fmt.Sprintf("%s %d", time.Month(*f.Month), *f.Year)
		}
	case datefilter.TypeCustom:
		if f.From != nil && f.To != nil {
			return fmt.Sprintf("%s to %s", f.From.Format(time.DateOnly), f.To.Format(time.DateOnly))
		}
	}

	return "All Time"
}

func errorView(err error) string {
	return lipgloss.NewStyle().Padding(2).Render(errStyle.Render(fmt.Sprintf("Error: %v", err)))
}
