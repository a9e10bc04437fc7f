// Package datefilter selects transactions by calendar year, month or an explicit range.
package datefilter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

type Type string

const (
	TypeYear   Type = "year"
	TypeMonth  Type = "month"
	TypeCustom Type = "custom"
)

const (
	minYear = 2000
	maxYear = 2100
)

// Filter is a tagged union: Year uses Year, Month uses Year and Month, Custom uses
// From and To. Unset fields make the filter match everything.
type Filter struct {
	Type  Type       `json:"type"`
	Year  *int       `json:"year,omitempty"`
	Month *int       `json:"month,omitempty"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

func ForYear(year int) Filter {
	return Filter{Type: TypeYear, Year: &year}
}

func ForMonth(year, month int) Filter {
	return Filter{Type: TypeMonth, Year: &year, Month: &month}
}

func ForRange(from, to time.Time) Filter {
	return Filter{Type: TypeCustom, From: &from, To: &to}
}

// Validate rejects filters that could never be built from the UI.
func (f Filter) Validate() error {
	switch f.Type {
	case TypeYear, TypeMonth, TypeCustom:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidFilter, f.Type)
	}

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidFilter, *f.Month)
	}

	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return fmt.Errorf("%w: range end %s before start %s", ErrInvalidFilter, f.To.Format(time.DateOnly), f.From.Format(time.DateOnly))
	}

	return nil
}

// ErrInvalidFilter is wrapped by every filter validation and query parsing error.
var ErrInvalidFilter = errors.New("invalid date filter")

// DateParseError reports a transaction date that is not in a known layout.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parsing date %q: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// Engine evaluates filters with dates read in a fixed location.
type Engine struct {
	loc *time.Location
	log *slog.Logger
}

// New returns an Engine. A nil loc means time.Local.
func New(loc *time.Location, log *slog.Logger) *Engine {
	if loc == nil {
		loc = time.Local
	}

	if log == nil {
		log = slog.Default()
	}

	return &Engine{loc: loc, log: log.With("component", "datefilter")}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Parse reads a transaction date in the canonical layout, or date-only.
func (e *Engine) Parse(t transaction.Transaction) (time.Time, error) {
	ts, err := t.Time(e.loc)
	if err == nil {
		return ts, nil
	}

	if d, dErr := time.ParseInLocation(time.DateOnly, t.Date, e.loc); dErr == nil {
		return d, nil
	}

	return time.Time{}, &DateParseError{Value: t.Date, Err: err}
}

func (e *Engine) parseOrWarn(t transaction.Transaction) (time.Time, bool) {
	ts, err := e.Parse(t)
	if err != nil {
		e.log.Warn("skipping transaction with unparseable date", "item", t.ItemName, "error", err)
		return time.Time{}, false
	}

	return ts, true
}

// Matches reports whether t falls inside the filter, bounds inclusive.
func (e *Engine) Matches(t transaction.Transaction, f Filter) bool {
	var start, end time.Time

	switch f.Type {
	case TypeYear:
		if f.Year == nil {
			return true
		}

		start = time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, e.loc)
		end = start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	case TypeMonth:
		if f.Year == nil || f.Month == nil {
			return true
		}

		start = time.Date(*f.Year, time.Month(*f.Month), 1, 0, 0, 0, 0, e.loc)
		end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case TypeCustom:
		if f.From == nil || f.To == nil {
			return true
		}

		start, end = *f.From, *f.To
	default:
		return true
	}

	ts, ok := e.parseOrWarn(t)
	if !ok {
		return false
	}

	return !ts.Before(start) && !ts.After(end)
}

// Apply returns the transactions matching f, in their original order.
func (e *Engine) Apply(txs []transaction.Transaction, f Filter) []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(txs))

	for _, t := range txs {
		if e.Matches(t, f) {
			out = append(out, t)
		}
	}

	return out
}

// AvailableYears lists the distinct years present, newest first. Years outside
// 2000-2100 and unparseable dates are skipped.
func (e *Engine) AvailableYears(txs []transaction.Transaction) []int {
	seen := make(map[int]struct{})

	for _, t := range txs {
		ts, ok := e.parseOrWarn(t)
		if !ok {
			continue
		}

		if y := ts.Year(); y >= minYear && y <= maxYear {
			seen[y] = struct{}{}
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}

	slices.Sort(years)
	slices.Reverse(years)

	return years
}

// AvailableMonths lists the months (1-12) with at least one transaction in year,
// ascending.
func (e *Engine) AvailableMonths(txs []transaction.Transaction, year int) []int {
	var present [13]bool

	for _, t := range txs {
		ts, ok := e.parseOrWarn(t)
		if !ok || ts.Year() != year {
			continue
		}

		present[ts.Month()] = true
	}

	months := make([]int, 0, 12)

	for m := 1; m <= 12; m++ {
		if present[m] {
			months = append(months, m)
		}
	}

	return months
}
