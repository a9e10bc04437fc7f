// Package dashboard answers the questions the dashboard screens ask: totals, the
// filtered ledger, chart series and the rates behind them.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/MrJamesThe3rd/spendboard/internal/category"
	"github.com/MrJamesThe3rd/spendboard/internal/conversion"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/overview"
	"github.com/MrJamesThe3rd/spendboard/internal/rates"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

// Loader is satisfied by *loader.Loader.
type Loader interface {
	Load(ctx context.Context) ([]transaction.Transaction, error)
	Refresh(ctx context.Context) ([]transaction.Transaction, error)
	ClearCache(ctx context.Context) error
}

// Rates is satisfied by *rates.Store.
type Rates interface {
	conversion.RateSource
	Refresh(ctx context.Context)
	Snapshot() map[string]float64
	Target() string
	Loading() bool
	LastUpdated() time.Time
}

type Service struct {
	loader     Loader
	rates      Rates
	dates      *datefilter.Engine
	converter  *conversion.Converter
	calc       *overview.Calculator
	categories category.Config
	log        *slog.Logger
}

func NewService(l Loader, r Rates, dates *datefilter.Engine, categories category.Config, log *slog.Logger) *Service {
	if dates == nil {
		dates = datefilter.New(nil, log)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		loader:     l,
		rates:      r,
		dates:      dates,
		converter:  conversion.NewConverter(r),
		calc:       overview.NewCalculator(categories, dates),
		categories: categories,
		log:        log.With("component", "dashboard"),
	}
}

// Dates exposes the engine used to interpret filters.
func (s *Service) Dates() *datefilter.Engine {
	return s.dates
}

// Categories exposes the shared category ordering.
func (s *Service) Categories() category.Config {
	return s.categories
}

type Summary struct {
	overview.Overview
	Net           float64 `json:"net"`
	NetPercentage float64 `json:"netPercentage"`
	Currency      string  `json:"currency"`
	Count         int     `json:"count"`
}

// Row is a ledger line with its amount expressed in the target currency.
type Row struct {
	transaction.Transaction
	Type      transaction.Type `json:"type"`
	Converted float64          `json:"converted"`
	Display   string           `json:"display"`
	Notes     []string         `json:"notes"`
}

type RatesView struct {
	Target      string             `json:"target"`
	Rates       map[string]float64 `json:"rates"`
	Loading     bool               `json:"loading"`
	LastUpdated *time.Time         `json:"lastUpdated,omitempty"`
}

// view is one filter applied to the current transaction set, converted.
type view struct {
	all      []transaction.Transaction
	filtered []transaction.Transaction
	conv     conversion.Result
}

func (s *Service) view(ctx context.Context, f datefilter.Filter) (view, error) {
	if err := f.Validate(); err != nil {
		return view{}, err
	}

	all, err := s.loader.Load(ctx)
	if err != nil {
		return view{}, fmt.Errorf("loading transactions: %w", err)
	}

	return view{
		all:      all,
		filtered: s.dates.Apply(all, f),
		conv:     s.converter.Convert(ctx, all),
	}, nil
}

func (s *Service) Overview(ctx context.Context, f datefilter.Filter) (Summary, error) {
	v, err := s.view(ctx, f)
	if err != nil {
		return Summary{}, err
	}

	o := s.calc.Compute(v.conv.Apply(v.filtered), v.conv.Apply(v.all))

	return Summary{
		Overview:      o,
		Net:           o.Net(),
		NetPercentage: o.NetPercentage(),
		Currency:      s.rates.Target(),
		Count:         len(v.filtered),
	}, nil
}

// Transactions returns the filtered ledger in date order.
func (s *Service) Transactions(ctx context.Context, f datefilter.Filter) ([]Row, error) {
	v, err := s.view(ctx, f)
	if err != nil {
		return nil, err
	}

	target := s.rates.Target()
	out := make([]Row, len(v.filtered))

	for i, t := range v.filtered {
		amount := v.conv.Effective(t)

		out[i] = Row{
			Transaction: t,
			Type:        transaction.TypeOf(t),
			Converted:   amount,
			Display:     rates.Format(math.Abs(amount), target),
			Notes:       notes(t),
		}
	}

	return out, nil
}

func notes(t transaction.Transaction) []string {
	out := []string{}

	if t.Trip {
		out = append(out, "Trip")
	}

	if t.GF > 0 {
		out = append(out, "GF")
	}

	return out
}

func (s *Service) Chart(ctx context.Context, f datefilter.Filter) ([]overview.Point, error) {
	v, err := s.view(ctx, f)
	if err != nil {
		return nil, err
	}

	return s.calc.Chart(v.conv.Apply(v.filtered), f), nil
}

func (s *Service) Years(ctx context.Context) ([]int, error) {
	all, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	return s.dates.AvailableYears(all), nil
}

func (s *Service) Months(ctx context.Context, year int) ([]int, error) {
	all, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	return s.dates.AvailableMonths(all, year), nil
}

// DefaultFilter selects the most recent year with data, or everything when there
// is none.
func (s *Service) DefaultFilter(ctx context.Context) (datefilter.Filter, error) {
	years, err := s.Years(ctx)
	if err != nil {
		return datefilter.Filter{}, err
	}

	if len(years) == 0 {
		return datefilter.Filter{Type: datefilter.TypeCustom}, nil
	}

	return datefilter.ForYear(years[0]), nil
}

func (s *Service) Rates() RatesView {
	v := RatesView{
		Target:  s.rates.Target(),
		Rates:   s.rates.Snapshot(),
		Loading: s.rates.Loading(),
	}

	if ts := s.rates.LastUpdated(); !ts.IsZero() {
		v.LastUpdated = &ts
	}

	return v
}

// Refresh reloads transactions from the remote store and force-refreshes every
// requested rate. Rate failures keep the previous rates.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	txs, err := s.loader.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("refreshing transactions: %w", err)
	}

	s.rates.Refresh(ctx)

	s.log.Info("dashboard refreshed", "transactions", len(txs))

	return len(txs), nil
}

func (s *Service) ClearCache(ctx context.Context) error {
	return s.loader.ClearCache(ctx)
}
