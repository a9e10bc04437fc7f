// Package overview derives income, expense and per-category totals from a set of
// transactions. Results are recomputed on every call and never cached.
package overview

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendboard/internal/category"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type Overview struct {
	TotalIncome       float64          `json:"totalIncome"`
	TotalExpense      float64          `json:"totalExpense"`
	CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
}

// Net is income minus expense.
func (o Overview) Net() float64 {
	return o.TotalIncome - o.TotalExpense
}

// NetPercentage is Net as a share of income, or 0 without income.
func (o Overview) NetPercentage() float64 {
	if o.TotalIncome <= 0 {
		return 0
	}

	return o.Net() / o.TotalIncome * 100
}

type Calculator struct {
	Categories category.Config
	Dates      *datefilter.Engine
}

func NewCalculator(categories category.Config, dates *datefilter.Engine) *Calculator {
	if dates == nil {
		dates = datefilter.New(nil, nil)
	}

	return &Calculator{Categories: categories, Dates: dates}
}

// totals accumulates with decimals so long series of cents do not drift.
type totals struct {
	income   decimal.Decimal
	positive decimal.Decimal
	offset   decimal.Decimal
}

func (c *Calculator) add(t *totals, tx transaction.Transaction) {
	amount := decimal.NewFromFloat(tx.FinalAmount)

	switch transaction.TypeOf(tx) {
	case transaction.TypeExpense:
		t.positive = t.positive.Add(amount)
	case transaction.TypeIncome:
		if c.Categories.IsIncome(tx.Category) {
			t.income = t.income.Add(amount.Abs())
		} else {
			t.offset = t.offset.Add(amount.Abs())
		}
	}
}

func (t totals) expense() float64 {
	return t.positive.Sub(t.offset).InexactFloat64()
}

// Compute aggregates filtered. Income counts only income-classified transactions
// in an income category; other negative amounts offset expense. The breakdown covers
// every category in filtered and, when all is given, every non-income category in
// all, so quiet categories still show at zero.
func (c *Calculator) Compute(filtered, all []transaction.Transaction) Overview {
	var total totals

	perCategory := make(map[string]*totals)
	names := make([]string, 0)

	ensure := func(name string) *totals {
		t, ok := perCategory[name]
		if !ok {
			t = &totals{}
			perCategory[name] = t
			names = append(names, name)
		}

		return t
	}

	for _, tx := range filtered {
		c.add(&total, tx)
		c.add(ensure(tx.Category), tx)
	}

	for _, tx := range all {
		if !c.Categories.IsIncome(tx.Category) {
			ensure(tx.Category)
		}
	}

	expense := total.expense()

	c.Categories.Sort(names)

	breakdown := make([]CategoryAmount, 0, len(names))

	for _, name := range names {
		amount := perCategory[name].expense()

		pct := 0.0
		if expense > 0 {
			pct = amount / expense * 100
		}

		breakdown = append(breakdown, CategoryAmount{Category: name, Amount: amount, Percentage: pct})
	}

	return Overview{
		TotalIncome:       total.income.InexactFloat64(),
		TotalExpense:      expense,
		CategoryBreakdown: breakdown,
	}
}

type Point struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Chart buckets filtered into a time series. A year filter yields one point per
// month with income and expense; a month filter yields one point per day with
// expense only. Any other filter yields no points.
func (c *Calculator) Chart(filtered []transaction.Transaction, f datefilter.Filter) []Point {
	switch {
	case f.Type == datefilter.TypeYear && f.Year != nil:
		return c.byMonth(filtered, *f.Year)
	case f.Type == datefilter.TypeMonth && f.Year != nil && f.Month != nil:
		return c.byDay(filtered, *f.Year, *f.Month)
	}

	return []Point{}
}

func (c *Calculator) byMonth(txs []transaction.Transaction, year int) []Point {
	var buckets [12]totals

	for _, tx := range txs {
		ts, err := c.Dates.Parse(tx)
		if err != nil || ts.Year() != year {
			continue
		}

		c.add(&buckets[ts.Month()-1], tx)
	}

	points := make([]Point, 12)

	for i := range buckets {
		points[i] = Point{
			Period:  time.Month(i + 1).String()[:3],
			Income:  buckets[i].income.InexactFloat64(),
			Expense: buckets[i].expense(),
		}
	}

	return points
}

func (c *Calculator) byDay(txs []transaction.Transaction, year, month int) []Point {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	buckets := make([]totals, days)

	for _, tx := range txs {
		ts, err := c.Dates.Parse(tx)
		if err != nil || ts.Year() != year || int(ts.Month()) != month {
			continue
		}

		c.add(&buckets[ts.Day()-1], tx)
	}

	points := make([]Point, days)

	for i := range buckets {
		points[i] = Point{
			Period:  strconv.Itoa(i + 1),
			Expense: buckets[i].expense(),
		}
	}

	return points
}
