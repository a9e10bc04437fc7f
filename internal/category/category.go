// Package category holds the display order of categories and the set treated as
// income. Aggregation and every presentation layer read the same Config.
package category

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collators is a pool because a collate.Collator is not safe for concurrent use.
var collators = sync.Pool{
	New: func() any { return collate.New(language.English) },
}

// DefaultOrder lists bills first, then daily expenses, then the catch-all.
var DefaultOrder = []string{
	"Rent",
	"Wi-Fi",
	"Energy",
	"Council Tax",
	"Water",
	"Council",

	"Eating Out",
	"Groceries",
	"Transportation",
	"Shopping",
	"Necessity",
	"Entertainment",
	"Exercise",
	"Learning",
	"Subscription",
	"Subscription Service",
	"Others",
}

var DefaultIncome = []string{"Salary", "OtherIncomes"}

type Config struct {
	order  map[string]int
	income map[string]struct{}
}

// New builds a Config. Empty lists fall back to the defaults.
func New(order, income []string) Config {
	if len(order) == 0 {
		order = DefaultOrder
	}

	if len(income) == 0 {
		income = DefaultIncome
	}

	c := Config{
		order:  make(map[string]int, len(order)),
		income: make(map[string]struct{}, len(income)),
	}

	for i, name := range order {
		name = strings.TrimSpace(name)
		if _, dup := c.order[name]; !dup {
			c.order[name] = i
		}
	}

	for _, name := range income {
		c.income[strings.TrimSpace(name)] = struct{}{}
	}

	return c
}

func Default() Config {
	return New(nil, nil)
}

// IsIncome reports whether category may contribute to total income.
func (c Config) IsIncome(category string) bool {
	_, ok := c.income[category]
	return ok
}

// Compare orders listed categories by position and places unlisted ones after them,
// alphabetically in English collation order, so case does not separate "apple"
// from "Zoo".
func (c Config) Compare(a, b string) int {
	ia, okA := c.order[a]
	ib, okB := c.order[b]

	switch {
	case okA && okB:
		return ia - ib
	case okA:
		return -1
	case okB:
		return 1
	}

	return alphabetical(a, b)
}

func alphabetical(a, b string) int {
	col := collators.Get().(*collate.Collator)
	defer collators.Put(col)

	if n := col.CompareString(a, b); n != 0 {
		return n
	}

	return strings.Compare(a, b)
}

// Sort orders categories in place.
func (c Config) Sort(categories []string) {
	slices.SortStableFunc(categories, c.Compare)
}

// SortBy orders items in place by the category key picks.
func SortBy[T any](c Config, items []T, key func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return c.Compare(key(a), key(b))
	})
}
