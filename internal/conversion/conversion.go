// Package conversion expresses transaction amounts in the target currency.
package conversion

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

// RateSource is the part of the rate store the converter needs.
type RateSource interface {
	FetchRates(ctx context.Context, currencies []string)
	Convert(amount float64, from string) float64
}

type Converter struct {
	rates RateSource

	mu        sync.Mutex
	requested string
}

func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Result maps transaction keys to original amounts expressed in the target currency.
// Transactions with equal keys share one entry.
type Result struct {
	amounts map[string]float64
}

// Convert requests rates whenever the set of currencies in txs differs from the
// previous call, then converts each original amount. Missing rates leave the
// amount as is.
func (c *Converter) Convert(ctx context.Context, txs []transaction.Transaction) Result {
	seen := make(map[string]struct{})
	currencies := make([]string, 0)

	for _, t := range txs {
		if _, ok := seen[t.Currency]; !ok {
			seen[t.Currency] = struct{}{}
			currencies = append(currencies, t.Currency)
		}
	}

	if len(currencies) > 0 && c.changed(currencies) {
		c.rates.FetchRates(ctx, currencies)
	}

	res := Result{amounts: make(map[string]float64, len(txs))}

	for _, t := range txs {
		res.amounts[transaction.Key(t)] = c.rates.Convert(t.OriginalAmount, t.Currency)
	}

	return res
}

// changed records currencies as the last requested set and reports whether it
// differs from the previous one.
func (c *Converter) changed(currencies []string) bool {
	sorted := slices.Clone(currencies)
	slices.Sort(sorted)
	key := strings.Join(sorted, ",")

	c.mu.Lock()
	defer c.mu.Unlock()

	if key == c.requested {
		return false
	}

	c.requested = key

	return true
}

// Amount is the converted original amount, or the unconverted one when t was not
// part of the conversion.
func (r Result) Amount(t transaction.Transaction) float64 {
	if v, ok := r.amounts[transaction.Key(t)]; ok {
		return v
	}

	return t.OriginalAmount
}

// Effective is the amount t contributes to aggregates: the converted amount, halved
// when the cost is shared.
func (r Result) Effective(t transaction.Transaction) float64 {
	amount := r.Amount(t)
	if t.Shared() {
		return amount / 2
	}

	return amount
}

// Apply returns copies of txs whose FinalAmount is the effective converted amount.
func (r Result) Apply(txs []transaction.Transaction) []transaction.Transaction {
	out := make([]transaction.Transaction, len(txs))

	for i, t := range txs {
		t.FinalAmount = r.Effective(t)
		out[i] = t
	}

	return out
}
