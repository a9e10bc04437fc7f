package transaction

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical transaction timestamp format.
const DateLayout = "2006-01-02 15:04:05"

// DefaultCurrency is assumed when a record carries no currency code.
const DefaultCurrency = "USD"

// Type represents the classification of a transaction derived from its final amount.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

// Transaction is a single ledger line. Values are treated as immutable once built.
//
// FinalAmount sign convention: positive is an expense, negative is income and zero
// is a transfer that contributes to nothing.
type Transaction struct {
	ID                   uuid.UUID `json:"id"`
	Date                 string    `json:"date"`
	ItemName             string    `json:"itemName"`
	Category             string    `json:"category"`
	OriginalAmount       float64   `json:"originalAmount"`
	FinalAmount          float64   `json:"finalAmount"`
	Currency             string    `json:"currency"`
	Share                float64   `json:"share"`
	Exclude              float64   `json:"exclude"`
	GF                   float64   `json:"gf"`
	GirlFriendPercentage float64   `json:"girlFriendPercentage"`
	Trip                 bool      `json:"trip"`
}

// TypeOf classifies a transaction by the sign of its final amount.
// Every aggregation path goes through this function.
func TypeOf(t Transaction) Type {
	switch {
	case t.FinalAmount > 0:
		return TypeExpense
	case t.FinalAmount < 0:
		return TypeIncome
	}

	return TypeTransfer
}

// Key returns the composite identity used to index per-transaction conversions.
// Transactions with identical date, item, amount and currency share a key.
func Key(t Transaction) string {
	return t.Date + "-" + t.ItemName + "-" + strconv.FormatFloat(t.OriginalAmount, 'f', -1, 64) + "-" + t.Currency
}

// Shared reports whether the cost is split with a second party.
func (t Transaction) Shared() bool {
	return t.Share != 0
}

// Time parses the transaction date in the given location.
func (t Transaction) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	return time.ParseInLocation(DateLayout, t.Date, loc)
}

// Validate checks that every field conforms to the canonical schema. Dates are only
// required to be present; callers parsing them must tolerate other layouts.
func (t Transaction) Validate() error {
	if t.Date == "" {
		return &ValidationError{Row: -1, Field: "date", Reason: "must not be empty"}
	}

	if t.Currency == "" {
		return &ValidationError{Row: -1, Field: "currency", Reason: "must not be empty"}
	}

	numbers := []struct {
		name  string
		value float64
	}{
		{"originalAmount", t.OriginalAmount},
		{"finalAmount", t.FinalAmount},
		{"share", t.Share},
		{"exclude", t.Exclude},
		{"gf", t.GF},
		{"girlFriendPercentage", t.GirlFriendPercentage},
	}

	for _, n := range numbers {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return &ValidationError{Row: -1, Field: n.name, Reason: "must be a finite number"}
		}
	}

	return nil
}
