package rates

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a provider does not quote the currency.
	ErrUnsupported = errors.New("currency not supported by provider")
	// ErrRateMissing is returned when a response lacks a usable rate for the target.
	ErrRateMissing = errors.New("rate missing from response")
)

// RateFetchError describes a failed lookup for a single currency. It is logged by the
// store and never aborts other currencies in the same fetch.
type RateFetchError struct {
	Currency string
	Provider string
	Err      error
}

func (e *RateFetchError) Error() string {
	return fmt.Sprintf("fetching %s rate from %s: %v", e.Currency, e.Provider, e.Err)
}

func (e *RateFetchError) Unwrap() error {
	return e.Err
}
