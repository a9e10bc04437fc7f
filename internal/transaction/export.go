package transaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Flag is a numeric marker that the export may encode as a boolean or a number.
// Decoding normalizes true to 1 and false to 0; numbers pass through.
type Flag float64

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch string(data) {
	case "true":
		*f = 1
		return nil
	case "false":
		*f = 0
		return nil
	case "null":
		return errors.New("expected number or boolean, got null")
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("expected number or boolean, got %s", data)
	}

	*f = Flag(n)

	return nil
}

// RawRow is one record of the accounting export. Pointer fields distinguish
// absent values from zero values so that missing columns fail validation.
type RawRow struct {
	Date                 *string  `json:"Date"`
	ItemName             *string  `json:"ItemName"`
	Category             *string  `json:"Category"`
	OriginalAmount       *float64 `json:"OriginalAmount"`
	Share                *Flag    `json:"Share"`
	FinalAmount          *float64 `json:"FinalAmount"`
	Exclude              *Flag    `json:"Exclude"`
	Gf                   *Flag    `json:"Gf"`
	GirlFriendPercentage *float64 `json:"girlFriendPercentage"`
	Trip                 *bool    `json:"Trip"`
	Currency             *string  `json:"Currency,omitempty"`
}

// RawGroup is the per-period block of the export.
type RawGroup struct {
	Columns  []string `json:"Columns"`
	RowCount *float64 `json:"RowCount"`
	Data     []RawRow `json:"Data"`
}

// ExportGroup pairs a group with the key it was found under.
type ExportGroup struct {
	Key   string
	Group RawGroup
}

// Export is the accounting export with its groups in document order.
type Export []ExportGroup

// DecodeExport reads an accounting export: a JSON object mapping arbitrary keys to
// groups. Group order follows the document.
func DecodeExport(r io.Reader) (Export, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: reading export: %w", ErrMalformedExport, err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ValidationError{Row: -1, Field: "export", Reason: "expected a JSON object at the top level"}
	}

	var export Export

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: reading group key: %w", ErrMalformedExport, err)
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrMalformedExport, tok)
		}

		var group RawGroup
		if err := dec.Decode(&group); err != nil {
			return nil, &ValidationError{Group: key, Row: -1, Field: "group", Reason: err.Error()}
		}

		export = append(export, ExportGroup{Key: key, Group: group})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: reading export end: %w", ErrMalformedExport, err)
	}

	return export, nil
}

// Rows returns the total number of data rows across all groups.
func (e Export) Rows() int {
	n := 0
	for _, g := range e {
		n += len(g.Group.Data)
	}

	return n
}

// Transform validates the whole export and flattens it into transactions, groups in
// order and rows in order within each group. The first invalid row aborts the call.
func Transform(export Export) ([]Transaction, error) {
	txs := make([]Transaction, 0, export.Rows())

	for _, g := range export {
		if g.Group.Columns == nil {
			return nil, &ValidationError{Group: g.Key, Row: -1, Field: "Columns", Reason: "required"}
		}

		if g.Group.RowCount == nil {
			return nil, &ValidationError{Group: g.Key, Row: -1, Field: "RowCount", Reason: "required"}
		}

		if g.Group.Data == nil {
			return nil, &ValidationError{Group: g.Key, Row: -1, Field: "Data", Reason: "required"}
		}

		for i, row := range g.Group.Data {
			tx, err := row.toTransaction()
			if err != nil {
				var vErr *ValidationError
				if errors.As(err, &vErr) {
					vErr.Group = g.Key
					vErr.Row = i
				}

				return nil, err
			}

			txs = append(txs, tx)
		}
	}

	return txs, nil
}

func (r RawRow) toTransaction() (Transaction, error) {
	missing := func(field string) error {
		return &ValidationError{Row: -1, Field: field, Reason: "required"}
	}

	switch {
	case r.Date == nil:
		return Transaction{}, missing("Date")
	case r.ItemName == nil:
		return Transaction{}, missing("ItemName")
	case r.Category == nil:
		return Transaction{}, missing("Category")
	case r.OriginalAmount == nil:
		return Transaction{}, missing("OriginalAmount")
	case r.Share == nil:
		return Transaction{}, missing("Share")
	case r.FinalAmount == nil:
		return Transaction{}, missing("FinalAmount")
	case r.Exclude == nil:
		return Transaction{}, missing("Exclude")
	case r.Gf == nil:
		return Transaction{}, missing("Gf")
	case r.GirlFriendPercentage == nil:
		return Transaction{}, missing("girlFriendPercentage")
	case r.Trip == nil:
		return Transaction{}, missing("Trip")
	}

	currency := DefaultCurrency
	if r.Currency != nil && *r.Currency != "" {
		currency = *r.Currency
	}

	tx := Transaction{
		Date:                 *r.Date,
		ItemName:             *r.ItemName,
		Category:             *r.Category,
		OriginalAmount:       *r.OriginalAmount,
		FinalAmount:          *r.FinalAmount,
		Currency:             currency,
		Share:                float64(*r.Share),
		Exclude:              float64(*r.Exclude),
		GF:                   float64(*r.Gf),
		GirlFriendPercentage: *r.GirlFriendPercentage,
		Trip:                 *r.Trip,
	}

	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}

	return tx, nil
}
