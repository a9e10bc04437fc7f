package importer

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

// DefaultBatchSize keeps each insert statement well under the Postgres parameter limit.
const DefaultBatchSize = 500

//go:generate mockgen -source=importer.go -destination=writer_mock.go -package=importer
type Writer interface {
	CreateBatch(ctx context.Context, txs []transaction.Transaction) error
	Create(ctx context.Context, tx transaction.Transaction) error
}

type Options struct {
	// Limit imports only the first Limit transactions when positive.
	Limit int
	// Progress is called after every batch.
	Progress func(Progress)
}

type Progress struct {
	Done     int
	Total    int
	Inserted int
	Failed   int
}

type Result struct {
	Total    int        `json:"total"`
	Inserted int        `json:"inserted"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
}

// RowError is a single row rejected during the row-by-row fallback. Index is the
// position in the flattened export.
type RowError struct {
	Index    int    `json:"index"`
	Date     string `json:"date"`
	ItemName string `json:"itemName"`
	Err      error  `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s %q): %v", e.Index, e.Date, e.ItemName, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}
