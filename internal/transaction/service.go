package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// ListPage returns up to limit transactions ordered by date ascending.
	ListPage(ctx context.Context, offset, limit int) ([]Transaction, error)
	InsertBatch(ctx context.Context, txs []Transaction) error
	Insert(ctx context.Context, tx Transaction) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  slog.Default().With("component", "transaction"),
	}
}

// PageResult is one page of validated transactions. Fetched is the number of rows
// the repository returned before validation and decides whether more pages exist.
type PageResult struct {
	Transactions []Transaction
	Fetched      int
}

// FetchPage fetches the zero-based page of the given size. Rows that fail validation
// are dropped with a warning; the remaining rows keep their order.
func (s *Service) FetchPage(ctx context.Context, page, size int) (PageResult, error) {
	rows, err := s.repo.ListPage(ctx, page*size, size)
	if err != nil {
		return PageResult{}, fmt.Errorf("listing page %d: %w", page, err)
	}

	res := PageResult{Transactions: make([]Transaction, 0, len(rows)), Fetched: len(rows)}

	for _, tx := range rows {
		if err := tx.Validate(); err != nil {
			s.log.Warn("dropping invalid remote row", "item", tx.ItemName, "date", tx.Date, "error", err)
			continue
		}

		res.Transactions = append(res.Transactions, tx)
	}

	return res, nil
}

// CreateBatch inserts the transactions in one statement, assigning surrogate IDs to
// rows that have none.
func (s *Service) CreateBatch(ctx context.Context, txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	withIDs := make([]Transaction, len(txs))
	for i, tx := range txs {
		withIDs[i] = ensureID(tx)
	}

	return s.repo.InsertBatch(ctx, withIDs)
}

func (s *Service) Create(ctx context.Context, tx Transaction) error {
	return s.repo.Insert(ctx, ensureID(tx))
}

func ensureID(tx Transaction) Transaction {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	return tx
}
