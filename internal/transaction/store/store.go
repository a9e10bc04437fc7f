package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

// insertDateLayout is how dates are written to the remote table.
const insertDateLayout = "2006-01-02T15:04:05"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// row mirrors a remote record before normalization. Every column is nullable
// because the table predates the import and has been edited by hand.
type row struct {
	date                 sql.NullString
	itemName             sql.NullString
	category             sql.NullString
	originalAmount       sql.NullString
	finalAmount          sql.NullString
	currency             sql.NullString
	share                sql.NullString
	exclude              sql.NullString
	gf                   sql.NullString
	girlFriendPercentage sql.NullString
	trip                 sql.NullBool
}

// Expected column order matches selectTransactionColumns.
func scanRow(s scanner) (row, error) {
	var r row

	err := s.Scan(
		&r.date, &r.itemName, &r.category, &r.originalAmount, &r.finalAmount, &r.currency,
		&r.share, &r.exclude, &r.gf, &r.girlFriendPercentage, &r.trip,
	)

	return r, err
}

const selectTransactionColumns = `
	date, item_name, category, original_amount, final_amount, currency,
	share, exclude, gf, girl_friend_percentage, trip
`

func (r row) transaction() transaction.Transaction {
	original := parseNumber(r.originalAmount)

	final := original
	if r.finalAmount.Valid && strings.TrimSpace(r.finalAmount.String) != "" {
		final = parseNumber(r.finalAmount)
	}

	currency := r.currency.String
	if currency == "" {
		currency = transaction.DefaultCurrency
	}

	return transaction.Transaction{
		Date:                 normalizeDate(r.date.String),
		ItemName:             r.itemName.String,
		Category:             r.category.String,
		OriginalAmount:       original,
		FinalAmount:          final,
		Currency:             currency,
		Share:                parseNumber(r.share),
		Exclude:              parseNumber(r.exclude),
		GF:                   parseNumber(r.gf),
		GirlFriendPercentage: parseNumber(r.girlFriendPercentage),
		Trip:                 r.trip.Valid && r.trip.Bool,
	}
}

// normalizeDate turns an ISO timestamp such as 2024-01-05T10:00:00+00:00 into the
// canonical "YYYY-MM-DD HH:MM:SS" form. Other values pass through untouched.
func normalizeDate(s string) string {
	if !strings.Contains(s, "T") {
		return s
	}

	s = strings.Replace(s, "T", " ", 1)
	if len(s) > 19 {
		s = s[:19]
	}

	return s
}

// parseNumber reads a numeric column, yielding 0 for NULL or garbage.
func parseNumber(s sql.NullString) float64 {
	if !s.Valid {
		return 0
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s.String))
	if err != nil {
		return 0
	}

	return d.InexactFloat64()
}

// insertDate converts a canonical or date-only value into the stored layout.
func insertDate(s string) string {
	if strings.Contains(s, " ") {
		return strings.Replace(s, " ", "T", 1)
	}

	if strings.Contains(s, "T") {
		return s
	}

	return s + "T00:00:00"
}

// listPageQuery breaks date ties by id so consecutive pages neither repeat nor
// skip rows sharing a timestamp.
const listPageQuery = `SELECT ` + selectTransactionColumns + `
	FROM transactions
	ORDER BY date ASC, id ASC
	LIMIT $1 OFFSET $2`

func (s *Store) ListPage(ctx context.Context, offset, limit int) ([]transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, listPageQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]transaction.Transaction, 0, limit)

	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, r.transaction())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

const insertColumns = `id, date, item_name, category, original_amount, final_amount, currency,
	share, exclude, gf, girl_friend_percentage, trip`

const insertColumnCount = 12

// maxBindParams is the Postgres limit on parameters in one statement.
const maxBindParams = 65535

// MaxBatchSize is the largest batch InsertBatch can send as one statement.
const MaxBatchSize = maxBindParams / insertColumnCount

func insertArgs(tx transaction.Transaction) []any {
	return []any{
		tx.ID,
		insertDate(tx.Date),
		tx.ItemName,
		tx.Category,
		decimal.NewFromFloat(tx.OriginalAmount).String(),
		decimal.NewFromFloat(tx.FinalAmount).String(),
		tx.Currency,
		decimal.NewFromFloat(tx.Share).String(),
		decimal.NewFromFloat(tx.Exclude).String(),
		decimal.NewFromFloat(tx.GF).String(),
		decimal.NewFromFloat(tx.GirlFriendPercentage).String(),
		tx.Trip,
	}
}

// InsertBatch writes all transactions in a single multi-row statement, so the batch
// either lands completely or not at all.
func (s *Store) InsertBatch(ctx context.Context, txs []transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	if len(txs) > MaxBatchSize {
		return fmt.Errorf("inserting %d transactions: batch exceeds %d rows", len(txs), MaxBatchSize)
	}

	var b strings.Builder

	b.WriteString(`INSERT INTO transactions (` + insertColumns + `) VALUES `)

	args := make([]any, 0, len(txs)*insertColumnCount)

	for i, tx := range txs {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString("(")

		for j := range insertColumnCount {
			if j > 0 {
				b.WriteString(", ")
			}

			fmt.Fprintf(&b, "$%d", i*insertColumnCount+j+1)
		}

		b.WriteString(")")

		args = append(args, insertArgs(tx)...)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("inserting %d transactions: %w", len(txs), err)
	}

	return nil
}

func (s *Store) Insert(ctx context.Context, tx transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + insertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if _, err := s.db.ExecContext(ctx, query, insertArgs(tx)...); err != nil {
		return fmt.Errorf("inserting transaction %q: %w", tx.ItemName, err)
	}

	return nil
}
