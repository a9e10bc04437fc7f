package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/spendboard/internal/encoding"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

type Service struct {
	writer    Writer
	batchSize int
	log       *slog.Logger
}

func NewService(writer Writer, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Service{
		writer:    writer,
		batchSize: batchSize,
		log:       slog.Default().With("component", "importer"),
	}
}

// Parse decodes and validates an accounting export without writing anything. Any
// invalid row fails the whole file.
func (s *Service) Parse(r io.Reader) ([]transaction.Transaction, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	export, err := transaction.DecodeExport(utf8r)
	if err != nil {
		return nil, err
	}

	txs, err := transaction.Transform(export)
	if err != nil {
		return nil, err
	}

	s.log.Info("parsed export", "groups", len(export), "rows", len(txs))

	return txs, nil
}

// Import parses r and writes it in batches. A failed batch is retried row by row so
// one bad record does not sink its neighbours; rows that still fail are counted in
// the result rather than returned as an error.
func (s *Service) Import(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	txs, err := s.Parse(r)
	if err != nil {
		return Result{}, err
	}

	if opts.Limit > 0 && len(txs) > opts.Limit {
		txs = txs[:opts.Limit]
	}

	return s.Write(ctx, txs, opts)
}

// Write inserts already validated transactions.
func (s *Service) Write(ctx context.Context, txs []transaction.Transaction, opts Options) (Result, error) {
	res := Result{Total: len(txs)}

	for start := 0; start < len(txs); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		end := min(start+s.batchSize, len(txs))
		batch := txs[start:end]

		if err := s.writer.CreateBatch(ctx, batch); err != nil {
			s.log.Warn("batch insert failed, inserting row by row", "from", start, "size", len(batch), "error", err)
			s.writeRows(ctx, batch, start, &res)
		} else {
			res.Inserted += len(batch)
		}

		if opts.Progress != nil {
			opts.Progress(Progress{Done: end, Total: res.Total, Inserted: res.Inserted, Failed: res.Failed})
		}
	}

	s.log.Info("import finished", "total", res.Total, "inserted", res.Inserted, "failed", res.Failed)

	return res, nil
}

func (s *Service) writeRows(ctx context.Context, batch []transaction.Transaction, offset int, res *Result) {
	for i, tx := range batch {
		if err := s.writer.Create(ctx, tx); err != nil {
			rowErr := RowError{Index: offset + i, Date: tx.Date, ItemName: tx.ItemName, Err: err}
			s.log.Error("failed to insert transaction", "error", rowErr)

			res.Failed++
			res.Errors = append(res.Errors, rowErr)

			continue
		}

		res.Inserted++
	}
}
