// Package localcache holds the last full transaction set in durable local storage
// for a limited time, so start-up does not have to wait on the remote store.
package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

const (
	PayloadKey   = "supabase_transactions_cache"
	TimestampKey = "supabase_transactions_cache_timestamp"

	DefaultDuration = time.Hour
)

type payload struct {
	Transactions []transaction.Transaction `json:"transactions"`
	Timestamp    int64                     `json:"timestamp"`
}

// Cache is a single-slot, time-boxed cache. Stale entries are ignored, not deleted.
type Cache struct {
	store    KV
	duration time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// New returns a cache over store. A nil store makes every operation report
// ErrUnavailable.
func New(store KV, duration time.Duration, log *slog.Logger) *Cache {
	if duration <= 0 {
		duration = DefaultDuration
	}

	if log == nil {
		log = slog.Default()
	}

	return &Cache{
		store:    store,
		duration: duration,
		now:      time.Now,
		log:      log.With("component", "localcache"),
	}
}

// WithClock replaces the time source.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) Duration() time.Duration {
	return c.duration
}

// Get returns the cached transactions while the entry is younger than the cache
// duration. Read failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context) ([]transaction.Transaction, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}

	ts, ok, err := c.timestamp(ctx)
	if err != nil {
		c.log.Warn("failed to read cache timestamp", "error", err)
		return nil, false
	}

	if !ok || !c.fresh(ts) {
		return nil, false
	}

	raw, ok, err := c.store.Get(ctx, PayloadKey)
	if err != nil {
		c.log.Warn("failed to read cache", "error", err)
		return nil, false
	}

	if !ok {
		return nil, false
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.log.Warn("failed to decode cache", "error", err)
		return nil, false
	}

	if !c.fresh(p.Timestamp) {
		return nil, false
	}

	c.log.Debug("using cached transactions",
		"count", len(p.Transactions),
		"age", c.now().Sub(time.UnixMilli(p.Timestamp)).Round(time.Second),
	)

	return p.Transactions, true
}

// Age returns how old the stored entry is, fresh or not.
func (c *Cache) Age(ctx context.Context) (time.Duration, bool) {
	if c == nil || c.store == nil {
		return 0, false
	}

	ts, ok, err := c.timestamp(ctx)
	if err != nil || !ok {
		return 0, false
	}

	return c.now().Sub(time.UnixMilli(ts)), true
}

func (c *Cache) fresh(ts int64) bool {
	return c.now().Sub(time.UnixMilli(ts)) < c.duration
}

func (c *Cache) timestamp(ctx context.Context) (int64, bool, error) {
	raw, ok, err := c.store.Get(ctx, TimestampKey)
	if err != nil || !ok {
		return 0, false, err
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing timestamp %q: %w", raw, err)
	}

	return ts, true, nil
}

// Set overwrites the slot with txs stamped with the current time. When storage is
// full the slot is cleared and the write retried once.
func (c *Cache) Set(ctx context.Context, txs []transaction.Transaction) error {
	if c == nil || c.store == nil {
		return &CacheWriteError{Err: ErrUnavailable}
	}

	if txs == nil {
		txs = []transaction.Transaction{}
	}

	err := c.write(ctx, txs)
	if err == nil {
		c.log.Debug("cached transactions", "count", len(txs))
		return nil
	}

	if !errors.Is(err, ErrStorageFull) {
		c.log.Warn("failed to write cache", "error", err)
		return &CacheWriteError{Err: err}
	}

	c.log.Warn("cache storage full, clearing and retrying", "error", err)

	if err := c.store.Delete(ctx, PayloadKey, TimestampKey); err != nil {
		c.log.Warn("failed to clear cache", "error", err)
		return &CacheWriteError{Retried: true, Err: err}
	}

	if err := c.write(ctx, txs); err != nil {
		c.log.Warn("failed to write cache after clearing it", "error", err)
		return &CacheWriteError{Retried: true, Err: err}
	}

	c.log.Info("cache write recovered after clearing storage", "count", len(txs))

	return nil
}

func (c *Cache) write(ctx context.Context, txs []transaction.Transaction) error {
	ts := c.now().UnixMilli()

	data, err := json.Marshal(payload{Transactions: txs, Timestamp: ts})
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if err := c.store.Set(ctx, PayloadKey, string(data)); err != nil {
		return err
	}

	return c.store.Set(ctx, TimestampKey, strconv.FormatInt(ts, 10))
}

// Clear evicts the slot.
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrUnavailable
	}

	if err := c.store.Delete(ctx, PayloadKey, TimestampKey); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	c.log.Info("cache cleared")

	return nil
}
