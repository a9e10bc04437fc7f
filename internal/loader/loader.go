// Package loader pulls the full transaction set from the remote store and keeps the
// local cache warm.
package loader

import (
	"context"
	"log/slog"

	"github.com/MrJamesThe3rd/spendboard/internal/dedup"
	"github.com/MrJamesThe3rd/spendboard/internal/localcache"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

const (
	PageSize = 1000

	// RemoteKey is shared by every concurrent full load.
	RemoteKey = "loadTransactionsFromRemote"
)

// PageReader is satisfied by *transaction.Service.
type PageReader interface {
	FetchPage(ctx context.Context, page, size int) (transaction.PageResult, error)
}

type Loader struct {
	pages    PageReader
	cache    *localcache.Cache
	inflight dedup.Group[[]transaction.Transaction]
	pageSize int
	log      *slog.Logger
}

// New returns a loader. cache may be nil, in which case every load goes remote.
func New(pages PageReader, cache *localcache.Cache, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}

	return &Loader{
		pages:    pages,
		cache:    cache,
		pageSize: PageSize,
		log:      log.With("component", "loader"),
	}
}

// WithPageSize overrides the page size. Values below 1 are ignored.
func (l *Loader) WithPageSize(size int) *Loader {
	if size > 0 {
		l.pageSize = size
	}

	return l
}

// Load returns the cached set while it is fresh, otherwise loads it from the remote
// store.
func (l *Loader) Load(ctx context.Context) ([]transaction.Transaction, error) {
	if txs, ok := l.cache.Get(ctx); ok {
		l.log.Debug("serving transactions from cache", "count", len(txs))
		return txs, nil
	}

	return l.LoadRemote(ctx)
}

// Refresh ignores the cache and reloads from the remote store.
func (l *Loader) Refresh(ctx context.Context) ([]transaction.Transaction, error) {
	return l.LoadRemote(ctx)
}

// ClearCache drops the cached set.
func (l *Loader) ClearCache(ctx context.Context) error {
	return l.cache.Clear(ctx)
}

// LoadRemote reads every page in date order. Concurrent callers share one load. The
// result is written to the cache only when every page succeeded.
func (l *Loader) LoadRemote(ctx context.Context) ([]transaction.Transaction, error) {
	if l.pages == nil {
		return nil, ErrNoRemote
	}

	return l.inflight.Do(ctx, RemoteKey, l.loadAll)
}

func (l *Loader) loadAll(ctx context.Context) ([]transaction.Transaction, error) {
	var all []transaction.Transaction

	for page := 0; ; page++ {
		res, err := l.pages.FetchPage(ctx, page, l.pageSize)
		if err != nil {
			l.log.Error("failed to load remote transactions", "page", page, "error", err)
			return nil, &RemoteFetchError{Page: page, Err: err}
		}

		all = append(all, res.Transactions...)

		if res.Fetched < l.pageSize {
			break
		}
	}

	if all == nil {
		all = []transaction.Transaction{}
	}

	l.log.Info("loaded remote transactions", "count", len(all))

	if l.cache != nil {
		if err := l.cache.Set(ctx, all); err != nil {
			l.log.Warn("failed to cache transactions", "error", err)
		}
	}

	return all, nil
}
