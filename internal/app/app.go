// Package app wires the services shared by the API, the TUI and the import tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/spendboard/internal/category"
	"github.com/MrJamesThe3rd/spendboard/internal/config"
	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/database"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/importer"
	"github.com/MrJamesThe3rd/spendboard/internal/loader"
	"github.com/MrJamesThe3rd/spendboard/internal/localcache"
	"github.com/MrJamesThe3rd/spendboard/internal/rates"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
	txStore "github.com/MrJamesThe3rd/spendboard/internal/transaction/store"
)

type App struct {
	Config *config.Config

	RemoteDB *sql.DB
	LocalDB  *sql.DB

	Transactions *transaction.Service
	Importer     *importer.Service
	Rates        *rates.Store
	Cache        *localcache.Cache
	Loader       *loader.Loader
	Dashboard    *dashboard.Service

	log *slog.Logger
}

// Wire connects to the remote store, opens the local cache and builds every
// service. A local cache that cannot be opened is logged and left unavailable;
// loads then always go remote.
func Wire(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	if cfg.DB.Migrate {
		if err := database.MigrateRemote(cfg.ConnectionString()); err != nil {
			return nil, fmt.Errorf("migrating remote store: %w", err)
		}
	}

	remote, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to remote store: %w", err)
	}

	a := &App{
		Config:   cfg,
		RemoteDB: remote,
		log:      log,
	}

	var kv localcache.KV

	if local, err := openLocal(cfg.Cache.Path); err != nil {
		log.Warn("local cache unavailable", "path", cfg.Cache.Path, "error", err)
	} else {
		a.LocalDB = local
		kv = localcache.NewSQLiteStore(local)
	}

	dates := datefilter.New(cfg.Location(), log)
	categories := category.New(cfg.Categories.Order, cfg.Categories.Income)

	provider := rates.NewFallbackProvider(
		rates.NewFrankfurterProvider(cfg.Rates.PrimaryURL, cfg.Rates.Timeout),
		rates.NewExchangeRateAPIProvider(cfg.Rates.SecondaryURL, cfg.Rates.Timeout),
		log,
	)

	a.Transactions = transaction.NewService(txStore.New(remote))
	a.Importer = importer.NewService(a.Transactions, cfg.Import.BatchSize)
	a.Rates = rates.NewStore(rates.Config{Target: cfg.Rates.Target, PollInterval: cfg.Rates.PollInterval}, provider, log)
	a.Cache = localcache.New(kv, cfg.Cache.Duration, log)
	a.Loader = loader.New(a.Transactions, a.Cache, log)
	a.Dashboard = dashboard.NewService(a.Loader, a.Rates, dates, categories, log)

	return a, nil
}

func openLocal(path string) (*sql.DB, error) {
	if err := database.MigrateLocal(path); err != nil {
		return nil, err
	}

	return database.OpenLocal(path)
}

// Start begins rate polling and preloads the configured currencies in the
// background so the first render already converts.
func (a *App) Start(ctx context.Context) {
	a.Rates.Start()

	if len(a.Config.Rates.Preload) == 0 {
		return
	}

	go a.Rates.FetchRates(ctx, a.Config.Rates.Preload)
}

func (a *App) Close() {
	a.Rates.Stop()

	if a.LocalDB != nil {
		if err := a.LocalDB.Close(); err != nil {
			a.log.Error("failed to close local cache", "error", err)
		}
	}

	if err := a.RemoteDB.Close(); err != nil {
		a.log.Error("failed to close remote store", "error", err)
	}
}
