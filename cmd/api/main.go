package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendboard/internal/app"
	"github.com/MrJamesThe3rd/spendboard/internal/config"
	spendHttp "github.com/MrJamesThe3rd/spendboard/internal/http"
	dashboardHandler "github.com/MrJamesThe3rd/spendboard/internal/http/dashboard"
	importHandler "github.com/MrJamesThe3rd/spendboard/internal/http/importjson"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.Wire(cfg, slog.Default())
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Start(ctx)

	var (
		dashboardH = dashboardHandler.NewHandler(a.Dashboard)
		importH    = importHandler.NewHandler(a.Importer, a.Loader)
	)

	router := spendHttp.New(cfg.CORS.AllowedOrigins, dashboardH, importH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "target", cfg.Rates.Target)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
