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
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pocketbook/internal/category/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/config"
	"github.com/MrJamesThe3rd/pocketbook/internal/database"
	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	pocketbookHttp "github.com/MrJamesThe3rd/pocketbook/internal/http"
	authHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/auth"
	categoryHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/metrics"
	reportHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/report"
	rulesHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/rules"
	txHandler "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/logging"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
	rulesStore "github.com/MrJamesThe3rd/pocketbook/internal/rules/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pocketbook/internal/transaction/store"
	"github.com/MrJamesThe3rd/pocketbook/internal/user"
	userStore "github.com/MrJamesThe3rd/pocketbook/internal/user/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	var (
		issuer             = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		clock              = reportHandler.InLocation(loc)
		userService        = user.NewService(userStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), categoryService)
		rulesService       = rules.NewService(rulesStore.New(db), categoryService)
		importService      = importer.NewService(rulesService)
		reportService      = report.NewService(transactionService)
	)

	var (
		authH        = authHandler.NewHandler(userService, issuer)
		categoryH    = categoryHandler.NewHandler(categoryService)
		transactionH = txHandler.NewHandler(transactionService)
		importH      = importHandler.NewHandler(importService, transactionService)
		rulesH       = rulesHandler.NewHandler(rulesService)
		reportH      = reportHandler.NewHandler(reportService, clock)
		exportH      = exportHandler.NewHandler(reportService, export.NewTextExporter(), clock)
	)

	router := pocketbookHttp.New(
		pocketbookHttp.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Timeout:        cfg.Server.Timeout,
			Issuer:         issuer,
			Metrics:        metrics.New(),
		},
		authH, categoryH, transactionH, importH, rulesH, reportH, exportH,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "timezone", loc.String())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
