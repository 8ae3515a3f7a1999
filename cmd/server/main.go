package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avdeyev/storeserv/internal/api"
	"github.com/avdeyev/storeserv/internal/catalog"
	"github.com/avdeyev/storeserv/internal/gateway"
	"github.com/avdeyev/storeserv/internal/infra/logging"
	"github.com/avdeyev/storeserv/internal/infra/pgutils"
	"github.com/avdeyev/storeserv/internal/ledger"
	pgaccounts "github.com/avdeyev/storeserv/internal/repos/accounts/postgres"
	pgaudit "github.com/avdeyev/storeserv/internal/repos/audit/postgres"
	pgdeliveries "github.com/avdeyev/storeserv/internal/repos/deliveries/postgres"
	pgitems "github.com/avdeyev/storeserv/internal/repos/items/postgres"
	"github.com/avdeyev/storeserv/internal/services/purchase"
	"github.com/avdeyev/storeserv/pkg/envconf"
	"github.com/avdeyev/storeserv/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running store server: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg := new(serverConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close database pool")

		return db.Close()
	})

	// --- Domain ---
	accountsRepo := pgaccounts.New(db)

	store := catalog.NewStore(pgitems.New(db))

	err = store.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("initial catalog rebuild: %w", err)
	}

	slog.Info("catalog loaded", "tabs", store.TabCount())

	led := ledger.New(db, accountsRepo)
	purchases := purchase.New(store, led, pgaudit.New(db), pgdeliveries.New(db))

	// --- Gateway (player-facing binary protocol) ---
	gw := gateway.NewServer(store, led, purchases, accountsRepo)

	lis, err := net.Listen("tcp", cfg.GatewayAddr)
	if err != nil {
		return fmt.Errorf("listen gateway: %w", err)
	}

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down gateway")

		return gw.Shutdown(c)
	})

	// --- Admin HTTP ---
	adminSrv := api.NewServer(cfg.AdminAddr, api.NewRouter(api.NewHandler(store, led), cfg.AdminToken))

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down admin server")

		err := adminSrv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown admin srv: %w", err)
		}

		return nil
	})

	// Run both servers
	errCh := make(chan error, 2)

	go func() {
		serr := gw.Serve(lis)
		if serr != nil {
			errCh <- fmt.Errorf("gateway: %w", serr)
			return
		}

		errCh <- nil
	}()

	go func() {
		serr := adminSrv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- fmt.Errorf("admin server: %w", serr)
			return
		}

		errCh <- nil
	}()

	slog.Info("store server started", "gateway", cfg.GatewayAddr, "admin", cfg.AdminAddr)

	// --- Wait until either context cancels or a server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
