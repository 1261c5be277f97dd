package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/importer"
	"storefront/internal/migrate"
	"storefront/internal/money"
	"storefront/internal/persistence"
	"storefront/internal/repository/snapshot"
	cartsvc "storefront/internal/service/cart"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	rule, err := cfg.MoneyRule()
	if err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()

	products, err := loadCatalog(ctx, cfg.CatalogFile)
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}
	logger.Printf("catalog: loaded products=%d", products.Len())

	repo, pool, err := openSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open cart store: %v", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	adapter := persistence.New(repo, cfg.CartKey, logger)
	cart := cartsvc.New(products, cartsvc.WithItems(adapter.Load(ctx)))
	detach := adapter.Attach(cart)
	defer detach()
	logger.Printf("cart: restored store=%s key=%s items=%d", cfg.CartStore, adapter.Key(), cart.Len())

	formatter := money.NewFormatter(rule)

	var pinger httpserver.Pinger
	if p, ok := repo.(snapshot.Pinger); ok {
		pinger = p
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:            products,
		Cart:               cart,
		Checkout:           checkout.NewBuilder(cfg.Merchant(), formatter),
		Money:              formatter,
		Store:              pinger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func loadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Defaults(), nil
	}
	return importer.LoadFile(ctx, path)
}

// openSnapshotStore returns the blob store selected by CART_STORE. The pool is
// non-nil only for the postgres store and must be closed by the caller.
func openSnapshotStore(ctx context.Context, cfg config.Config, logger *log.Logger) (snapshot.Repository, *pgxpool.Pool, error) {
	switch cfg.CartStore {
	case config.StoreFile:
		repo, err := snapshot.NewFile(cfg.CartStoreDir)
		return repo, nil, err
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return snapshot.NewPostgres(pool, logger), pool, nil
	default:
		return snapshot.NewMemory(), nil, nil
	}
}
