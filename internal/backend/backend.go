// Package backend assembles a ledger: it opens the configured store and
// wraps its repositories in caching proxies. Build one Ledger per process
// and pass it to whatever needs it.
package backend

import (
	"context"
	"fmt"

	"finledger/internal/log"
	"finledger/internal/proxy"
	"finledger/internal/repository"
	"finledger/internal/storage"
	"finledger/internal/storage/memory"
)

// Stores is the raw repository triple a backend produces.
type Stores struct {
	Accounts   repository.AccountRepository
	Categories repository.CategoryRepository
	Operations repository.OperationRepository
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

type constructor func(ctx context.Context, cfg Config) (Stores, CleanupFunc, error)

var constructors = map[BackendType]constructor{
	SQLiteBackend: openSQLite,
	MemoryBackend: openMemory,
}

// Ledger exposes the cached repositories over one store.
type Ledger struct {
	Accounts   *proxy.AccountProxy
	Categories *proxy.CategoryProxy
	Operations *proxy.OperationProxy

	// Store holds the uncached repositories, for callers such as the
	// balance worker that must observe storage directly.
	Store Stores

	cleanup CleanupFunc
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	if l.cleanup == nil {
		return nil
	}
	return l.cleanup()
}

// Open builds the store named by cfg and layers the proxies over it.
func Open(ctx context.Context, cfg Config) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.For(ctx, log.ComponentBackend)

	stores, cleanup, err := constructors[cfg.Type](ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Type, err)
	}

	ledger, err := wrap(ctx, stores)
	if err != nil {
		if cleanup != nil {
			if cerr := cleanup(); cerr != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, cerr)
			}
		}
		return nil, err
	}
	ledger.cleanup = cleanup

	logger.Info("Ledger opened", log.FieldBackend, cfg.Type.String())
	return ledger, nil
}

func wrap(ctx context.Context, stores Stores) (*Ledger, error) {
	accounts, err := proxy.NewAccountProxy(ctx, stores.Accounts)
	if err != nil {
		return nil, err
	}
	categories, err := proxy.NewCategoryProxy(ctx, stores.Categories)
	if err != nil {
		return nil, err
	}
	operations, err := proxy.NewOperationProxy(ctx, stores.Operations, proxy.WithAccountRefresher(accounts))
	if err != nil {
		return nil, err
	}

	return &Ledger{
		Accounts:   accounts,
		Categories: categories,
		Operations: operations,
		Store:      stores,
	}, nil
}

func openSQLite(ctx context.Context, cfg Config) (Stores, CleanupFunc, error) {
	db, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		return Stores{}, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	log.For(ctx, log.ComponentBackend).Debug("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
	return Stores{
		Accounts:   storage.NewAccountStore(db),
		Categories: storage.NewCategoryStore(db),
		Operations: storage.NewOperationStore(db),
	}, db.Close, nil
}

func openMemory(ctx context.Context, cfg Config) (Stores, CleanupFunc, error) {
	var store *memory.Store
	if cfg.SeedDirectory == "" {
		store = memory.New()
	} else {
		store = memory.NewFromFiles(cfg.SeedDirectory)
	}

	log.For(ctx, log.ComponentBackend).Debug("Initialized memory store", "seed_directory", cfg.SeedDirectory)
	return Stores{
		Accounts:   memory.NewAccountStore(store),
		Categories: memory.NewCategoryStore(store),
		Operations: memory.NewOperationStore(store),
	}, nil, nil
}
