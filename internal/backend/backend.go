// Package backend selects the ledger store implementation from configuration.
package backend

import (
	"fmt"
	"log/slog"

	"carteira/internal/config"
	"carteira/internal/ledger"
	"carteira/internal/ledger/excel"
	"carteira/internal/ledger/memory"
	"carteira/internal/ledger/sqlite"
)

// Open builds the configured Store. The returned cleanup func is always
// non-nil and safe to defer.
func Open(cfg *config.Config, logger *slog.Logger) (ledger.Store, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Storage.Backend {
	case config.BackendExcel:
		store := excel.NewStore(cfg.Storage.ExcelFile)
		logger.Info("initialized excel backend", "path", cfg.Storage.ExcelFile)
		return store, func() error { return nil }, nil

	case config.BackendSQLite:
		store, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("initialized sqlite backend", "path", cfg.Storage.SQLitePath)
		return store, store.Close, nil

	case config.BackendMemory:
		logger.Info("initialized memory backend")
		return memory.New(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
