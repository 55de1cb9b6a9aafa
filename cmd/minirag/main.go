// Command minirag chunks local documents and answers keyword queries over them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/minirag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/minirag/internal/adapters/driving/cli"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/core/services"
	"github.com/custodia-labs/minirag/internal/logger"
	"github.com/custodia-labs/minirag/internal/normalisers"
	"github.com/custodia-labs/minirag/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// suitesDirName holds evaluation suites inside the config directory.
const suitesDirName = "suites"

func main() {
	// MINIRAG_* settings may come from a .env file.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(buildServices)

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// buildServices wires the in-memory pipeline from stored settings and flags.
func buildServices(cfg cli.Config) (*cli.Services, error) {
	configStore, suitesDir, err := openConfig(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	chunking := settings.Chunking
	if cfg.Strategy != "" {
		chunking.Strategy = cfg.Strategy
	}
	if cfg.ChunkSize != nil {
		chunking.ChunkSize = *cfg.ChunkSize
	}
	if cfg.Overlap != nil {
		chunking.Overlap = *cfg.Overlap
	}
	if err := chunking.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Chunking: %s size=%d overlap=%d lookback=%d",
		chunking.Strategy, chunking.ChunkSize, chunking.Overlap, chunking.LookBack)

	store, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	documents := services.NewDocumentService(
		store,
		normalisers.NewDispatcher(),
		postprocessors.DefaultRegistry(),
		chunking,
	)
	search := services.NewSearchService(store, settings.Search.Limit)

	return &cli.Services{
		Document:   documents,
		Search:     search,
		Evaluation: services.NewEvaluationService(search, store, settings.Evaluation.Limit),
		Settings:   settingsService,
		Sync:       services.NewSyncOrchestrator(documents, ""),
		Suites:     file.NewSuiteStore(suitesDir),
	}, nil
}

// openStore creates the document store named by backend.
func openStore(backend string) (driven.DocumentStore, error) {
	switch backend {
	case "", cli.StoreMemory:
		return memory.NewDocumentStore(), nil
	case cli.StoreSQLite:
		store, err := sqlite.NewStore()
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("store %q: %w", backend, domain.ErrInvalidConfiguration)
	}
}

// openConfig opens the TOML settings file. Without a home directory the
// settings live in memory for this run and suites must be named by path.
func openConfig(dir string) (driven.ConfigStore, string, error) {
	if dir == "" {
		home, err := file.DefaultConfigDir()
		if err != nil {
			logger.Warn("No config directory (%v), using defaults", err)
			return memory.NewConfigStore(), "", nil
		}
		dir = home
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, "", fmt.Errorf("open config %s: %w", dir, err)
	}
	return store, filepath.Join(dir, suitesDirName), nil
}
