// Package cli provides the cobra command tree for minirag.
//
// Every invocation starts with an empty in-memory collection. Documents
// named with --docs are ingested before the command runs; the process
// command ingests its arguments.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minirag/internal/connectors/filesystem"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
	"github.com/custodia-labs/minirag/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Document   driving.DocumentService
	Search     driving.SearchService
	Evaluation driving.EvaluationService
	Settings   driving.SettingsService
	Sync       driving.SyncOrchestrator
	Suites     driven.SuiteStore
}

// Document store backends selectable with --store.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config carries the global flags needed to build services.
type Config struct {
	// Store names the document store backend: StoreMemory or StoreSQLite.
	Store string

	// ConfigDir overrides the settings directory. Empty uses the default.
	ConfigDir string

	// Strategy overrides the configured chunking strategy when set.
	Strategy domain.ChunkType

	// ChunkSize overrides the configured chunk size when non-nil.
	ChunkSize *int

	// Overlap overrides the configured overlap when non-nil.
	Overlap *int
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(cfg Config) (*Services, error)

var (
	documentService   driving.DocumentService
	searchService     driving.SearchService
	evaluationService driving.EvaluationService
	settingsService   driving.SettingsService
	syncOrchestrator  driving.SyncOrchestrator
	suiteStore        driven.SuiteStore

	bootstrap Bootstrap
)

// Global flags.
var (
	verbose   bool
	configDir string
	docPaths  []string
	strategy  string
	chunkSize int
	overlap   int
	storeName string
)

var rootCmd = &cobra.Command{
	Use:   "minirag",
	Short: "Minimal retrieval pipeline over local documents",
	Long: heredoc.Doc(`
		minirag splits plain-text and markdown documents into chunks, keeps
		them in memory and answers keyword queries with a scored ranking.
		It can also measure retrieval quality against expected documents.

		State lives for one invocation. Load documents with --docs on any
		command, or run the tui or mcp server for a long-lived session.
	`),
	Example: heredoc.Doc(`
		$ minirag process notes/ --strategy paragraph
		$ minirag search "machine learning" -d notes/
		$ minirag evaluate "machine learning" --expected notes/ml.md -d notes/
	`),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print pipeline steps to stderr")
	flags.StringVar(&configDir, "config-dir", "", "settings directory (default ~/.minirag)")
	flags.StringSliceVarP(&docPaths, "docs", "d", nil, "files or directories to ingest first")
	flags.StringVarP(&strategy, "strategy", "s", "", "chunking strategy: fixed_size or paragraph")
	flags.IntVar(&chunkSize, "chunk-size", 0, "fixed_size chunk size in characters")
	flags.IntVar(&overlap, "overlap", 0, "fixed_size overlap in characters")
	flags.StringVar(&storeName, "store", StoreMemory, "document store backend: memory or sqlite (in-memory database)")
}

// SetServices replaces the services used by the commands.
func SetServices(s *Services) {
	documentService = s.Document
	searchService = s.Search
	evaluationService = s.Evaluation
	settingsService = s.Settings
	syncOrchestrator = s.Sync
	suiteStore = s.Suites
}

// SetBootstrap registers the function that builds services from flags.
// Without one, services must be set with SetServices.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx. Long-running commands
// stop when ctx is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap != nil {
		cfg, err := configFromFlags(cmd)
		if err != nil {
			return err
		}
		services, err := bootstrap(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialise: %w", err)
		}
		SetServices(services)
	}

	if len(docPaths) == 0 {
		return nil
	}
	_, err := ingestPaths(cmd, docPaths)
	return err
}

func configFromFlags(cmd *cobra.Command) (Config, error) {
	cfg := Config{ConfigDir: configDir, Store: storeName}
	switch storeName {
	case StoreMemory, StoreSQLite:
	default:
		return cfg, fmt.Errorf("store %q: %w", storeName, domain.ErrInvalidConfiguration)
	}
	if strategy != "" {
		t, err := domain.ParseChunkType(strategy)
		if err != nil {
			return cfg, err
		}
		cfg.Strategy = t
	}
	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		v := chunkSize
		cfg.ChunkSize = &v
	}
	if flags.Changed("overlap") {
		v := overlap
		cfg.Overlap = &v
	}
	return cfg, nil
}

// ingestPaths loads every path through the sync orchestrator.
// Individual file failures are reported as warnings; a missing path is an error.
func ingestPaths(cmd *cobra.Command, paths []string) (*driving.SyncResult, error) {
	if syncOrchestrator == nil {
		return nil, errors.New("sync orchestrator not configured")
	}

	ctx := commandContext(cmd)
	total := &driving.SyncResult{}
	for _, p := range paths {
		connector := filesystem.New(p)
		if err := connector.Validate(ctx); err != nil {
			return total, err
		}

		docs, errs := connector.FullSync(ctx)
		result, err := syncOrchestrator.Ingest(ctx, docs, errs)
		_ = connector.Close()
		if result != nil {
			total.Processed += result.Processed
			total.Failed += result.Failed
			total.Errors = append(total.Errors, result.Errors...)
		}
		if err != nil {
			return total, fmt.Errorf("ingest %s: %w", p, err)
		}
	}

	for _, err := range total.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	logger.Info("Loaded %d documents from %d paths", total.Processed, len(paths))
	return total, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
