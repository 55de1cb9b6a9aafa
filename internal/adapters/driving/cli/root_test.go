package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/services"
	"github.com/custodia-labs/minirag/internal/normalisers"
	"github.com/custodia-labs/minirag/internal/postprocessors"
)

const (
	fixturePath    = "/docs/ml.txt"
	fixtureContent = "Machine learning is a subset of artificial intelligence. " +
		"It enables computers to learn from data without explicit programming."
)

// testEnv holds the services and fixture document installed by setupTestServices.
type testEnv struct {
	Doc      *domain.Document
	Services *Services
	SuiteDir string
}

// setupTestServices installs real in-memory services holding one fixture
// document. The returned function restores the previous state and resets
// command flags.
func setupTestServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	store := memory.NewDocumentStore()
	documents := services.NewDocumentService(
		store,
		normalisers.NewDispatcher(),
		postprocessors.DefaultRegistry(),
		domain.DefaultChunkingConfig(),
	)
	search := services.NewSearchService(store, domain.DefaultSearchLimit)
	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetLookupEnv(nil)
	suiteDir := t.TempDir()

	svc := &Services{
		Document:   documents,
		Search:     search,
		Evaluation: services.NewEvaluationService(search, store, domain.DefaultEvaluationLimit),
		Settings:   settings,
		Sync:       services.NewSyncOrchestrator(documents, ""),
		Suites:     file.NewSuiteStore(suiteDir),
	}

	doc, err := documents.ProcessContent(context.Background(), fixtureContent, fixturePath, "")
	require.NoError(t, err)

	previous := &Services{
		Document:   documentService,
		Search:     searchService,
		Evaluation: evaluationService,
		Settings:   settingsService,
		Sync:       syncOrchestrator,
		Suites:     suiteStore,
	}
	previousBootstrap := bootstrap

	SetServices(svc)
	bootstrap = nil

	return &testEnv{Doc: doc, Services: svc, SuiteDir: suiteDir}, func() {
		SetServices(previous)
		bootstrap = previousBootstrap
		resetCommandState()
	}
}

// closedStoreServices installs services over a SQLite store that has
// already been closed, so every store read fails.
func closedStoreServices(t *testing.T) func() {
	t.Helper()

	store, err := sqlite.NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	documents := services.NewDocumentService(
		store,
		normalisers.NewDispatcher(),
		postprocessors.DefaultRegistry(),
		domain.DefaultChunkingConfig(),
	)
	search := services.NewSearchService(store, domain.DefaultSearchLimit)

	restore := clearServices()
	SetServices(&Services{
		Document:   documents,
		Search:     search,
		Evaluation: services.NewEvaluationService(search, store, domain.DefaultEvaluationLimit),
	})
	return restore
}

// clearServices removes every service so "not configured" paths can be hit.
func clearServices() func() {
	previous := &Services{
		Document:   documentService,
		Search:     searchService,
		Evaluation: evaluationService,
		Settings:   settingsService,
		Sync:       syncOrchestrator,
		Suites:     suiteStore,
	}
	previousBootstrap := bootstrap

	SetServices(&Services{})
	bootstrap = nil

	return func() {
		SetServices(previous)
		bootstrap = previousBootstrap
		resetCommandState()
	}
}

// resetCommandState returns flag variables to their defaults between tests.
func resetCommandState() {
	verbose = false
	configDir = ""
	docPaths = nil
	strategy = ""
	chunkSize = 0
	overlap = 0
	searchLimit = 0
	searchJSON = false
	evalExpected = nil
	evalSuite = ""
	evalLimit = 0
	processName = "stdin.txt"
	storeName = StoreMemory

	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
}

// execute runs the root command with args and returns the combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeDocs writes files into a fresh temp directory and returns it.
func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "minirag", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"process", "search", "evaluate", "list", "stats", "document", "settings", "mcp", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"verbose", "config-dir", "docs", "strategy", "chunk-size", "overlap", "store"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "d", flags.Lookup("docs").Shorthand)
}

func TestRootCmd_DocsFlagIngestsBeforeCommand(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	dir := writeDocs(t, map[string]string{
		"dl.txt": "Deep learning uses neural networks with many layers.",
	})

	out, err := execute("stats", "--docs", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "Total Documents: 2")
}

func TestRootCmd_DocsFlagMissingPath(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute("stats", "--docs", filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRootCmd_BootstrapReceivesFlags(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	var got Config
	svc := &Services{
		Document:   documentService,
		Search:     searchService,
		Evaluation: evaluationService,
		Settings:   settingsService,
		Sync:       syncOrchestrator,
		Suites:     suiteStore,
	}
	SetBootstrap(func(cfg Config) (*Services, error) {
		got = cfg
		return svc, nil
	})

	_, err := execute("stats", "--strategy", "paragraph", "--chunk-size", "200",
		"--config-dir", "/tmp/minirag-test", "--store", "sqlite")

	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, got.Store)
	assert.Equal(t, domain.ChunkParagraph, got.Strategy)
	assert.Equal(t, "/tmp/minirag-test", got.ConfigDir)
	require.NotNil(t, got.ChunkSize)
	assert.Equal(t, 200, *got.ChunkSize)
}

func TestRootCmd_BootstrapRejectsUnknownStrategy(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	called := false
	SetBootstrap(func(Config) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	_, err := execute("stats", "--strategy", "sentences")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.False(t, called)
}

func TestRootCmd_BootstrapRejectsUnknownStore(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	SetBootstrap(func(Config) (*Services, error) {
		return &Services{}, nil
	})

	_, err := execute("stats", "--store", "postgres")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestRootCmd_StoreFailuresAreReported(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "stats", args: []string{"stats"}, want: "failed to read stats"},
		{name: "list", args: []string{"list"}, want: "failed to read stats"},
		{name: "search", args: []string{"search", "machine"}, want: "search failed"},
		{name: "evaluate", args: []string{"evaluate", "machine", "-e", fixturePath}, want: "evaluation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := closedStoreServices(t)
			defer cleanup()

			out, err := execute(tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, out, "No results found")
			assert.NotContains(t, out, "Total Documents: 0")
		})
	}
}
