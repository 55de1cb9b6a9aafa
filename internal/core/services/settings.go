package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyChunkStrategy = "chunking.strategy"
	KeyChunkSize     = "chunking.chunk_size"
	KeyChunkOverlap  = "chunking.overlap"
	KeyChunkLookBack = "chunking.lookback"
	KeySearchLimit   = "search.limit"
	KeyEvalLimit     = "evaluation.limit"
)

// envOverrides maps environment variables to the config key they override.
var envOverrides = map[string]string{
	"MINIRAG_CHUNK_STRATEGY": KeyChunkStrategy,
	"MINIRAG_CHUNK_SIZE":     KeyChunkSize,
	"MINIRAG_CHUNK_OVERLAP":  KeyChunkOverlap,
	"MINIRAG_CHUNK_LOOKBACK": KeyChunkLookBack,
	"MINIRAG_SEARCH_LIMIT":   KeySearchLimit,
	"MINIRAG_EVAL_LIMIT":     KeyEvalLimit,
}

// SettingsService manages application settings.
// Values resolve in order: environment, config file, defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetLookupEnv replaces the environment lookup. Pass nil to ignore the environment.
func (s *SettingsService) SetLookupEnv(fn func(string) (string, bool)) {
	if fn == nil {
		fn = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = fn
}

// Keys returns the supported setting keys, sorted.
func Keys() []string {
	keys := []string{KeyChunkStrategy, KeyChunkSize, KeyChunkOverlap, KeyChunkLookBack, KeySearchLimit, KeyEvalLimit}
	sort.Strings(keys)
	return keys
}

// Get retrieves current application settings.
// Invalid stored values fall back to defaults. Invalid environment values
// are reported, since they were set for this run.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	if err := s.applyEnv(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyChunkStrategy, settings.Chunking.Strategy.String()},
		{KeyChunkSize, settings.Chunking.ChunkSize},
		{KeyChunkOverlap, settings.Chunking.Overlap},
		{KeyChunkLookBack, settings.Chunking.LookBack},
		{KeySearchLimit, settings.Search.Limit},
		{KeyEvalLimit, settings.Evaluation.Limit},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates a single setting from its string form.
// The resulting settings must be valid as a whole.
func (s *SettingsService) Set(key, value string) error {
	settings := s.stored()
	if err := assign(settings, key, value); err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}

	var persisted any
	if key == KeyChunkStrategy {
		persisted = settings.Chunking.Strategy.String()
	} else {
		persisted, _ = strconv.Atoi(strings.TrimSpace(value))
	}
	if err := s.configStore.Set(key, persisted); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Reset removes a stored setting so its default applies.
func (s *SettingsService) Reset(key string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("setting %q: %w", key, domain.ErrNotFound)
	}
	return s.configStore.Delete(key)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// stored returns settings from the config store only, ignoring the environment.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Chunking: domain.ChunkingConfig{
			Strategy:  s.getStrategy(defaults.Chunking.Strategy),
			ChunkSize: s.getInt(KeyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:   s.getInt(KeyChunkOverlap, defaults.Chunking.Overlap),
			LookBack:  s.getInt(KeyChunkLookBack, defaults.Chunking.LookBack),
		},
		Search:     domain.SearchSettings{Limit: s.getInt(KeySearchLimit, defaults.Search.Limit)},
		Evaluation: domain.EvaluationSettings{Limit: s.getInt(KeyEvalLimit, defaults.Evaluation.Limit)},
	}
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) error {
	names := make([]string, 0, len(envOverrides))
	for name := range envOverrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := s.lookupEnv(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if err := assign(settings, envOverrides[name], value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s *SettingsService) getStrategy(def domain.ChunkType) domain.ChunkType {
	raw := s.configStore.GetString(KeyChunkStrategy)
	if raw == "" {
		return def
	}
	strategy, err := domain.ParseChunkType(raw)
	if err != nil {
		return def
	}
	return strategy
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

// assign parses value into the field named by key.
func assign(settings *domain.AppSettings, key, value string) error {
	value = strings.TrimSpace(value)

	if key == KeyChunkStrategy {
		strategy, err := domain.ParseChunkType(value)
		if err != nil {
			return err
		}
		settings.Chunking.Strategy = strategy
		return nil
	}

	var field *int
	switch key {
	case KeyChunkSize:
		field = &settings.Chunking.ChunkSize
	case KeyChunkOverlap:
		field = &settings.Chunking.Overlap
	case KeyChunkLookBack:
		field = &settings.Chunking.LookBack
	case KeySearchLimit:
		field = &settings.Search.Limit
	case KeyEvalLimit:
		field = &settings.Evaluation.Limit
	default:
		return fmt.Errorf("setting %q: %w", key, domain.ErrNotFound)
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q: %w", key, value, domain.ErrInvalidConfiguration)
	}
	*field = n
	return nil
}

// validateSettings checks every stored parameter, including fixed-size
// parameters while another strategy is selected.
func validateSettings(settings *domain.AppSettings) error {
	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	fixed := settings.Chunking
	fixed.Strategy = domain.ChunkFixedSize
	if err := fixed.Validate(); err != nil {
		return err
	}
	if settings.Search.Limit <= 0 {
		return fmt.Errorf("%s must be positive, got %d: %w", KeySearchLimit, settings.Search.Limit, domain.ErrInvalidConfiguration)
	}
	if settings.Evaluation.Limit <= 0 {
		return fmt.Errorf("%s must be positive, got %d: %w", KeyEvalLimit, settings.Evaluation.Limit, domain.ErrInvalidConfiguration)
	}
	return nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
