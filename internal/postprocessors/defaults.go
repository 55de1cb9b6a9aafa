package postprocessors

import (
	"fmt"
	"math"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/postprocessors/chunker"
	"github.com/custodia-labs/minirag/internal/postprocessors/paragraph"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, buildChunker)
	r.Register(paragraph.Name, buildParagraph)
}

// DefaultRegistry returns a registry with the built-in chunkers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// Ensure Registry implements the interface.
var _ driven.ChunkerFactory = (*Registry)(nil)

// Pipeline builds the chunking pipeline for a configuration.
func (r *Registry) Pipeline(cfg domain.ChunkingConfig) (driven.PostProcessorPipeline, error) {
	p, err := BuildPipeline(r, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// BuildPipeline builds the chunking pipeline for a configuration.
func BuildPipeline(r *Registry, cfg domain.ChunkingConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	proc, err := r.Build(cfg.Strategy.String(), cfg.ProcessorConfig())
	if err != nil {
		return nil, err
	}
	return NewPipeline(proc), nil
}

// buildChunker creates a fixed-size chunker from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 0)
//   - lookback (int): Whitespace snap tolerance in characters (default: 100)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok, err := getIntFromConfig(cfg, "chunk_size"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok, err := getIntFromConfig(cfg, "overlap"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if lookBack, ok, err := getIntFromConfig(cfg, "lookback"); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, chunker.WithLookBack(lookBack))
	}

	return chunker.New(opts...)
}

// buildParagraph creates a paragraph chunker. It takes no config.
func buildParagraph(_ map[string]any) (driven.PostProcessor, error) {
	return paragraph.New(), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
// A float64 with a fractional part is rejected. Reports whether the key was present.
func getIntFromConfig(cfg map[string]any, key string) (int, bool, error) {
	val, ok := cfg[key]
	if !ok {
		return 0, false, nil
	}

	switch v := val.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false, fmt.Errorf("%s: expected integer, got %v: %w", key, v, domain.ErrInvalidConfiguration)
		}
		return int(v), true, nil
	default:
		return 0, false, fmt.Errorf("%s: expected integer, got %T: %w", key, val, domain.ErrInvalidConfiguration)
	}
}
