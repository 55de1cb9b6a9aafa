package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
)

// Ensure SuiteStore implements the interface.
var _ driven.SuiteStore = (*SuiteStore)(nil)

// suiteFile is the on-disk layout of an evaluation suite.
type suiteFile struct {
	Cases []domain.EvaluationCase `yaml:"cases"`
}

// SuiteStore reads evaluation suites written as YAML.
//
//	cases:
//	  - query: "machine learning"
//	    expected: ["/docs/ml.txt"]
//	    limit: 5
type SuiteStore struct {
	dir string
}

// NewSuiteStore creates a store rooted at dir. dir may be empty, in which
// case only explicit file paths can be loaded.
func NewSuiteStore(dir string) *SuiteStore {
	return &SuiteStore{dir: dir}
}

// Load reads the cases of a suite by path or by name within the store directory.
func (s *SuiteStore) Load(name string) ([]domain.EvaluationCase, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	return ParseSuite(data)
}

// ParseSuite decodes suite YAML. Unknown fields are rejected.
func ParseSuite(data []byte) ([]domain.EvaluationCase, error) {
	var suite suiteFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode suite: %v: %w", err, domain.ErrInvalidInput)
	}

	for i, c := range suite.Cases {
		if strings.TrimSpace(c.Query) == "" {
			return nil, fmt.Errorf("case %d has no query: %w", i+1, domain.ErrInvalidInput)
		}
		if c.Limit < 0 {
			return nil, fmt.Errorf("case %d limit must not be negative: %w", i+1, domain.ErrInvalidConfiguration)
		}
	}
	return suite.Cases, nil
}

// List returns suite names in the store directory, sorted.
func (s *SuiteStore) List() ([]string, error) {
	if s.dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *SuiteStore) resolve(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	if s.dir != "" && !strings.ContainsRune(name, filepath.Separator) {
		for _, ext := range []string{".yaml", ".yml"} {
			candidate := filepath.Join(s.dir, name+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("suite %s: %w", name, domain.ErrNotFound)
}
