package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/claude/posecoach/internal/models"
)

// ErrInvalidExerciseName is returned when a name cannot be written as a
// catalog header line.
var ErrInvalidExerciseName = errors.New("invalid exercise name")

// Store keeps the catalog file and the registry parsed from it. Readers get
// the current registry without locking; Reload and AddExercise replace it.
type Store struct {
	path string
	log  *slog.Logger

	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Registry]
	onLoad  func(*Result, error)
}

// NewStore returns a store for path holding an empty registry. Call Reload
// to load it.
func NewStore(path string, log *slog.Logger) *Store {
	s := &Store{path: path, log: log}
	s.current.Store(NewRegistry())
	return s
}

// Open loads the catalog at path, writing the default catalog first if the
// file does not exist.
func Open(path string, log *slog.Logger) (*Store, error) {
	s := NewStore(path, log)
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnLoad registers a callback invoked after every reload attempt, including
// the first. It must be set before the store is shared.
func (s *Store) OnLoad(fn func(*Result, error)) {
	s.onLoad = fn
}

// Path returns the catalog file path.
func (s *Store) Path() string {
	return s.path
}

// Registry returns the current registry.
func (s *Store) Registry() *Registry {
	return s.current.Load()
}

// Reload re-reads the catalog file and swaps in the new registry. On error
// the previous registry stays in place.
func (s *Store) Reload() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load()
	if s.onLoad != nil {
		s.onLoad(res, err)
	}
	if err != nil {
		return nil, err
	}

	for _, d := range res.Diagnostics {
		s.log.Warn("skipping catalog line", "path", s.path, "line", d.Line, "text", d.Text, "error", d.Err)
	}
	if res.Registry.Equal(s.current.Load()) {
		s.log.Debug("catalog unchanged", "path", s.path)
	} else {
		s.log.Info("catalog loaded", "path", s.path, "exercises", res.Registry.Len(), "skipped", len(res.Diagnostics))
	}
	s.current.Store(res.Registry)
	return res, nil
}

func (s *Store) load() (*Result, error) {
	if err := s.ensureExists(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func (s *Store) ensureExists() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking catalog: %w", err)
	}
	if err := writeFileAtomic(s.path, []byte(DefaultCatalog)); err != nil {
		return fmt.Errorf("writing default catalog: %w", err)
	}
	s.log.Info("created default exercise catalog", "path", s.path)
	return nil
}

// AddExercise defines or replaces an exercise and persists the catalog.
func (s *Store) AddExercise(name string, rules []models.PostureRule) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w: %v", i, ErrMalformedRule, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().With(name, rules)
	if err := WriteFile(s.path, next); err != nil {
		return err
	}
	s.current.Store(next)
	s.log.Info("exercise saved", "exercise", NormalizeName(name), "rules", len(rules))
	return nil
}

// ValidateName checks that name can be used as an exercise header line.
func ValidateName(name string) error {
	key := NormalizeName(name)
	switch {
	case key == "":
		return fmt.Errorf("%w: empty", ErrInvalidExerciseName)
	case strings.HasPrefix(key, "#"), strings.HasPrefix(key, rulePrefix):
		return fmt.Errorf("%w: %q reads as a comment or rule", ErrInvalidExerciseName, name)
	case strings.ContainsAny(key, "\r\n"):
		return fmt.Errorf("%w: %q spans lines", ErrInvalidExerciseName, name)
	}
	return nil
}

// WriteFile formats reg and atomically replaces the catalog at path.
func WriteFile(path string, reg *Registry) error {
	if err := writeFileAtomic(path, []byte(Format(reg))); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path via a temp file in the same directory so
// readers never observe a partial catalog.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
