// Package file stores journeys as JSON or YAML documents on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Unknown extensions are JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

func (f Format) ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Store implements ports.JourneyStore using the local filesystem.
// It stores one document per journey in a configured directory.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures the Store.
type Option func(*Store)

// WithFormat selects JSON (default) or YAML documents.
func WithFormat(f Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".waypoint/journeys".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".waypoint", "journeys")
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: journey id", domain.ErrMissingRequiredField)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: journey id %q is not a valid file name", domain.ErrInvalidValue, id)
	}
	return filepath.Join(s.BasePath, id+s.Format.ext()), nil
}

// Save persists the journey atomically.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil {
		return fmt.Errorf("%w: journey", domain.ErrMissingRequiredField)
	}
	dest, err := s.path(j.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure journey directory: %w", err)
	}
	data, err := Encode(j, s.Format)
	if err != nil {
		return err
	}
	return writeAtomic(dest, data)
}

// Load reads a journey document.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
		}
		return nil, fmt.Errorf("failed to read journey file: %w", err)
	}
	return Decode(data, s.Format)
}

// Delete removes the journey document.
func (s *Store) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete journey file: %w", err)
	}
	return nil
}

// List decodes every document in the directory and returns summaries sorted by id.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Summary{}, nil
		}
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}

	out := []domain.Summary{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != s.Format.ext() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j, err := ReadJourney(filepath.Join(s.BasePath, name))
		if err != nil {
			return nil, err
		}
		out = append(out, j.Summarize())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// ReadJourney loads a single journey file, choosing the format by extension.
func ReadJourney(path string) (*domain.Journey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journey file: %w", err)
	}
	j, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return j, nil
}

// WriteJourney writes a single journey file atomically, choosing the format by extension.
func WriteJourney(path string, j *domain.Journey) error {
	data, err := Encode(j, FormatFor(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure directory: %w", err)
		}
	}
	return writeAtomic(path, data)
}

// Encode renders a journey document.
func Encode(j *domain.Journey, f Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if f == FormatYAML {
		data, err = yaml.Marshal(j)
	} else {
		data, err = json.MarshalIndent(j, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal journey: %w", err)
	}
	return data, nil
}

// Decode parses a journey document.
func Decode(data []byte, f Format) (*domain.Journey, error) {
	var j domain.Journey
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, &j)
	} else {
		err = json.Unmarshal(data, &j)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal journey: %w", err)
	}
	return &j, nil
}

// writeAtomic writes to a temp file in the same directory, fsyncs it and renames it
// over dest.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing journey file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
