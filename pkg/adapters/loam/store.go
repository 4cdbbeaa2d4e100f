// Package loam stores journeys as Markdown documents in a Loam repository.
// Each document carries the journey in its frontmatter and a readable
// rendering of it in the body, so the directory doubles as documentation.
package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Store implements ports.JourneyStore on top of Loam.
type Store struct {
	repo  core.Repository
	typed *loam.TypedRepository[JourneyMetadata]
}

// New wraps an initialized Loam repository.
func New(repo core.Repository) *Store {
	return &Store{
		repo:  repo,
		typed: loam.NewTypedRepository[JourneyMetadata](repo),
	}
}

// Open initializes (or reuses) a Loam repository at path.
// Versioning is off unless an option turns it back on.
func Open(path string, opts ...loam.Option) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve loam path: %w", err)
	}
	all := append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(abs, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repo: %w", err)
	}
	return New(repo), nil
}

// Save writes the journey document.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("%w: journey id", domain.ErrMissingRequiredField)
	}
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal journey: %w", err)
	}

	err = s.typed.Save(ctx, &loam.DocumentModel[JourneyMetadata]{
		ID:      j.ID,
		Content: tui.JourneyMarkdown(j),
		Data: JourneyMetadata{
			Kind:      documentKind,
			ID:        j.ID,
			Name:      j.Name,
			IsActive:  j.IsActive,
			UpdatedAt: j.UpdatedAt.UTC().Format(time.RFC3339Nano),
			Payload:   string(payload),
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", j.ID, err)
	}
	return nil
}

// Load reads the journey document.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	doc, err := s.typed.Get(ctx, id)
	if err != nil {
		if ok, listErr := s.exists(ctx, id); listErr == nil && !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	if doc.Data.Kind != documentKind {
		return nil, fmt.Errorf("%w: %s is not a journey document", domain.ErrJourneyNotFound, id)
	}

	var j domain.Journey
	if err := json.Unmarshal([]byte(doc.Data.Payload), &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journey %s: %w", id, err)
	}
	return &j, nil
}

// Delete removes the journey document. A missing document is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	ok, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", id, err)
	}
	return nil
}

// List returns summaries of every journey document, sorted by id.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	docs, err := s.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := []domain.Summary{}
	for _, doc := range docs {
		meta := doc.Data
		if meta.Kind != documentKind {
			continue
		}
		id := meta.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		sum := domain.Summary{ID: id, Name: meta.Name, IsActive: meta.IsActive}
		if meta.UpdatedAt != "" {
			if ts, err := time.Parse(time.RFC3339Nano, meta.UpdatedAt); err == nil {
				sum.UpdatedAt = ts
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, sum := range list {
		if sum.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}
