package waypoint

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	loamAdapter "github.com/aretw0/waypoint/pkg/adapters/loam"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/store"
)

// Editor is the high-level entry point for the waypoint library.
// It wraps a journey repository and a session manager behind a small API.
type Editor struct {
	repo        ports.JourneyStore
	sessions    *session.Manager
	sessionOpts []session.Option
	catalog     ports.FunctionCatalog
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithStore injects a journey repository, bypassing the default Loam initialization.
func WithStore(repo ports.JourneyStore) Option {
	return func(e *Editor) {
		e.repo = repo
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLocker makes sessions take a distributed lock per journey.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, session.WithLocker(locker))
	}
}

// WithCatalog sets the remote function catalog offered next to journey functions.
func WithCatalog(catalog ports.FunctionCatalog) Option {
	return func(e *Editor) {
		e.catalog = catalog
	}
}

// WithSessionOptions passes options through to the session manager.
func WithSessionOptions(opts ...session.Option) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, opts...)
	}
}

// New initializes an Editor.
// By default, journeys live in a Loam repository at repoPath.
// If WithStore is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.repo == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom store is provided")
		}
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		e.Name = filepath.Base(absPath)

		repo, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, err
		}
		e.repo = repo
	} else if repoPath != "" {
		e.Name = filepath.Base(repoPath)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.Name != "" {
		e.logger = e.logger.With("repo", e.Name)
	}

	sessionOpts := append([]session.Option{
		session.WithLogger(e.logger),
		session.WithStoreOptions(store.WithLogger(e.logger)),
	}, e.sessionOpts...)
	e.sessions = session.NewManager(e.repo, sessionOpts...)
	return e, nil
}

// Sessions returns the session manager, for adapters that serve it.
func (e *Editor) Sessions() *session.Manager {
	return e.sessions
}

// Store returns the journey repository.
func (e *Editor) Store() ports.JourneyStore {
	return e.repo
}

// List returns summaries of the stored journeys.
func (e *Editor) List(ctx context.Context) ([]domain.Summary, error) {
	return e.sessions.List(ctx)
}

// Create opens a session on a new journey named name and returns its id.
// Nothing is stored until Save.
func (e *Editor) Create(ctx context.Context, name string) (string, error) {
	s, err := e.sessions.Create(ctx)
	if err != nil {
		return "", err
	}
	err = e.sessions.WithSession(ctx, s.JourneyID, func(ctx context.Context, s *session.Session) error {
		s.Store.UpdateDetails(store.DetailsPatch{Name: &name})
		return nil
	})
	return s.JourneyID, err
}

// Import stores j as is. Use it to seed a repository from a dsl definition or a file.
func (e *Editor) Import(ctx context.Context, j *domain.Journey) error {
	if violations := domain.Check(j); len(violations) > 0 {
		return fmt.Errorf("journey %s: %w", j.ID, violations[0])
	}
	return e.repo.Save(ctx, j)
}

// Open starts editing a stored journey. It returns what loading had to repair.
func (e *Editor) Open(ctx context.Context, id string) ([]domain.Violation, error) {
	s, err := e.sessions.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Repairs, nil
}

// Edit runs fn against the model store of an open journey and returns the
// resulting snapshot. fn must not keep the store.
func (e *Editor) Edit(ctx context.Context, id string, fn func(st *store.Store) error) (*domain.Journey, error) {
	var j *domain.Journey
	err := e.sessions.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
		if err := fn(s.Store); err != nil {
			return err
		}
		j = s.Store.Snapshot()
		return nil
	})
	return j, err
}

// Snapshot returns the current state of an open journey.
func (e *Editor) Snapshot(ctx context.Context, id string) (*domain.Journey, error) {
	return e.Edit(ctx, id, func(*store.Store) error { return nil })
}

// Canvas runs fn against the canvas controller of an open journey.
func (e *Editor) Canvas(ctx context.Context, id string, fn func(c *canvas.Controller) error) error {
	return e.sessions.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
		return fn(s.Canvas)
	})
}

// Render draws the canvas of an open journey with r.
func (e *Editor) Render(ctx context.Context, id string, w io.Writer, r canvas.Renderer) error {
	return e.Canvas(ctx, id, func(c *canvas.Controller) error {
		return c.Render(w, r)
	})
}

// AvailableFunctions lists the functions an open journey can map: its own first,
// then the catalog's. Without a catalog, or when it fails, only the journey's own
// functions are listed.
func (e *Editor) AvailableFunctions(ctx context.Context, id string) ([]domain.Function, error) {
	j, err := e.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	var remote []domain.Function
	if e.catalog != nil {
		remote, err = e.catalog.ListFunctions(ctx)
		if err != nil {
			e.logger.Warn("Catalog unavailable, listing journey functions only", "journey_id", id, "err", err)
			remote = nil
		}
	}
	return domain.MergeFunctions(j.Functions, remote), nil
}

// ImportFunction copies the catalog function referenceID into an open journey.
func (e *Editor) ImportFunction(ctx context.Context, id, referenceID string) (domain.Function, error) {
	if e.catalog == nil {
		return domain.Function{}, fmt.Errorf("%w: no function catalog configured", domain.ErrNotFound)
	}
	fns, err := e.catalog.ListFunctions(ctx)
	if err != nil {
		return domain.Function{}, fmt.Errorf("failed to list catalog functions: %w", err)
	}
	for _, fn := range fns {
		if fn.ReferenceID != referenceID {
			continue
		}
		var added domain.Function
		_, err := e.Edit(ctx, id, func(st *store.Store) error {
			var err error
			added, err = st.AddFunction(fn)
			return err
		})
		return added, err
	}
	return domain.Function{}, fmt.Errorf("%w: catalog function %s", domain.ErrNotFound, referenceID)
}

// Save persists an open journey.
func (e *Editor) Save(ctx context.Context, id string) error {
	return e.sessions.Save(ctx, id)
}

// Close stops editing a journey, discarding unsaved changes.
func (e *Editor) Close(ctx context.Context, id string) error {
	return e.sessions.Close(ctx, id)
}

// Shutdown closes every open session.
func (e *Editor) Shutdown(ctx context.Context) {
	e.sessions.CloseAll(ctx)
}
