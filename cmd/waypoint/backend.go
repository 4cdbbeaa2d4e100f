package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/pkg/adapters/catalog"
	"github.com/aretw0/waypoint/pkg/adapters/file"
	loamAdapter "github.com/aretw0/waypoint/pkg/adapters/loam"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/postgres"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/adapters/sqlite"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/serialization"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/store"
)

// backend is everything a long-running command needs to edit journeys.
type backend struct {
	repo   ports.JourneyStore
	locker ports.DistributedLocker
	close  func()
}

func newSerializer(cfg config.StoreConfig) (*serialization.Serializer, error) {
	compression := serialization.CompressionNone
	if cfg.Compress {
		compression = serialization.CompressionZstd
	}
	return serialization.New(serialization.NewMsgPackCodec(), compression)
}

// openBackend builds the journey repository selected by the config.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	sc := cfg.Store
	b := &backend{close: func() {}}
	switch sc.Backend {
	case config.BackendMemory:
		b.repo = memory.NewStore()
	case config.BackendFile:
		b.repo = file.New(sc.Path, file.WithFormat(file.FormatFor(sc.Path)))
	case config.BackendLoam:
		repo, err := loamAdapter.Open(sc.Path)
		if err != nil {
			return nil, err
		}
		b.repo = repo
	case config.BackendRedis:
		ser, err := newSerializer(sc)
		if err != nil {
			return nil, err
		}
		repo := redis.New(sc.RedisAddr, sc.RedisPassword, sc.RedisDB,
			redis.WithPrefix(sc.Prefix+":journey:"),
			redis.WithSerializer(ser),
		)
		b.repo = repo
		b.locker = redis.NewLocker(repo.Client(), sc.Prefix+":")
		b.close = func() { _ = repo.Close() }
	case config.BackendSQLite:
		ser, err := newSerializer(sc)
		if err != nil {
			return nil, err
		}
		repo, err := sqlite.Open(ctx, sc.Path, ser)
		if err != nil {
			return nil, err
		}
		b.repo = repo
		b.close = func() { _ = repo.Close() }
	case config.BackendPostgres:
		ser, err := newSerializer(sc)
		if err != nil {
			return nil, err
		}
		repo, err := postgres.Connect(ctx, sc.DSN, ser)
		if err != nil {
			return nil, err
		}
		b.repo = repo
		b.close = repo.Close
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
	logger.Info("Journey store ready", "backend", sc.Backend, "distributed_lock", b.locker != nil)
	return b, nil
}

// newManager wires a session manager with the canvas settings and metrics.
func newManager(cfg *config.Config, b *backend, metrics *observability.Metrics, logger *slog.Logger) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithStoreOptions(store.WithLogger(logger), store.WithRecorder(metrics)),
		session.WithCanvasOptions(
			canvas.WithLogger(logger),
			canvas.WithScaleBounds(cfg.Canvas.ScaleBounds()),
			canvas.WithSceneOptions(cfg.Canvas.SceneOptions()),
			canvas.WithViewportSize(float64(cfg.Canvas.Width), float64(cfg.Canvas.Height)),
		),
	}
	if b.locker != nil {
		opts = append(opts, session.WithLocker(b.locker))
	}
	return session.NewManager(b.repo, opts...)
}

// newCatalog returns the remote function catalog, or nil when none is configured.
func newCatalog(cfg *config.Config, logger *slog.Logger) ports.FunctionCatalog {
	if cfg.Catalog.BaseURL == "" {
		return nil
	}
	timeout := cfg.Catalog.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return catalog.New(cfg.Catalog.BaseURL, catalog.WithTimeout(timeout), catalog.WithLogger(logger))
}
