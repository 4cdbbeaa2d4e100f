// Package redis persists journeys and coordinates editors through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/serialization"
	backend "github.com/redis/go-redis/v9"
)

// neverExpires is the index score used when no TTL is configured (2100-01-01).
const neverExpires = 4102444800

// Store implements ports.JourneyStore using Redis.
//
// Each journey lives under <prefix><id> as a serialized blob. A sorted set keyed
// by expiry indexes the ids, and a hash keeps their summaries so List does not
// decode whole journeys.
type Store struct {
	client     *backend.Client
	prefix     string
	ttl        time.Duration
	serializer *serialization.Serializer
}

type Option func(*Store)

// WithTTL sets the expiration for journeys.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for journeys.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithSerializer replaces the default msgpack+zstd pipeline.
func WithSerializer(ser *serialization.Serializer) Option {
	return func(s *Store) {
		if ser != nil {
			s.serializer = ser
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:     client,
		prefix:     "waypoint:journey:",
		serializer: serialization.Default(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying connection so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) summaryKey() string {
	return s.prefix + "summaries"
}

// Save persists the journey to Redis.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("%w: journey id", domain.ErrMissingRequiredField)
	}
	data, err := s.serializer.MarshalJourney(j)
	if err != nil {
		return err
	}
	summary, err := json.Marshal(j.Summarize())
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = neverExpires
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(j.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: j.ID})
	pipe.HSet(ctx, s.summaryKey(), j.ID, summary)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the journey from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return s.serializer.UnmarshalJourney(val)
}

// Delete removes the journey and its index entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	pipe.HDel(ctx, s.summaryKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns summaries of live journeys, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	expired, err := s.client.ZRangeByScore(ctx, s.indexKey(), &backend.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan expired journeys: %w", err)
	}
	if len(expired) > 0 {
		pipe := s.client.TxPipeline()
		pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now)
		pipe.HDel(ctx, s.summaryKey(), expired...)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to prune expired journeys: %w", err)
		}
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Summary{}, nil
	}

	raw, err := s.client.HMGet(ctx, s.summaryKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read summaries: %w", err)
	}

	out := make([]domain.Summary, 0, len(raw))
	for i, v := range raw {
		str, ok := v.(string)
		if !ok {
			// Summary missing; fall back to the id alone.
			out = append(out, domain.Summary{ID: ids[i]})
			continue
		}
		var sum domain.Summary
		if err := json.Unmarshal([]byte(str), &sum); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary %s: %w", ids[i], err)
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
