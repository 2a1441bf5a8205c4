// Package cache stores rendered exploration results keyed by dataset and
// request parameters so repeated dashboard interactions skip the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/soltixdb/tsexplorer/internal/config"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// Cache stores opaque payloads with a TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// New creates the configured cache backend
func New(cfg config.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return NewMemoryCache(time.Minute), nil
	case "redis":
		return NewRedisCache(cfg.URL, cfg.Password, cfg.DB)
	case "none":
		return nopCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis, none)", cfg.Type)
	}
}

// Store layers key naming and JSON encoding over a Cache
type Store struct {
	backend  Cache
	prefix   string
	ttl      time.Duration
	compress bool
}

// NewStore wraps backend. Values are snappy compressed when compress is set.
func NewStore(backend Cache, prefix string, ttl time.Duration, compress bool) *Store {
	return &Store{backend: backend, prefix: prefix, ttl: ttl, compress: compress}
}

// NewStoreFromConfig builds the backend and the store from configuration
func NewStoreFromConfig(cfg config.CacheConfig) (*Store, error) {
	backend, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(backend, cfg.Prefix, cfg.TTL, cfg.Compress), nil
}

// DatasetPrefix returns the key prefix shared by all entries of a dataset
func (s *Store) DatasetPrefix(dataset string) string {
	return s.prefix + ":" + dataset + ":"
}

// Key derives the entry key for a dataset and request parameters
func (s *Store) Key(dataset string, params interface{}) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key params: %w", err)
	}
	sum := sha256.Sum256(raw)
	return s.DatasetPrefix(dataset) + hex.EncodeToString(sum[:12]), nil
}

// Get decodes the entry at key into dst. It returns false on a miss.
func (s *Store) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if s.compress {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return false, fmt.Errorf("snappy decompress failed: %w", err)
		}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

// Set encodes v and stores it at key
func (s *Store) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if s.compress {
		data = snappy.Encode(nil, data)
	}
	return s.backend.Set(ctx, key, data, s.ttl)
}

// InvalidateDataset drops every entry of a dataset
func (s *Store) InvalidateDataset(ctx context.Context, dataset string) error {
	return s.backend.DeletePrefix(ctx, s.DatasetPrefix(dataset))
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nopCache) DeletePrefix(context.Context, string) error               { return nil }
func (nopCache) Close() error                                             { return nil }
