// Package runtimeconfig is the operator-tunable config layer SPEC_FULL.md's
// Ambient Stack section calls for: keys like min_catalyst_score or
// top_k live behind the Persistence Port (workflow_config table) instead of
// the static viper config, so an operator can retune them without a
// restart. It is a separate package from internal/config specifically so
// internal/store never needs to import internal/config — store.Port stays
// the only thing this package depends on.
package runtimeconfig

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

const cacheTTL = time.Minute

type cacheEntry struct {
	value     string
	found     bool
	expiresAt time.Time
}

// Store reads and writes operator-tunable config keys through store.Port,
// caching reads for cacheTTL the way the Redis cache layer caches other hot
// reads (spec §6 "Configuration").
type Store struct {
	port store.Port

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func New(port store.Port) *Store {
	return &Store{port: port, cache: make(map[string]cacheEntry)}
}

// Get reads key, preferring the 1-minute cache, falling back to fallback if
// the key has never been set by an operator.
func (s *Store) Get(ctx context.Context, key, fallback string) (string, error) {
	if v, found, ok := s.cached(key); ok {
		if !found {
			return fallback, nil
		}
		return v, nil
	}

	value, found, err := s.port.ReadConfig(ctx, key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{value: value, found: found, expiresAt: time.Now().Add(cacheTTL)}
	s.mu.Unlock()

	if !found {
		return fallback, nil
	}
	return value, nil
}

// GetFloat is Get with float64 parsing, falling back to fallback on a
// missing key or a malformed stored value.
func (s *Store) GetFloat(ctx context.Context, key string, fallback float64) float64 {
	raw, err := s.Get(ctx, key, strconv.FormatFloat(fallback, 'f', -1, 64))
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// GetInt is Get with int parsing.
func (s *Store) GetInt(ctx context.Context, key string, fallback int) int {
	raw, err := s.Get(ctx, key, strconv.Itoa(fallback))
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Set writes key through the port and invalidates the cached value, so the
// next Get observes it immediately rather than waiting out the TTL.
func (s *Store) Set(ctx context.Context, key, value, modifiedBy string) error {
	if err := s.port.WriteConfig(ctx, key, value, modifiedBy); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) cached(key string) (string, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, false
	}
	return entry.value, entry.found, true
}
