// Package session keeps per-session traveler state (the saved home city and
// travel preferences) in Redis. It is the only persistence in the service;
// query results are never stored.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KnowYourLines/varyfly/internal/amadeus"
)

const defaultTTL = 24 * time.Hour

// Preferences are the traveler's saved flight-search preferences. TripLength
// "1".."15" asks for round trips of that many days; any other value means
// one-way.
type Preferences struct {
	TripLength  string `json:"tripLength"`
	NonstopOnly bool   `json:"nonstopOnly"`
}

// Store wraps a Redis client with typed get/set/delete for session state.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Store. A non-positive TTL falls back to 24 hours.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func homeKey(sessionID string) string {
	return "session:" + sessionID + ":home"
}

func prefsKey(sessionID string) string {
	return "session:" + sessionID + ":preferences"
}

// HomeCity retrieves the session's saved home city.
// Returns nil, nil when none is saved (not an error).
func (s *Store) HomeCity(ctx context.Context, sessionID string) (*amadeus.HomeLocation, error) {
	var home amadeus.HomeLocation
	ok, err := s.get(ctx, homeKey(sessionID), &home)
	if err != nil || !ok {
		return nil, err
	}
	return &home, nil
}

// SaveHomeCity stores the session's home city, refreshing its TTL.
func (s *Store) SaveHomeCity(ctx context.Context, sessionID string, home *amadeus.HomeLocation) error {
	return s.set(ctx, homeKey(sessionID), home)
}

// RemoveHomeCity drops the session's saved home city.
func (s *Store) RemoveHomeCity(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, homeKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete %s: %w", homeKey(sessionID), err)
	}
	return nil
}

// Preferences retrieves the session's saved travel preferences.
// Returns nil, nil when none are saved.
func (s *Store) Preferences(ctx context.Context, sessionID string) (*Preferences, error) {
	var prefs Preferences
	ok, err := s.get(ctx, prefsKey(sessionID), &prefs)
	if err != nil || !ok {
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences stores the session's travel preferences.
func (s *Store) SavePreferences(ctx context.Context, sessionID string, prefs *Preferences) error {
	return s.set(ctx, prefsKey(sessionID), prefs)
}

func (s *Store) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("session get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("unmarshaling session value %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) set(ctx context.Context, key string, v any) error {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling session value %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}
