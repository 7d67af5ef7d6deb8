// Package cache provides the multi-tier store for computed aggregates:
// process memory, session scope, and a persistent badger tier with TTL.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/repstats/repstats/pkg/logger"
	"github.com/repstats/repstats/pkg/metrics"
)

// DefaultTTL is the validity window measured from write time.
const DefaultTTL = 24 * time.Hour

// Tier is one storage backend. Implementations must treat their own
// failures as misses; correctness never depends on a tier.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Clearer is implemented by tiers that can drop all entries at once.
type Clearer interface {
	Clear(ctx context.Context)
}

// envelope wraps every stored value with its write time so staleness
// can be judged on read regardless of tier.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Manager reads through an ordered list of tiers and writes through
// all of them.
type Manager struct {
	tiers []Tier
	ttl   time.Duration
	now   func() time.Time
	log   logger.Logger
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithTTL overrides the validity window.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a manager over tiers in read-priority order.
func NewManager(tiers []Tier, opts ...Option) *Manager {
	m := &Manager{
		tiers: tiers,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get checks tiers in order and unmarshals the first fresh hit into
// out. Entries past the TTL are misses; they are not deleted, only
// superseded by the next write. Hits below the first tier are promoted
// into it.
func (m *Manager) Get(ctx context.Context, key string, out any) bool {
	for i, tier := range m.tiers {
		raw, ok := tier.Get(ctx, key)
		if !ok {
			continue
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if m.now().Sub(env.FetchedAt) > m.ttl {
			continue
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			continue
		}

		metrics.RecordCacheHit(tier.Name())
		if i > 0 {
			if err := m.tiers[0].Set(ctx, key, raw); err == nil {
				metrics.RecordCachePromotion()
			}
		}
		return true
	}
	metrics.RecordCacheMiss()
	return false
}

// FetchedAt returns the write time of the freshest stored entry for
// key, ignoring the TTL. Used to expose data age to callers.
func (m *Manager) FetchedAt(ctx context.Context, key string) (time.Time, bool) {
	for _, tier := range m.tiers {
		raw, ok := tier.Get(ctx, key)
		if !ok {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		return env.FetchedAt, true
	}
	return time.Time{}, false
}

// Set writes the value to every tier. The first tier is authoritative:
// its failure fails the write, while lower-tier failures are swallowed
// and that tier degrades to a miss.
func (m *Manager) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Data: data, FetchedAt: m.now()})
	if err != nil {
		return err
	}

	for i, tier := range m.tiers {
		if err := tier.Set(ctx, key, raw); err != nil {
			if i == 0 {
				return err
			}
			metrics.RecordCacheWriteFail(tier.Name())
			if m.log != nil {
				m.log.Debug(ctx, "cache tier write failed",
					logger.String("tier", tier.Name()),
					logger.String("key", key),
					logger.Error(err),
				)
			}
		}
	}
	metrics.RecordCacheWrite()
	return nil
}

// Invalidate removes the entry from every tier so the next read is a
// full miss. Forced refreshes call this before recomputation.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	for _, tier := range m.tiers {
		if err := tier.Delete(ctx, key); err != nil && m.log != nil {
			m.log.Debug(ctx, "cache tier delete failed",
				logger.String("tier", tier.Name()),
				logger.String("key", key),
				logger.Error(err),
			)
		}
	}
}

// Reset clears every tier that supports clearing. Tests use this.
func (m *Manager) Reset(ctx context.Context) {
	for _, tier := range m.tiers {
		if c, ok := tier.(Clearer); ok {
			c.Clear(ctx)
		}
	}
}
