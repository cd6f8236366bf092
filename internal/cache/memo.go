// Package cache memoizes loaded project tables. Entries are keyed by
// project, data kind and category and are re-validated against the current
// fingerprints of their source files on every lookup, so a changed file is
// always reloaded.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/inodb/sigdata/internal/store"
	"github.com/inodb/sigdata/internal/table"
)

// DefaultSize is the number of tables kept when no size is configured.
const DefaultSize = 256

// Key identifies one cached table.
type Key struct {
	Project  string
	Kind     string
	Category string // mutation type for count tables, "" otherwise
}

func (k Key) String() string {
	if k.Category == "" {
		return fmt.Sprintf("%s/%s", k.Project, k.Kind)
	}
	return fmt.Sprintf("%s/%s/%s", k.Project, k.Kind, k.Category)
}

type entry struct {
	frame *table.Frame
	deps  []store.Fingerprint
}

// LoadFunc produces a table on a cache miss.
type LoadFunc func(ctx context.Context) (*table.Frame, error)

// Cache is a bounded, fingerprint-validated table cache. It is safe for
// concurrent use; concurrent misses for the same key each run the loader.
type Cache struct {
	st      store.Store
	entries *lru.Cache[Key, entry]
	logger  *zap.Logger

	hits          prometheus.Counter
	misses        prometheus.Counter
	invalidations prometheus.Counter
}

// New creates a cache over st holding up to size tables. Metrics are
// registered on reg when it is non-nil.
func New(st store.Store, size int, reg prometheus.Registerer) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[Key, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	c := &Cache{
		st:      st,
		entries: entries,
		logger:  zap.NewNop(),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sigdata", Subsystem: "table_cache", Name: "hits_total",
			Help: "Table lookups served from cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sigdata", Subsystem: "table_cache", Name: "misses_total",
			Help: "Table lookups that loaded from the store.",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sigdata", Subsystem: "table_cache", Name: "invalidations_total",
			Help: "Cached tables dropped because a source file changed.",
		}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.hits, c.misses, c.invalidations} {
			if err := reg.Register(col); err != nil {
				return nil, fmt.Errorf("register cache metrics: %w", err)
			}
		}
	}
	return c, nil
}

// SetLogger sets the logger for debug messages.
func (c *Cache) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached table.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Get returns the table for key, calling load when nothing is cached or when
// any of the source files named in deps has changed since it was cached.
// The returned frame is a private copy.
func (c *Cache) Get(ctx context.Context, key Key, deps []string, load LoadFunc) (*table.Frame, error) {
	current := make([]store.Fingerprint, len(deps))
	for i, dep := range deps {
		fp, err := c.st.Stat(ctx, dep)
		if err != nil {
			return nil, err
		}
		current[i] = fp
	}

	if e, ok := c.entries.Get(key); ok {
		if sameFingerprints(e.deps, current) {
			c.hits.Inc()
			return e.frame.Clone(), nil
		}
		c.entries.Remove(key)
		c.invalidations.Inc()
		c.logger.Debug("source changed, reloading", zap.Stringer("key", key))
	}

	c.misses.Inc()
	f, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, entry{frame: f.Clone(), deps: current})
	return f, nil
}

func sameFingerprints(a, b []store.Fingerprint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
