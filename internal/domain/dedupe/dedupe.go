// Package dedupe suppresses alerts that were already emitted for the same
// condition in the same ISO week.
package dedupe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/ironsys/internal/domain/model"
)

// Deduper records alert keys so a condition is reported at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

const keySep = "|"

// Key builds the dedupe key (athlete, kind, metric, ISO week of at).
func Key(athleteID string, kind model.AlertKind, metric string, at time.Time) string {
	y, w := at.ISOWeek()
	return strings.Join([]string{athleteID, string(kind), metric, fmt.Sprintf("%04d-%02d", y, w)}, keySep)
}

// AlertKey is Key applied to an alert's own date.
func AlertKey(a model.Alert) string {
	return Key(a.AthleteID, a.Kind, a.Metric, a.Date)
}

// inMemoryDeduper keeps keys in a map plus an insertion-ordered queue.
// With maxSize > 0 the oldest key is evicted first; otherwise it grows
// without bound.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

// Seed records keys loaded from the alert log.
func Seed(ctx context.Context, d Deduper, keys []string) {
	for _, k := range keys {
		d.SeenAndRecord(ctx, k)
	}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize && len(d.order) > 0 {
			d.evictOldest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	return false
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	oldest := d.order[0]
	d.order[0] = ""
	d.order = d.order[1:]
	delete(d.seen, oldest)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// Filter drops alerts whose key was already seen and records the rest.
// It returns the kept alerts and the number suppressed.
func Filter(ctx context.Context, d Deduper, alerts []model.Alert) ([]model.Alert, int) {
	kept := alerts[:0:0]
	suppressed := 0
	for _, a := range alerts {
		if d.SeenAndRecord(ctx, AlertKey(a)) {
			suppressed++
			continue
		}
		kept = append(kept, a)
	}
	return kept, suppressed
}
