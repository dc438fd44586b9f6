package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/pkg/metrics"
)

// Leaderboard is the in-memory ranking of scored athletes, ordered by DOTS
// desc then name asc. Rows without a DOTS score are not ranked. Readers
// always see a complete snapshot; Replace swaps it in one step.
type Leaderboard struct {
	mu        sync.RWMutex
	entries   []Entry
	byName    map[string]int
	updatedAt time.Time
}

var _ Ranking = (*Leaderboard)(nil)

// NewLeaderboard returns an empty leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{byName: make(map[string]int)}
}

// Replace rebuilds the ranking from a fresh set of results. When a name
// appears more than once its best DOTS is kept.
func (l *Leaderboard) Replace(_ context.Context, results []model.AthleteResult) int {
	best := make(map[string]Entry, len(results))
	for _, r := range results {
		name := strings.TrimSpace(r.Name)
		if name == "" || r.DOTS == nil {
			continue
		}
		e := Entry{
			Name:     name,
			Team:     strings.TrimSpace(r.Team),
			Total:    r.Total,
			DOTS:     *r.DOTS,
			Category: r.Category,
		}
		if r.Wilks != nil {
			e.Wilks = *r.Wilks
		}
		if cur, ok := best[name]; ok && cur.DOTS >= e.DOTS {
			continue
		}
		best[name] = e
	}

	entries := make([]Entry, 0, len(best))
	for _, e := range best {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DOTS != entries[j].DOTS {
			return entries[i].DOTS > entries[j].DOTS
		}
		return entries[i].Name < entries[j].Name
	})
	byName := make(map[string]int, len(entries))
	for i := range entries {
		entries[i].Rank = i + 1
		byName[entries[i].Name] = i
	}

	l.mu.Lock()
	l.entries = entries
	l.byName = byName
	l.updatedAt = time.Now()
	l.mu.Unlock()

	metrics.UpdateLeaderboardSize(len(entries))
	return len(entries)
}

// Rank returns the entry for name.
func (l *Leaderboard) Rank(_ context.Context, name string) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byName[strings.TrimSpace(name)]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return l.entries[i], nil
}

// TopN returns up to n entries in rank order.
func (l *Leaderboard) TopN(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out, nil
}

// Count returns the number of ranked athletes.
func (l *Leaderboard) Count(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// UpdatedAt reports when the ranking was last replaced.
func (l *Leaderboard) UpdatedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.updatedAt
}
