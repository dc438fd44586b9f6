// Package repository persists the tournament archive and the alert log, and
// keeps the in-memory leaderboard served over HTTP.
package repository

import (
	"context"

	"github.com/okian/ironsys/internal/domain/model"
)

// HistoryStore is the append-only tournament archive.
type HistoryStore interface {
	// AppendHistory stores records in one transaction and returns how many
	// were written.
	AppendHistory(ctx context.Context, records []model.HistoricalRecord) (int, error)

	// PriorTotals returns every archived total grouped by athlete name.
	PriorTotals(ctx context.Context) (map[string][]float64, error)

	// ListHistory returns the archive in insertion order. An empty name
	// lists every record.
	ListHistory(ctx context.Context, name string) ([]model.HistoricalRecord, error)
}

// AlertStore is the append-only alert log.
type AlertStore interface {
	AppendAlerts(ctx context.Context, alerts []model.Alert) (int, error)

	// ListAlerts returns the newest alerts first, at most limit of them.
	ListAlerts(ctx context.Context, limit int) ([]model.Alert, error)

	// AlertKeys returns the dedupe key of every stored alert.
	AlertKeys(ctx context.Context) ([]string, error)
}

// Archive is the combined persistence used by the batch operations.
type Archive interface {
	HistoryStore
	AlertStore
	Migrate(ctx context.Context) error
	Close() error
}

// Entry represents a leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Team     string  `json:"team,omitempty"`
	Total    float64 `json:"total"`
	DOTS     float64 `json:"dots"`
	Wilks    float64 `json:"wilks,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Ranking provides read access to the current leaderboard.
type Ranking interface {
	// Rank returns the current rank and score for an athlete.
	// Returns ErrNotFound if the athlete is unknown.
	Rank(ctx context.Context, name string) (Entry, error)

	// TopN returns the top-N entries ordered by DOTS desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of athletes on the leaderboard.
	Count(ctx context.Context) int
}
