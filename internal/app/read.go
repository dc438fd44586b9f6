package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/ironsys/internal/adapters/repository"
	"github.com/okian/ironsys/internal/adapters/table"
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/types"
)

// RefreshLeaderboard rescores name, or every non-reserved table when name
// is empty, and replaces the read model. Nothing is written.
func (s *Service) RefreshLeaderboard(ctx context.Context, name string) (Summary, error) {
	r := s.begin(ctx, opRefresh, name)
	err := s.refresh(ctx, name, &r.summary)
	return r.finish(err)
}

func (s *Service) refresh(ctx context.Context, name string, sum *Summary) error {
	if s.workbook == nil {
		return fmt.Errorf("%w: workbook", ErrNotConfigured)
	}
	names := []string{name}
	if name == "" {
		all, err := s.workbook.List(ctx)
		if err != nil {
			return err
		}
		names = names[:0]
		for _, n := range all {
			if !s.IsReserved(n) {
				names = append(names, n)
			}
		}
	}

	var (
		all      []model.AthleteResult
		combined []ProcessedRow
	)
	for _, n := range names {
		rows, err := s.ScoreTable(ctx, n)
		if err != nil {
			if name == "" && errors.Is(err, table.ErrMissingColumns) {
				sum.Skipped++
				continue
			}
			return err
		}
		sum.Processed++
		combined = append(combined, rows...)
	}
	all = results(combined)
	sum.Rows = len(all)

	agg := s.newAggregator()
	for _, pr := range combined {
		agg.Add(pr.Result.Team, pr.Result.Total, pr.Squat, pr.Bench, pr.Deadlift)
	}
	dashName := name
	if dashName == "" {
		dashName = strings.Join(names, ",")
	}

	sum.Written = s.leaderboard.Replace(ctx, all)
	s.mu.Lock()
	s.standings = agg.Standings()
	s.dashboard = types.NewDashboard(dashName, all)
	s.mu.Unlock()
	return nil
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the leaderboard entry of an athlete.
func (s *Service) Rank(ctx context.Context, name string) (repository.Entry, error) {
	return s.leaderboard.Rank(ctx, name)
}

// Teams returns the last computed team standings.
func (s *Service) Teams(_ context.Context) []model.TeamStanding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TeamStanding(nil), s.standings...)
}

// CurrentDashboard returns the dashboard of the last refresh.
func (s *Service) CurrentDashboard(_ context.Context) types.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dashboard
}

// Alerts returns the newest logged alerts.
func (s *Service) Alerts(ctx context.Context, limit int) ([]model.Alert, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("%w: archive", ErrNotConfigured)
	}
	return s.archive.ListAlerts(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	s.mu.RLock()
	teamCount := len(s.standings)
	dashTable := s.dashboard.Table
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"athletes":      s.leaderboard.Count(ctx),
		"teams":         teamCount,
		"table":         dashTable,
		"dedupeAlerts":  s.dedupeAlerts,
		"notifications": s.notifyOnDetect,
	}
	if t := s.leaderboard.UpdatedAt(); !t.IsZero() {
		stats["refreshedAt"] = t.UTC().Format(time.RFC3339)
	}
	return stats
}
