package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/ironsys/internal/adapters/table"
	"github.com/okian/ironsys/internal/domain/classify"
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
	"github.com/okian/ironsys/internal/domain/progress"
	"github.com/okian/ironsys/internal/domain/scoring"
	"github.com/okian/ironsys/internal/domain/teams"
	"github.com/okian/ironsys/internal/domain/types"
	"github.com/okian/ironsys/pkg/logger"
	"github.com/okian/ironsys/pkg/metrics"
)

// ProcessedRow is the scored view of one tournament row.
type ProcessedRow struct {
	Row      int // zero-based data row index
	Result   model.AthleteResult
	Progress string
	Squat    scoring.AttemptSet
	Bench    scoring.AttemptSet
	Deadlift scoring.AttemptSet
	// Tones marks each attempt cell, in SQ, BP, DL order.
	Tones [3][3]scoring.Tone
}

func attemptSet(schema table.Schema, row []string, cols [3]string) scoring.AttemptSet {
	return scoring.ParseAttemptSet(schema.Get(row, cols[0]), schema.Get(row, cols[1]), schema.Get(row, cols[2]))
}

// score runs the scoring engine over every row of t. Progress labels are
// filled when history is not nil.
func (s *Service) score(t *table.Table, schema table.Schema, history progress.History) []ProcessedRow {
	out := make([]ProcessedRow, 0, len(t.Rows))
	bombed := 0
	for i, row := range t.Rows {
		bw, _ := numeric.ParseNumber(schema.Get(row, colBodyweight))
		in := scoring.Input{
			Name:       strings.TrimSpace(schema.Get(row, colName)),
			Team:       strings.TrimSpace(schema.Get(row, colTeam)),
			Bodyweight: bw,
			Sex:        schema.Get(row, colSex),
			Squat:      attemptSet(schema, row, squatCols),
			Bench:      attemptSet(schema, row, benchCols),
			Deadlift:   attemptSet(schema, row, deadliftCols),
		}
		res := s.scorer.Score(in)
		if res.Bombed {
			bombed++
		}
		pr := ProcessedRow{
			Row:      i,
			Result:   res,
			Squat:    in.Squat,
			Bench:    in.Bench,
			Deadlift: in.Deadlift,
			Tones:    [3][3]scoring.Tone{scoring.Annotate(in.Squat), scoring.Annotate(in.Bench), scoring.Annotate(in.Deadlift)},
		}
		if history != nil {
			pr.Progress = history.Label(res.Name, res.Total)
		}
		out = append(out, pr)
	}
	metrics.RecordRowsScored(len(out), bombed)
	return out
}

func (s *Service) readTournament(ctx context.Context, name string, fields []table.Field) (*table.Table, table.Schema, error) {
	if err := s.checkTable(name); err != nil {
		return nil, table.Schema{}, err
	}
	t, err := s.workbook.Read(ctx, name)
	if err != nil {
		return nil, table.Schema{}, err
	}
	schema, err := table.Resolve(name, t.Headers, fields...)
	if err != nil {
		return nil, table.Schema{}, err
	}
	return t, schema, nil
}

func (s *Service) history(ctx context.Context) (progress.History, error) {
	h := make(progress.History)
	if s.archive == nil {
		return h, nil
	}
	totals, err := s.archive.PriorTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	for name, values := range totals {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return h, nil
}

// ScoreTable scores a tournament table without writing anything.
func (s *Service) ScoreTable(ctx context.Context, name string) ([]ProcessedRow, error) {
	t, schema, err := s.readTournament(ctx, name, tournamentFields())
	if err != nil {
		return nil, err
	}
	h, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	return s.score(t, schema, h), nil
}

// ProcessTournament scores a tournament table, labels progress against the
// archive, writes the output columns back and refreshes the leaderboard.
func (s *Service) ProcessTournament(ctx context.Context, name string) (Summary, error) {
	r := s.begin(ctx, opProcess, name)
	rows, err := s.processTournament(ctx, name)
	if err == nil {
		s.leaderboard.Replace(ctx, results(rows))
	}
	r.summary.Rows = len(rows)
	r.summary.Processed = len(rows)
	r.summary.Written = len(rows)
	return r.finish(err)
}

func (s *Service) processTournament(ctx context.Context, name string) ([]ProcessedRow, error) {
	t, schema, err := s.readTournament(ctx, name, tournamentFields())
	if err != nil {
		return nil, err
	}
	h, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	rows := s.score(t, schema, h)

	idx := t.EnsureColumns(processedCols...)
	for _, pr := range rows {
		res := pr.Result
		t.Set(pr.Row, idx[0], numeric.Format(res.Total, 3))
		t.Set(pr.Row, idx[1], pr.Progress)
		t.Set(pr.Row, idx[2], optional(res.Ratio, 3))
		t.Set(pr.Row, idx[3], res.Category)
		t.Set(pr.Row, idx[4], optional(res.DOTS, 3))
		t.Set(pr.Row, idx[5], optional(res.Wilks, 3))
	}
	if err := s.workbook.Write(ctx, t); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	return rows, nil
}

func optional(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return numeric.Format(*v, decimals)
}

func results(rows []ProcessedRow) []model.AthleteResult {
	out := make([]model.AthleteResult, len(rows))
	for i, pr := range rows {
		out[i] = pr.Result
	}
	return out
}

// ClassifyTable fills Cat_Edad and Cat_Peso from Edad and Peso.
func (s *Service) ClassifyTable(ctx context.Context, name string) (Summary, error) {
	r := s.begin(ctx, opClassify, name)
	err := s.classifyTable(ctx, name, &r.summary)
	return r.finish(err)
}

func (s *Service) classifyTable(ctx context.Context, name string, sum *Summary) error {
	t, schema, err := s.readTournament(ctx, name, classifyFields())
	if err != nil {
		return err
	}
	idx := t.EnsureColumns(colAgeClass, colWeightClass)
	sum.Rows = t.Len()
	for i, row := range t.Rows {
		ageClass, weightClass := classify.Classes(schema.Get(row, colAge), schema.Get(row, colBodyweight))
		if ageClass == "" && weightClass == "" {
			sum.Skipped++
		} else {
			sum.Processed++
		}
		t.Set(i, idx[0], ageClass)
		t.Set(i, idx[1], weightClass)
	}
	if err := s.workbook.Write(ctx, t); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	sum.Written = t.Len()
	return nil
}

// RankTeams aggregates a tournament table by team and replaces the team
// ranking table.
func (s *Service) RankTeams(ctx context.Context, name string) ([]model.TeamStanding, Summary, error) {
	r := s.begin(ctx, opTeams, name)
	standings, err := s.rankTeams(ctx, name, &r.summary)
	sum, err := r.finish(err)
	return standings, sum, err
}

func (s *Service) rankTeams(ctx context.Context, name string, sum *Summary) ([]model.TeamStanding, error) {
	t, schema, err := s.readTournament(ctx, name, teamFields())
	if err != nil {
		return nil, err
	}
	rows := s.score(t, schema, nil)
	agg := s.newAggregator()
	sum.Rows = len(rows)
	for _, pr := range rows {
		if pr.Result.Team == "" {
			sum.Skipped++
			continue
		}
		sum.Processed++
		agg.Add(pr.Result.Team, pr.Result.Total, pr.Squat, pr.Bench, pr.Deadlift)
	}
	standings := agg.Standings()

	out := table.New(s.tables.TeamRanking, teamRankingCols...)
	for _, st := range standings {
		out.Append(
			fmt.Sprintf("%d", st.Rank),
			st.Team,
			numeric.FormatFixed(st.AverageTotal, 1),
			numeric.FormatFixed(st.FailureRate*100, 1)+"%",
			st.Strategy,
		)
	}
	if err := s.workbook.Write(ctx, out); err != nil {
		return nil, fmt.Errorf("write %s: %w", out.Name, err)
	}
	sum.Written = len(standings)

	s.mu.Lock()
	s.standings = standings
	s.mu.Unlock()
	return standings, nil
}

func (s *Service) newAggregator() *teams.Aggregator {
	return teams.NewAggregator(teams.WithStrategyBounds(s.safeBelow, s.highRiskAbove))
}

// ArchiveTournament appends one history record per athlete with a name and
// a positive total. Tournament defaults to the table name.
func (s *Service) ArchiveTournament(ctx context.Context, name, tournament string) (Summary, error) {
	r := s.begin(ctx, opArchive, name)
	err := s.archiveTournament(ctx, name, tournament, &r.summary)
	return r.finish(err)
}

func (s *Service) archiveTournament(ctx context.Context, name, tournament string, sum *Summary) error {
	if s.archive == nil {
		return fmt.Errorf("%w: archive", ErrNotConfigured)
	}
	t, schema, err := s.readTournament(ctx, name, tournamentFields())
	if err != nil {
		return err
	}
	if strings.TrimSpace(tournament) == "" {
		tournament = name
	}
	rows := s.score(t, schema, nil)
	sum.Rows = len(rows)

	now := s.now()
	records := make([]model.HistoricalRecord, 0, len(rows))
	for _, pr := range rows {
		res := pr.Result
		if res.Name == "" || !numeric.IsFinite(res.Total) || res.Total <= 0 {
			sum.Skipped++
			continue
		}
		row := t.Rows[pr.Row]
		rawAge, rawBW := schema.Get(row, colAge), schema.Get(row, colBodyweight)
		ageClass, weightClass := classify.Classes(rawAge, rawBW)
		if v := strings.TrimSpace(schema.Get(row, colAgeClass)); v != "" {
			ageClass = v
		}
		if v := strings.TrimSpace(schema.Get(row, colWeightClass)); v != "" {
			weightClass = v
		}
		records = append(records, model.HistoricalRecord{
			Date:         now,
			Tournament:   tournament,
			Name:         res.Name,
			Age:          parsed(rawAge),
			Bodyweight:   parsed(rawBW),
			AgeClass:     ageClass,
			WeightClass:  weightClass,
			Team:         res.Team,
			BestSquat:    res.BestSquat,
			BestBench:    res.BestBench,
			BestDeadlift: res.BestDeadlift,
			Total:        res.Total,
			DOTS:         res.DOTS,
			Wilks:        res.Wilks,
		})
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: %s", ErrNoValidRows, name)
	}
	sum.Processed = len(records)

	n, err := s.archive.AppendHistory(ctx, records)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	sum.Written = n
	metrics.RecordHistoryAppended(n)
	return nil
}

func parsed(raw string) *float64 {
	v, ok := numeric.ParseNumber(raw)
	if !ok {
		return nil
	}
	return &v
}

// ExportAll processes every non-reserved table and exports it with the
// best-lift columns appended. Tables that are not tournaments are exported
// as they are.
func (s *Service) ExportAll(ctx context.Context) (Summary, error) {
	r := s.begin(ctx, opExport, "")
	err := s.exportAll(ctx, &r.summary)
	return r.finish(err)
}

func (s *Service) exportAll(ctx context.Context, sum *Summary) error {
	if s.workbook == nil || s.exporter == nil {
		return fmt.Errorf("%w: workbook and exporter", ErrNotConfigured)
	}
	names, err := s.workbook.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if s.IsReserved(name) {
			continue
		}
		if _, err := s.processTournament(ctx, name); err != nil {
			if !errors.Is(err, table.ErrMissingColumns) {
				return err
			}
			sum.Skipped++
			s.logger.Debug(ctx, "exporting table without processing",
				logger.String("table", name), logger.Error(err))
		} else {
			sum.Processed++
		}
		t, err := s.workbook.Read(ctx, name)
		if err != nil {
			return err
		}
		sum.Rows += t.Len()
		headers, rows := withBestLifts(t)
		p, err := s.exporter.Export(ctx, name, headers, rows)
		if err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
		sum.Written++
		sum.Paths = append(sum.Paths, p)
	}
	return nil
}

// withBestLifts returns a copy of t with Best_SQ, Best_BP and Best_DL
// filled, appending the columns when absent.
func withBestLifts(t *table.Table) ([]string, [][]string) {
	c := t.Clone()
	schema, _ := table.Resolve(c.Name, c.Headers, attemptFields(false)...)
	idx := c.EnsureColumns(exportBestCols...)
	for i, row := range c.Rows {
		for j, cols := range [][3]string{squatCols, benchCols, deadliftCols} {
			best := scoring.BestOf(attemptSet(schema, row, cols)).Best
			c.Set(i, idx[j], numeric.Format(best, 3))
		}
	}
	return c.Headers, c.Rows
}

// Dashboard computes the data blocks of a tournament dashboard.
func (s *Service) Dashboard(ctx context.Context, name string) (types.Dashboard, error) {
	r := s.begin(ctx, opDash, name)
	d, err := s.dashboardFor(ctx, name, &r.summary)
	_, err = r.finish(err)
	return d, err
}

func (s *Service) dashboardFor(ctx context.Context, name string, sum *Summary) (types.Dashboard, error) {
	t, schema, err := s.readTournament(ctx, name, tournamentFields())
	if err != nil {
		return types.Dashboard{}, err
	}
	rows := s.score(t, schema, nil)
	sum.Rows, sum.Processed = len(rows), len(rows)
	return types.NewDashboard(name, results(rows)), nil
}
