package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/ironsys/internal/adapters/table"
	"github.com/okian/ironsys/internal/domain/dedupe"
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
	"github.com/okian/ironsys/pkg/logger"
	"github.com/okian/ironsys/pkg/metrics"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Detect evaluates every registered athlete's training log for stagnation
// and fatigue, appends the new alerts to the log and, when enabled, notifies
// coaches. A delivery failure is returned with a complete summary and
// matches notify.ErrDelivery.
func (s *Service) Detect(ctx context.Context) (Summary, error) {
	r := s.begin(ctx, opDetect, s.tables.Logs)
	err := s.detect(ctx, &r.summary)
	return r.finish(err)
}

func (s *Service) readDetectorTable(ctx context.Context, name string, fields []table.Field) (*table.Table, table.Schema, error) {
	if s.workbook == nil {
		return nil, table.Schema{}, fmt.Errorf("%w: workbook", ErrNotConfigured)
	}
	t, err := s.workbook.Read(ctx, name)
	if err != nil {
		return nil, table.Schema{}, err
	}
	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = strings.TrimSpace(h)
	}
	schema, err := table.Resolve(name, headers, fields...)
	if err != nil {
		return nil, table.Schema{}, err
	}
	return t, schema, nil
}

func (s *Service) loadAthletes(ctx context.Context) ([]model.Athlete, error) {
	t, schema, err := s.readDetectorTable(ctx, s.tables.Athletes, athleteFields())
	if err != nil {
		return nil, err
	}
	out := make([]model.Athlete, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, model.Athlete{
			ID:         strings.TrimSpace(schema.Get(row, fieldAthleteID)),
			Name:       strings.TrimSpace(schema.Get(row, fieldName)),
			CoachEmail: strings.TrimSpace(schema.Get(row, fieldCoach)),
		})
	}
	return out, nil
}

// loadSets parses the training log. Rows without an athlete id or a
// readable timestamp are dropped and counted.
func (s *Service) loadSets(ctx context.Context) ([]model.TrainingSet, int, error) {
	t, schema, err := s.readDetectorTable(ctx, s.tables.Logs, logFields())
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.TrainingSet, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		id := strings.TrimSpace(schema.Get(row, fieldAthleteID))
		ts, ok := parseTimestamp(schema.Get(row, fieldTimestamp))
		if id == "" || !ok {
			skipped++
			continue
		}
		set := model.TrainingSet{
			AthleteID: id,
			Timestamp: ts,
			Lift:      strings.TrimSpace(schema.Get(row, fieldLift)),
		}
		set.Load, _ = numeric.ParseNumber(schema.Get(row, fieldLoad))
		set.Reps, _ = numeric.ParseNumber(schema.Get(row, fieldReps))
		if v, ok := numeric.ParseNumber(schema.Get(row, fieldRPE)); ok {
			set.RPE = &v
		}
		out = append(out, set)
	}
	return out, skipped, nil
}

func (s *Service) detect(ctx context.Context, sum *Summary) error {
	if s.archive == nil {
		return fmt.Errorf("%w: archive", ErrNotConfigured)
	}
	athletes, err := s.loadAthletes(ctx)
	if err != nil {
		return err
	}
	sets, skipped, err := s.loadSets(ctx)
	if err != nil {
		return err
	}
	sum.Rows = len(sets) + skipped
	sum.Skipped = skipped
	sum.Processed = len(athletes)

	alerts := s.detector.Run(athletes, sets)
	for i := range alerts {
		alerts[i].ID = s.newID()
		alerts[i].RunID = sum.RunID
	}

	if s.dedupeAlerts && len(alerts) > 0 {
		keys, err := s.archive.AlertKeys(ctx)
		if err != nil {
			return fmt.Errorf("load alert keys: %w", err)
		}
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
		dedupe.Seed(ctx, d, keys)
		var suppressed int
		alerts, suppressed = dedupe.Filter(ctx, d, alerts)
		sum.Suppressed = suppressed
		metrics.RecordAlertsSuppressed(suppressed)
	}

	n, err := s.archive.AppendAlerts(ctx, alerts)
	if err != nil {
		return fmt.Errorf("append alerts: %w", err)
	}
	sum.Written = n
	for _, a := range alerts {
		metrics.RecordAlert(string(a.Kind))
		s.logger.Debug(ctx, "alert raised",
			logger.String("run_id", sum.RunID),
			logger.String("athlete_id", a.AthleteID),
			logger.String("kind", string(a.Kind)),
			logger.String("value", a.Value),
		)
	}

	if !s.notifyOnDetect || s.dispatcher == nil || len(alerts) == 0 {
		return nil
	}
	res, err := s.dispatcher.Dispatch(ctx, alerts)
	sum.Notified = res.Sent
	sum.Failed = res.Failed
	return err
}

// SetupArchive creates the archive schema and the instructions table. It
// is safe to run repeatedly.
func (s *Service) SetupArchive(ctx context.Context) (Summary, error) {
	r := s.begin(ctx, opSetup, s.tables.Instructions)
	err := s.setupArchive(ctx, &r.summary)
	return r.finish(err)
}

func (s *Service) setupArchive(ctx context.Context, sum *Summary) error {
	if s.archive == nil {
		return fmt.Errorf("%w: archive", ErrNotConfigured)
	}
	if err := s.archive.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	if s.workbook == nil || s.tables.Instructions == "" || s.workbook.Exists(ctx, s.tables.Instructions) {
		return nil
	}
	t := table.New(s.tables.Instructions, "Step", "Command", "Description")
	for i, step := range instructions {
		t.Append(fmt.Sprintf("%d", i+1), step[0], step[1])
	}
	if err := s.workbook.Write(ctx, t); err != nil {
		return fmt.Errorf("write %s: %w", t.Name, err)
	}
	sum.Written = t.Len()
	return nil
}

var instructions = [][2]string{
	{"ironsys score <table>", "Compute totals, progress, ratio, category, DOTS and Wilks"},
	{"ironsys classify <table>", "Fill age and weight classes from Edad and Peso"},
	{"ironsys teams <table>", "Rebuild the team ranking"},
	{"ironsys archive <table> [tournament]", "Append the tournament to the history archive"},
	{"ironsys export", "Write <table>_processed.csv for every tournament table"},
	{"ironsys detect", "Check training logs for stagnation and fatigue"},
	{"ironsys serve", "Serve the leaderboard, teams, alerts and metrics over HTTP"},
}
