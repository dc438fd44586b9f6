// Package detect derives training-health alerts from set logs: stagnation of
// the weekly e1RM trend and fatigue from rising perceived exertion.
package detect

import (
	"fmt"
	"time"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// Alert texts.
const (
	MetricTrendPct = "e1RM_trend_pct"
	MetricRPEDelta = "RPE_delta"

	ActionStagnation = "Review programming: consider deload or change stimulus"
	ActionFatigue    = "Consider deload week or reduce intensity"
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithConfig sets thresholds and window sizes.
func WithConfig(cfg Config) Option {
	return func(d *Detector) {
		d.cfg = cfg.normalized()
	}
}

// WithClock overrides the time source used for the fatigue windows and
// alert dates.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// Detector evaluates athletes against their logs.
type Detector struct {
	cfg Config
	now func() time.Time
}

// NewDetector creates a detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		cfg: DefaultConfig(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the effective configuration.
func (d *Detector) Config() Config { return d.cfg }

// GroupByAthlete indexes sets by athlete id, skipping sets without an id or
// a timestamp.
func GroupByAthlete(sets []model.TrainingSet) map[string][]model.TrainingSet {
	out := make(map[string][]model.TrainingSet)
	for _, s := range sets {
		if s.AthleteID == "" || s.Timestamp.IsZero() {
			continue
		}
		out[s.AthleteID] = append(out[s.AthleteID], s)
	}
	return out
}

// Run evaluates every athlete with an id and at least one logged set, in
// registry order. Alerts carry no ID or RunID; the caller assigns them.
func (d *Detector) Run(athletes []model.Athlete, sets []model.TrainingSet) []model.Alert {
	now := d.now()
	byAthlete := GroupByAthlete(sets)

	var alerts []model.Alert
	for _, a := range athletes {
		if a.ID == "" {
			continue
		}
		logs := byAthlete[a.ID]
		if len(logs) == 0 {
			continue
		}
		alerts = append(alerts, d.Evaluate(a, logs, now)...)
	}
	return alerts
}

// Evaluate runs both signals for one athlete.
func (d *Detector) Evaluate(a model.Athlete, logs []model.TrainingSet, now time.Time) []model.Alert {
	var out []model.Alert
	target := a.CoachEmail
	if target == "" {
		target = d.cfg.FallbackCoachEmail
	}
	base := model.Alert{
		Date:         now,
		AthleteID:    a.ID,
		Name:         a.Name,
		NotifyTarget: target,
	}

	if t, ok := E1RMTrend(logs, d.cfg.WeeksForTrend); ok && t.Stagnant(d.cfg.StagnationPctThreshold) {
		al := base
		al.Kind = model.AlertStagnation
		al.Metric = MetricTrendPct
		al.Observed = t.PctChange
		al.Value = numeric.Format(t.PctChange, 2) + "%"
		al.Threshold = numeric.Format(d.cfg.StagnationPctThreshold, 6) + "% (expected)"
		al.Recommendation = ActionStagnation
		al.Note = fmt.Sprintf("From %s avg %s to %s avg %s",
			t.First.Week, numeric.Format(t.First.Average, 1),
			t.Last.Week, numeric.Format(t.Last.Average, 1))
		out = append(out, al)
	}

	recent, prior := Windows(logs, now, days(d.cfg.RecentDays), days(d.cfg.PriorDays))
	if dr, ok := CompareRPE(recent, prior, d.cfg.MinObservations); ok && dr.Fatigued(d.cfg.RPEIncreaseThreshold) {
		al := base
		al.Kind = model.AlertFatigue
		al.Metric = MetricRPEDelta
		al.Observed = dr.Delta
		al.Value = numeric.Format(dr.Delta, 2)
		al.Threshold = ">" + numeric.Format(d.cfg.RPEIncreaseThreshold, 6)
		al.Recommendation = ActionFatigue
		al.Note = fmt.Sprintf("AvgPrior %s | AvgRecent %s",
			numeric.Format(dr.AvgPrior, 2), numeric.Format(dr.AvgRecent, 2))
		out = append(out, al)
	}
	return out
}
