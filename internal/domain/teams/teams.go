// Package teams aggregates scored athletes by team and ranks the teams.
package teams

import (
	"sort"
	"strings"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/scoring"
)

// Strategy labels.
const (
	StrategyHighRisk = "high-risk"
	StrategySafe     = "safe"
	StrategyBalanced = "balanced"
)

// Default strategy bounds, as failure-rate fractions.
const (
	DefaultHighRiskAbove = 0.30
	DefaultSafeBelow     = 0.10
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithStrategyBounds sets the failure-rate fractions: rate > highRiskAbove
// is high-risk, rate < safeBelow is safe.
func WithStrategyBounds(safeBelow, highRiskAbove float64) Option {
	return func(a *Aggregator) {
		if safeBelow >= 0 && highRiskAbove >= safeBelow {
			a.safeBelow = safeBelow
			a.highRiskAbove = highRiskAbove
		}
	}
}

type guild struct {
	name     string
	lifters  int
	sum      float64
	attempts int
	failures int
}

// Aggregator accumulates one run's athletes. It is not safe for concurrent
// use; build a fresh one per run.
type Aggregator struct {
	safeBelow     float64
	highRiskAbove float64
	order         []*guild
	byName        map[string]*guild
}

// NewAggregator creates an aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		safeBelow:     DefaultSafeBelow,
		highRiskAbove: DefaultHighRiskAbove,
		byName:        make(map[string]*guild),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add records one athlete. Athletes without a team are ignored.
func (a *Aggregator) Add(team string, total float64, sets ...scoring.AttemptSet) {
	team = strings.TrimSpace(team)
	if team == "" {
		return
	}
	g, ok := a.byName[team]
	if !ok {
		g = &guild{name: team}
		a.byName[team] = g
		a.order = append(a.order, g)
	}
	g.lifters++
	g.sum += total
	for _, s := range sets {
		g.attempts += s.Recorded()
		g.failures += s.Failures()
	}
}

// Standings ranks teams by average total, descending. Teams with equal
// averages keep the order in which they were first seen.
func (a *Aggregator) Standings() []model.TeamStanding {
	out := make([]model.TeamStanding, 0, len(a.order))
	for _, g := range a.order {
		st := model.TeamStanding{
			Team:     g.name,
			Lifters:  g.lifters,
			SumTotal: g.sum,
			Attempts: g.attempts,
			Failures: g.failures,
		}
		if g.lifters > 0 {
			st.AverageTotal = g.sum / float64(g.lifters)
		}
		if g.attempts > 0 {
			st.FailureRate = float64(g.failures) / float64(g.attempts)
		}
		st.Strategy = a.Strategy(st.FailureRate)
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageTotal > out[j].AverageTotal
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Strategy labels a failure-rate fraction.
func (a *Aggregator) Strategy(rate float64) string {
	switch {
	case rate > a.highRiskAbove:
		return StrategyHighRisk
	case rate < a.safeBelow:
		return StrategySafe
	default:
		return StrategyBalanced
	}
}
