// Package scoring turns raw attempt rows into per-athlete results: best
// attempts, totals with the bomb-out rule, bodyweight ratio and category,
// and the DOTS and Wilks normalized scores.
package scoring

import (
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// Default scoring configuration constants.
const (
	defaultNoobBelow    = 3.0
	defaultComradeAbove = 5.0
	ratioDecimals       = 3
	scoreDecimals       = 3
)

// Category labels.
const (
	CategoryNoob    = "Noob"
	CategoryAverage = "Average"
	CategoryComrade = "Comrade"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithCategoryBounds overrides the ratio bounds of the category labels:
// ratio < noobBelow is Noob, ratio > comradeAbove is Comrade.
func WithCategoryBounds(noobBelow, comradeAbove float64) Option {
	return func(s *Scorer) {
		if noobBelow > 0 && comradeAbove >= noobBelow {
			s.noobBelow = noobBelow
			s.comradeAbove = comradeAbove
		}
	}
}

// Input is one parsed tournament row.
type Input struct {
	Name       string
	Team       string
	Bodyweight float64 // zero when absent or unparsable
	Sex        string  // raw cell; see ResolveSex
	Squat      AttemptSet
	Bench      AttemptSet
	Deadlift   AttemptSet
}

// Scorer computes AthleteResults. It holds no per-run state and is safe to
// share.
type Scorer struct {
	noobBelow    float64
	comradeAbove float64
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		noobBelow:    defaultNoobBelow,
		comradeAbove: defaultComradeAbove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score derives the result of one row.
func (s *Scorer) Score(in Input) model.AthleteResult {
	sq := BestOf(in.Squat)
	bp := BestOf(in.Bench)
	dl := BestOf(in.Deadlift)

	res := model.AthleteResult{
		Name:         in.Name,
		Team:         in.Team,
		Bodyweight:   in.Bodyweight,
		Sex:          ResolveSex(in.Sex),
		BestSquat:    sq.Best,
		BestBench:    bp.Best,
		BestDeadlift: dl.Best,
		Bombed:       sq.Bombed || bp.Bombed || dl.Bombed,
		Total:        Total(sq, bp, dl),
	}

	if ratio, ok := Ratio(res.Total, res.Bodyweight); ok {
		res.Ratio = &ratio
		res.Category = s.Category(ratio)
	}
	if v, ok := DOTS(res.Total, res.Bodyweight, res.Sex); ok {
		v = numeric.Round(v, scoreDecimals)
		res.DOTS = &v
	}
	if v, ok := Wilks(res.Total, res.Bodyweight, res.Sex); ok {
		v = numeric.Round(v, scoreDecimals)
		res.Wilks = &v
	}
	return res
}

// Category labels a defined ratio using the scorer's bounds.
func (s *Scorer) Category(ratio float64) string {
	switch {
	case ratio < s.noobBelow:
		return CategoryNoob
	case ratio <= s.comradeAbove:
		return CategoryAverage
	default:
		return CategoryComrade
	}
}

// Ratio is total/bodyweight rounded to three decimals, defined only when
// both are positive.
func Ratio(total, bodyweight float64) (float64, bool) {
	if !usable(total, bodyweight) {
		return 0, false
	}
	return numeric.Round(total/bodyweight, ratioDecimals), true
}

// Category labels a ratio with the default bounds.
func Category(ratio float64) string {
	return NewScorer().Category(ratio)
}
