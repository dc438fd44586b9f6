package detect

import (
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// Trend is the endpoint comparison of the trailing weekly e1RM averages.
type Trend struct {
	First     WeekAverage
	Last      WeekAverage
	Weeks     int
	PctChange float64
}

// E1RMTrend computes the percentage change between the first and last of
// the trailing weeksForTrend weeks. ok is false with fewer than two weeks
// or when the first week's average is zero.
func E1RMTrend(sets []model.TrainingSet, weeksForTrend int) (Trend, bool) {
	weeks := WeeklyE1RM(sets)
	if weeksForTrend > 0 && len(weeks) > weeksForTrend {
		weeks = weeks[len(weeks)-weeksForTrend:]
	}
	if len(weeks) < 2 {
		return Trend{}, false
	}
	first, last := weeks[0], weeks[len(weeks)-1]
	if first.Average == 0 {
		return Trend{}, false
	}
	pct := (last.Average - first.Average) / first.Average * 100
	if !numeric.IsFinite(pct) {
		return Trend{}, false
	}
	return Trend{First: first, Last: last, Weeks: len(weeks), PctChange: pct}, true
}

// Stagnant reports whether a trend falls below the threshold. Negative
// trends are stagnant too.
func (t Trend) Stagnant(thresholdPct float64) bool {
	return t.PctChange < thresholdPct
}
