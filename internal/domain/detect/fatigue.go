package detect

import (
	"time"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// Drift compares mean RPE of two adjacent windows.
type Drift struct {
	AvgPrior  float64
	AvgRecent float64
	Delta     float64
	Prior     int
	Recent    int
}

// Windows splits RPE values into the recent window [now-recent, ∞) and the
// prior window [now-recent-prior, now-recent).
func Windows(sets []model.TrainingSet, now time.Time, recent, prior time.Duration) (recentRPE, priorRPE []float64) {
	recentStart := now.Add(-recent)
	priorStart := recentStart.Add(-prior)
	for _, s := range sets {
		if s.RPE == nil || !numeric.IsFinite(*s.RPE) {
			continue
		}
		switch {
		case !s.Timestamp.Before(recentStart):
			recentRPE = append(recentRPE, *s.RPE)
		case !s.Timestamp.Before(priorStart):
			priorRPE = append(priorRPE, *s.RPE)
		}
	}
	return recentRPE, priorRPE
}

// CompareRPE evaluates the drift between two windows. ok is false when
// either window has fewer than minObservations values.
func CompareRPE(recent, prior []float64, minObservations int) (Drift, bool) {
	if len(recent) < minObservations || len(prior) < minObservations {
		return Drift{}, false
	}
	r, okR := numeric.Mean(recent)
	p, okP := numeric.Mean(prior)
	if !okR || !okP {
		return Drift{}, false
	}
	return Drift{AvgPrior: p, AvgRecent: r, Delta: r - p, Prior: len(prior), Recent: len(recent)}, true
}

// Fatigued reports whether the drift reaches the threshold.
func (d Drift) Fatigued(threshold float64) bool {
	return d.Delta >= threshold
}
