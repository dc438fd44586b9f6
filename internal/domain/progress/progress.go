// Package progress compares a current tournament total with the athlete's
// archived totals.
package progress

import (
	"fmt"
	"math"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// Labels that carry no percentage.
const (
	Debut     = "Debut"
	Unchanged = "unchanged"
)

const pctDecimals = 1

// History holds prior totals keyed by the exact athlete name. Names are
// compared byte for byte: two athletes sharing a name share a history.
type History map[string][]float64

// NewHistory indexes archive records, keeping only finite positive totals.
func NewHistory(records []model.HistoricalRecord) History {
	h := make(History)
	for _, r := range records {
		h.Add(r.Name, r.Total)
	}
	return h
}

// Add records one prior total.
func (h History) Add(name string, total float64) {
	if name == "" || !numeric.IsFinite(total) || total <= 0 {
		return
	}
	h[name] = append(h[name], total)
}

// Label describes the athlete's current total against their history.
func (h History) Label(name string, total float64) string {
	return Label(total, h[name])
}

// Delta is the percentage difference of current vs the mean of priors.
// ok is false when there are no priors or their mean is not positive.
func Delta(current float64, priors []float64) (float64, bool) {
	avg, ok := numeric.Mean(priors)
	if !ok || avg <= 0 || !numeric.IsFinite(current) {
		return 0, false
	}
	return (current - avg) / avg * 100, true
}

// Label renders "Debut", "up X%", "down X%" or "unchanged".
func Label(current float64, priors []float64) string {
	pct, ok := Delta(current, priors)
	if !ok {
		return Debut
	}
	switch {
	case pct > 0:
		return fmt.Sprintf("up %s%%", numeric.FormatFixed(pct, pctDecimals))
	case pct < 0:
		return fmt.Sprintf("down %s%%", numeric.FormatFixed(math.Abs(pct), pctDecimals))
	default:
		return Unchanged
	}
}
