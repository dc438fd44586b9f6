package scoring

import (
	"strings"

	"github.com/okian/ironsys/internal/domain/numeric"
)

// Attempt is one attempt cell. A positive value is a made lift, a negative
// value a missed one (magnitude = weight attempted), zero or blank means no
// attempt was taken.
type Attempt struct {
	Value   float64
	Present bool // the cell had any content at all
	Numeric bool // the content parsed as a number
}

// ParseAttempt converts a raw cell into an Attempt.
func ParseAttempt(raw string) Attempt {
	if strings.TrimSpace(raw) == "" {
		return Attempt{}
	}
	v, ok := numeric.ParseNumber(raw)
	return Attempt{Value: v, Present: true, Numeric: ok}
}

// Made reports a successful attempt.
func (a Attempt) Made() bool { return a.Numeric && a.Value > 0 }

// Missed reports a failed attempt.
func (a Attempt) Missed() bool { return a.Numeric && a.Value < 0 }

// AttemptSet holds the three attempts of one discipline.
type AttemptSet [3]Attempt

// ParseAttemptSet builds an AttemptSet from up to three raw cells.
func ParseAttemptSet(cells ...string) AttemptSet {
	var set AttemptSet
	for i := 0; i < len(set) && i < len(cells); i++ {
		set[i] = ParseAttempt(cells[i])
	}
	return set
}

// Attempts builds an AttemptSet from numbers; zero means "no attempt".
func Attempts(values ...float64) AttemptSet {
	var set AttemptSet
	for i := 0; i < len(set) && i < len(values); i++ {
		if values[i] != 0 {
			set[i] = Attempt{Value: values[i], Present: true, Numeric: true}
		}
	}
	return set
}

// Recorded counts non-blank cells.
func (s AttemptSet) Recorded() int {
	n := 0
	for _, a := range s {
		if a.Present {
			n++
		}
	}
	return n
}

// Failures counts missed attempts.
func (s AttemptSet) Failures() int {
	n := 0
	for _, a := range s {
		if a.Missed() {
			n++
		}
	}
	return n
}

// Best is the best-of-three outcome of one discipline.
type Best struct {
	Best       float64
	ValidCount int
	Bombed     bool
}

// BestOf selects the heaviest made attempt. A discipline is bombed when at
// least one cell had content but none was a made lift; three blank cells
// mean the discipline was not contested and are not a bomb-out.
func BestOf(set AttemptSet) Best {
	var b Best
	hasData := false
	for _, a := range set {
		if a.Present {
			hasData = true
		}
		if a.Made() {
			if a.Value > b.Best {
				b.Best = a.Value
			}
			b.ValidCount++
		}
	}
	b.Bombed = hasData && b.ValidCount == 0
	return b
}

// Total sums the three bests. Bombing any discipline zeroes the total.
func Total(sq, bp, dl Best) float64 {
	if sq.Bombed || bp.Bombed || dl.Bombed {
		return 0
	}
	return sq.Best + bp.Best + dl.Best
}
