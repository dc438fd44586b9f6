package detect

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// epleyRepsDivisor is the 30 of e1RM = load * (1 + reps/30).
const epleyRepsDivisor = 30

// Epley estimates a one-rep max. ok is false unless load and reps are
// finite and positive.
func Epley(load, reps float64) (float64, bool) {
	if !numeric.IsFinite(load) || !numeric.IsFinite(reps) || load <= 0 || reps <= 0 {
		return 0, false
	}
	return load * (1 + reps/epleyRepsDivisor), true
}

// ISOWeek formats t as the ISO-8601 year-week "YYYY-WW". The year is the
// one owning the week's Thursday, so 2023-01-01 is "2022-52".
func ISOWeek(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-%02d", y, w)
}

// WeekAverage is the mean e1RM of one ISO week.
type WeekAverage struct {
	Week    string
	Average float64
	Sets    int
}

// WeeklyE1RM buckets valid sets by ISO week and averages each bucket. The
// result is ordered chronologically.
func WeeklyE1RM(sets []model.TrainingSet) []WeekAverage {
	buckets := make(map[string][]float64)
	for _, s := range sets {
		e1, ok := Epley(s.Load, s.Reps)
		if !ok || s.Timestamp.IsZero() {
			continue
		}
		key := ISOWeek(s.Timestamp)
		buckets[key] = append(buckets[key], e1)
	}

	out := make([]WeekAverage, 0, len(buckets))
	for week, values := range buckets {
		avg, _ := numeric.Mean(values)
		out = append(out, WeekAverage{Week: week, Average: avg, Sets: len(values)})
	}
	// "YYYY-WW" sorts chronologically as a string.
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}
