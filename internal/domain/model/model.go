// Package model contains domain models passed between layers.
package model

import "time"

// Sex selects the coefficient set used by the bodyweight-normalized scores.
type Sex string

// Supported sexes. Anything that is not recognizably female resolves to male.
const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// AthleteResult is the row-local view derived from one tournament row on
// every processing run. It is never persisted on its own.
type AthleteResult struct {
	Name         string   `json:"name"`
	Team         string   `json:"team,omitempty"`
	Bodyweight   float64  `json:"bodyweight"`
	Sex          Sex      `json:"sex"`
	BestSquat    float64  `json:"best_squat"`
	BestBench    float64  `json:"best_bench"`
	BestDeadlift float64  `json:"best_deadlift"`
	Bombed       bool     `json:"bombed"`
	Total        float64  `json:"total"`
	Ratio        *float64 `json:"ratio"`    // nil when total or bodyweight is not positive
	Category     string   `json:"category"` // blank when Ratio is nil
	DOTS         *float64 `json:"dots"`
	Wilks        *float64 `json:"wilks"`
}

// HistoricalRecord is one append-only archive entry per athlete per saved
// tournament. Only rows with a positive total are archived.
type HistoricalRecord struct {
	Date         time.Time `json:"date"`
	Tournament   string    `json:"tournament"`
	Name         string    `json:"name"`
	Age          *float64  `json:"age"`
	Bodyweight   *float64  `json:"bodyweight"`
	AgeClass     string    `json:"age_class"`
	WeightClass  string    `json:"weight_class"`
	Team         string    `json:"team"`
	BestSquat    float64   `json:"best_squat"`
	BestBench    float64   `json:"best_bench"`
	BestDeadlift float64   `json:"best_deadlift"`
	Total        float64   `json:"total"`
	DOTS         *float64  `json:"dots"`
	Wilks        *float64  `json:"wilks"`
}

// Athlete is a row of the athlete registry used by the detectors.
type Athlete struct {
	ID         string
	Name       string
	CoachEmail string
}

// TrainingSet is one logged set. Load and Reps are zero when absent; RPE is
// nil when the set carries no perceived-exertion value.
type TrainingSet struct {
	AthleteID string
	Timestamp time.Time
	Lift      string
	Load      float64
	Reps      float64
	RPE       *float64
}

// AlertKind distinguishes the two training-health signals.
type AlertKind string

// Alert kinds.
const (
	AlertStagnation AlertKind = "Stagnation"
	AlertFatigue    AlertKind = "Fatigue"
)

// Alert is one row of the append-only alert log.
type Alert struct {
	ID             string    `json:"id"`
	RunID          string    `json:"run_id"`
	Date           time.Time `json:"date"`
	AthleteID      string    `json:"athlete_id"`
	Name           string    `json:"name"`
	Kind           AlertKind `json:"kind"`
	Metric         string    `json:"metric"`
	Value          string    `json:"value"`
	Threshold      string    `json:"threshold"`
	Recommendation string    `json:"recommendation"`
	NotifyTarget   string    `json:"notify_target"`
	Note           string    `json:"note"`

	// Observed is the raw metric behind Value; it is not part of the log.
	Observed float64 `json:"-"`
}

// TeamStanding is one row of the team ranking.
type TeamStanding struct {
	Rank         int     `json:"rank"`
	Team         string  `json:"team"`
	Lifters      int     `json:"lifters"`
	SumTotal     float64 `json:"sum_total"`
	Attempts     int     `json:"attempts"`
	Failures     int     `json:"failures"`
	AverageTotal float64 `json:"average_total"`
	FailureRate  float64 `json:"failure_rate"` // fraction in [0,1]
	Strategy     string  `json:"strategy"`
}
