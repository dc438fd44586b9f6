package detect

import "time"

// Config holds the detector thresholds. It is passed by value into each
// run so tests can use their own values without shared state.
type Config struct {
	WeeksForTrend          int     // trailing ISO weeks in the e1RM trend
	StagnationPctThreshold float64 // percent; a change below it is stagnation
	RecentDays             int     // fatigue recent window, in days
	PriorDays              int     // fatigue prior window, in days
	RPEIncreaseThreshold   float64 // mean RPE increase that flags fatigue
	MinObservations        int     // RPE values required in each window
	FallbackCoachEmail     string  // used when an athlete has no coach email
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		WeeksForTrend:          4,
		StagnationPctThreshold: 0.5,
		RecentDays:             14,
		PriorDays:              14,
		RPEIncreaseThreshold:   1.0,
		MinObservations:        3,
	}
}

// normalized replaces unusable values with defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.WeeksForTrend < 2 {
		c.WeeksForTrend = d.WeeksForTrend
	}
	if c.RecentDays <= 0 {
		c.RecentDays = d.RecentDays
	}
	if c.PriorDays <= 0 {
		c.PriorDays = d.PriorDays
	}
	if c.MinObservations <= 0 {
		c.MinObservations = d.MinObservations
	}
	return c
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
