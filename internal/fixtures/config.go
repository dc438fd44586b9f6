package fixtures

import "time"

// Config holds the shape of the generated workbook.
type Config struct {
	Dir           string    // workbook directory the tables are written to
	Tournament    string    // name of the tournament table
	AthletesTable string    // name of the athlete register
	LogsTable     string    // name of the training log
	Lifters       int       // rows in the tournament table
	Teams         int       // distinct team names
	Athletes      int       // rows in the athlete register
	Weeks         int       // weeks of training history per athlete
	Seed          int64     // 0 picks a random seed
	End           time.Time // last day of the training history
}

// DefaultConfig returns a small workbook suitable for a demo run.
func DefaultConfig() Config {
	return Config{
		Dir:           "workbook",
		Tournament:    "Open",
		AthletesTable: "DB_Athletes",
		LogsTable:     "DB_Logs",
		Lifters:       40,
		Teams:         6,
		Athletes:      12,
		Weeks:         6,
		End:           time.Now(),
	}
}

// Stats reports what was generated.
type Stats struct {
	Lifters  int
	Bombed   int
	Athletes int
	Sets     int
	Tables   []string
}
