// Package config defines the ironsys configuration and its defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Notification drivers.
const (
	DriverLog   = "log"
	DriverSMTP  = "smtp"
	DriverKafka = "kafka"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFile, when set, receives a rotating copy of the log.
	LogFile string `koanf:"log_file"`
	// LogJSON switches the log format to JSON.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address of the serve command.
	Addr string `koanf:"addr"`

	// WorkbookDir is the directory holding one CSV file per table.
	WorkbookDir string `koanf:"workbook_dir"`
	// WorkbookDelimiter is the single-character CSV field separator.
	WorkbookDelimiter string `koanf:"workbook_delimiter"`
	// ExportDir receives <table>_processed.csv files.
	ExportDir string `koanf:"export_dir"`
	// DBPath is the SQLite file holding the history archive and alert log.
	DBPath string `koanf:"db_path"`

	Tables Tables `koanf:"tables"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit and /alerts?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
	// RefreshInterval is how often serve rescores the tournament table.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	Scoring Scoring `koanf:"scoring"`
	Teams   Teams   `koanf:"teams"`
	Detect  Detect  `koanf:"detect"`
	Notify  Notify  `koanf:"notify"`
}

// Tables names the workbook tables with a fixed role.
type Tables struct {
	// Tournament is the table served by the read API.
	Tournament   string `koanf:"tournament"`
	History      string `koanf:"history"`
	TeamRanking  string `koanf:"team_ranking"`
	Instructions string `koanf:"instructions"`
	Athletes     string `koanf:"athletes"`
	Logs         string `koanf:"logs"`
}

// Reserved lists the tables that are never processed as tournaments.
func (t Tables) Reserved() []string {
	out := make([]string, 0, 5)
	for _, n := range []string{t.History, t.TeamRanking, t.Instructions, t.Athletes, t.Logs} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Scoring configures the category bounds of the bodyweight ratio.
type Scoring struct {
	NoobBelow    float64 `koanf:"noob_below"`
	ComradeAbove float64 `koanf:"comrade_above"`
}

// Teams configures the strategy bounds, as failure-rate fractions.
type Teams struct {
	SafeBelow     float64 `koanf:"safe_below"`
	HighRiskAbove float64 `koanf:"high_risk_above"`
}

// Detect configures the stagnation and fatigue detectors.
type Detect struct {
	WeeksForTrend          int     `koanf:"weeks_for_trend"`
	StagnationPctThreshold float64 `koanf:"stagnation_pct_threshold"`
	RecentDays             int     `koanf:"recent_days"`
	PriorDays              int     `koanf:"prior_days"`
	RPEIncreaseThreshold   float64 `koanf:"rpe_increase_threshold"`
	MinObservations        int     `koanf:"min_observations"`
	NotifyByEmail          bool    `koanf:"notify_by_email"`
	CoachEmailFallback     string  `koanf:"coach_email_fallback"`
	// DedupeAlerts suppresses an alert already logged for the same athlete,
	// kind and metric in the same ISO week.
	DedupeAlerts bool `koanf:"dedupe_alerts"`
	DedupeSize   int  `koanf:"dedupe_size"`
}

// Notify selects and configures the alert notification driver.
type Notify struct {
	Driver string `koanf:"driver"`
	SMTP   SMTP   `koanf:"smtp"`
	Kafka  Kafka  `koanf:"kafka"`
}

// SMTP holds mail relay settings.
type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	From     string `koanf:"from"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Kafka holds the alert topic settings.
type Kafka struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		WorkbookDir:       "workbook",
		WorkbookDelimiter: ",",
		ExportDir:         "Processed_Tournaments",
		DBPath:            "ironsys.db",
		Tables: Tables{
			History:      "HISTORIAL",
			TeamRanking:  "Guerra de Clanes",
			Instructions: "INSTRUCCIONES",
			Athletes:     "DB_Athletes",
			Logs:         "DB_Logs",
		},
		MaxLeaderboardLimit: 100,
		RefreshInterval:     30 * time.Second,
		Scoring: Scoring{
			NoobBelow:    3,
			ComradeAbove: 5,
		},
		Teams: Teams{
			SafeBelow:     0.10,
			HighRiskAbove: 0.30,
		},
		Detect: Detect{
			WeeksForTrend:          4,
			StagnationPctThreshold: 0.5,
			RecentDays:             14,
			PriorDays:              14,
			RPEIncreaseThreshold:   1.0,
			MinObservations:        3,
			DedupeSize:             50_000,
		},
		Notify: Notify{
			Driver: DriverLog,
			SMTP:   SMTP{Port: 587},
			Kafka:  Kafka{Topic: "ironsys.alerts"},
		},
	}
}

// Delimiter returns the workbook field separator, ',' when unset.
func (c *Config) Delimiter() rune {
	if d := []rune(c.WorkbookDelimiter); len(d) == 1 {
		return d[0]
	}
	return ','
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.WorkbookDir == "" {
		problems = append(problems, "workbook_dir must not be empty")
	}
	if d := []rune(c.WorkbookDelimiter); len(d) != 1 || strings.ContainsRune("\"\r\n", d[0]) {
		problems = append(problems, "workbook_delimiter must be one character other than a quote or newline")
	}
	if c.DBPath == "" {
		problems = append(problems, "db_path must not be empty")
	}
	if c.Scoring.NoobBelow <= 0 || c.Scoring.ComradeAbove < c.Scoring.NoobBelow {
		problems = append(problems, "scoring bounds must satisfy 0 < noob_below <= comrade_above")
	}
	if c.Teams.SafeBelow < 0 || c.Teams.HighRiskAbove < c.Teams.SafeBelow {
		problems = append(problems, "teams bounds must satisfy 0 <= safe_below <= high_risk_above")
	}
	if c.Detect.WeeksForTrend < 2 {
		problems = append(problems, "detect.weeks_for_trend must be at least 2")
	}
	if c.Detect.RecentDays <= 0 || c.Detect.PriorDays <= 0 {
		problems = append(problems, "detect windows must be positive")
	}
	if c.Detect.MinObservations <= 0 {
		problems = append(problems, "detect.min_observations must be positive")
	}
	switch strings.ToLower(c.Notify.Driver) {
	case DriverLog:
	case DriverSMTP:
		if c.Notify.SMTP.Host == "" || c.Notify.SMTP.From == "" {
			problems = append(problems, "notify.smtp needs host and from")
		}
	case DriverKafka:
		if len(c.Notify.Kafka.Brokers) == 0 || c.Notify.Kafka.Topic == "" {
			problems = append(problems, "notify.kafka needs brokers and topic")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown notify.driver %q", c.Notify.Driver))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
