// Package fixtures generates synthetic workbooks: a tournament table with
// made, missed and bombed attempts, and an athlete register with a training
// log shaped to trip the stagnation and fatigue detectors.
package fixtures

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/okian/ironsys/internal/adapters/table"
	"github.com/okian/ironsys/pkg/logger"
)

// Probabilities of attempt outcomes.
const (
	missChance  = 0.2
	bombChance  = 0.04
	passChance  = 0.05
	noTeam      = 0.1
	noCoachMail = 0.15
)

// Training profiles of generated athletes.
const (
	profileProgressing = iota
	profileStagnating
	profileFatigued
	profileCount
)

var liftNames = []string{"Squat", "Bench Press", "Deadlift"}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for progress messages.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// Generator builds and writes fixture tables.
type Generator struct {
	cfg    Config
	faker  *gofakeit.Faker
	logger logger.Logger
}

// NewGenerator returns a generator for cfg. The same non-zero seed always
// yields the same tables.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	d := DefaultConfig()
	if cfg.Tournament == "" {
		cfg.Tournament = d.Tournament
	}
	if cfg.AthletesTable == "" {
		cfg.AthletesTable = d.AthletesTable
	}
	if cfg.LogsTable == "" {
		cfg.LogsTable = d.LogsTable
	}
	if cfg.Teams <= 0 {
		cfg.Teams = d.Teams
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = d.Weeks
	}
	if cfg.End.IsZero() {
		cfg.End = d.End
	}
	g := &Generator{
		cfg:   cfg,
		faker: gofakeit.New(cfg.Seed),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.Named("fixtures")
	}
	return g
}

// Generate writes every fixture table into the configured workbook.
func (g *Generator) Generate(ctx context.Context) (Stats, error) {
	wb := table.NewWorkbook(g.cfg.Dir)
	var stats Stats

	tables := make([]*table.Table, 0, 3)
	if g.cfg.Lifters > 0 {
		t, bombed := g.Tournament()
		stats.Lifters, stats.Bombed = t.Len(), bombed
		tables = append(tables, t)
	}
	if g.cfg.Athletes > 0 {
		athletes, logs := g.Training()
		stats.Athletes, stats.Sets = athletes.Len(), logs.Len()
		tables = append(tables, athletes, logs)
	}

	for _, t := range tables {
		if err := wb.Write(ctx, t); err != nil {
			return stats, fmt.Errorf("write %s: %w", t.Name, err)
		}
		stats.Tables = append(stats.Tables, t.Name)
		g.logger.Info(ctx, "table written", logger.String("table", t.Name), logger.Int("rows", t.Len()))
	}
	return stats, nil
}

// Tournament builds the meet table and reports how many lifters bombed out
// of at least one discipline.
func (g *Generator) Tournament() (*table.Table, int) {
	t := table.New(g.cfg.Tournament,
		"Nombre", "Sexo", "Edad", "Peso", "Equipo",
		"SQ_1", "SQ_2", "SQ_3", "BP_1", "BP_2", "BP_3", "DL_1", "DL_2", "DL_3",
	)
	teams := g.teamNames()
	bombed := 0

	for i := 0; i < g.cfg.Lifters; i++ {
		sex := g.faker.RandomString([]string{"M", "F"})
		bw, strength := g.faker.Float64Range(59, 120), g.faker.Float64Range(1.2, 2.6)
		if sex == "F" {
			bw, strength = g.faker.Float64Range(47, 90), g.faker.Float64Range(1.0, 2.0)
		}
		bw = math.Round(bw*10) / 10

		team := g.faker.RandomString(teams)
		if g.chance(noTeam) {
			team = ""
		}

		squat := bw * strength
		row := []string{
			g.faker.Name(),
			sex,
			strconv.Itoa(g.faker.Number(15, 62)),
			formatKg(bw),
			team,
		}
		anyBomb := false
		for _, base := range []float64{squat, squat * 0.65, squat * 1.2} {
			attempts, bomb := g.attempts(base)
			anyBomb = anyBomb || bomb
			row = append(row, attempts[:]...)
		}
		if anyBomb {
			bombed++
		}
		t.Append(row...)
	}
	return t, bombed
}

// attempts returns three attempt cells around base. Misses are negative.
func (g *Generator) attempts(base float64) ([3]string, bool) {
	var cells [3]string
	bomb := g.chance(bombChance)
	load := plates(base * 0.9)
	for i := range cells {
		if i == 2 && !bomb && g.chance(passChance) {
			break
		}
		if bomb || g.chance(missChance) {
			cells[i] = formatKg(-load)
		} else {
			cells[i] = formatKg(load)
		}
		load += plates(g.faker.Float64Range(2.5, 10))
	}
	return cells, bomb
}

// Training builds the athlete register and its training log. Athletes cycle
// through progressing, stagnating and fatigued profiles.
func (g *Generator) Training() (*table.Table, *table.Table) {
	athletes := table.New(g.cfg.AthletesTable, "athlete_uuid", "nombre", "coach_email")
	logs := table.New(g.cfg.LogsTable, "timestamp", "athlete_uuid", "exercise", "set", "reps", "load", "rpe")

	end := time.Date(g.cfg.End.Year(), g.cfg.End.Month(), g.cfg.End.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -7*g.cfg.Weeks)

	for i := 0; i < g.cfg.Athletes; i++ {
		id := g.faker.UUID()
		email := g.faker.Email()
		if g.chance(noCoachMail) {
			email = ""
		}
		athletes.Append(id, g.faker.Name(), email)

		profile := i % profileCount
		bases := []float64{
			g.faker.Float64Range(100, 200),
			g.faker.Float64Range(60, 130),
			g.faker.Float64Range(120, 240),
		}
		session := 0
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			switch day.Weekday() {
			case time.Monday, time.Wednesday, time.Friday:
			default:
				continue
			}
			lift := session % len(liftNames)
			session++

			weeks := day.Sub(start).Hours() / (24 * 7)
			load := bases[lift]
			if profile != profileStagnating {
				load *= 1 + 0.02*weeks
			}
			rpe := g.faker.Float64Range(6.5, 8)
			if profile == profileFatigued && end.Sub(day) < 14*24*time.Hour {
				rpe = g.faker.Float64Range(8.5, 10)
			}

			reps := g.faker.Number(3, 5)
			ts := day.Add(time.Duration(g.faker.Number(7, 20)) * time.Hour)
			for set := 1; set <= 3; set++ {
				logs.Append(
					ts.Format("2006-01-02 15:04"),
					id,
					liftNames[lift],
					strconv.Itoa(set),
					strconv.Itoa(reps),
					formatKg(plates(load)),
					strconv.FormatFloat(math.Round(rpe*2)/2, 'f', -1, 64),
				)
			}
		}
	}
	return athletes, logs
}

func (g *Generator) teamNames() []string {
	seen := make(map[string]bool, g.cfg.Teams)
	out := make([]string, 0, g.cfg.Teams)
	for attempts := 0; len(out) < g.cfg.Teams && attempts < g.cfg.Teams*10; attempts++ {
		name := g.faker.City() + " Barbell"
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (g *Generator) chance(p float64) bool {
	return g.faker.Float64Range(0, 1) < p
}

// plates rounds to the nearest 2.5 kg.
func plates(kg float64) float64 {
	return math.Round(kg/2.5) * 2.5
}

func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
