package fixtures_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/okian/ironsys/internal/fixtures"
	"github.com/okian/ironsys/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig(dir string) fixtures.Config {
	return fixtures.Config{
		Dir:      dir,
		Lifters:  25,
		Teams:    4,
		Athletes: 6,
		Weeks:    6,
		Seed:     42,
		End:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTournament(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := testConfig(t.TempDir())
		g := fixtures.NewGenerator(cfg, fixtures.WithLogger(logger.Nop()))
		tbl, bombed := g.Tournament()

		Convey("Then the table has the tournament columns and one row per lifter", func() {
			So(tbl.Name, ShouldEqual, "Open")
			So(tbl.Headers, ShouldContain, "Nombre")
			So(tbl.Headers, ShouldContain, "DL_3")
			So(tbl.Len(), ShouldEqual, 25)
			So(bombed, ShouldBeBetweenOrEqual, 0, 25)
		})

		Convey("Then every attempt cell is blank or a multiple of 2.5", func() {
			first := tbl.Index("SQ_1")
			for r := 0; r < tbl.Len(); r++ {
				for c := first; c < first+9; c++ {
					cell := tbl.Cell(r, c)
					if cell == "" {
						continue
					}
					v, err := strconv.ParseFloat(cell, 64)
					So(err, ShouldBeNil)
					So(int(v*10)%25, ShouldEqual, 0)
				}
			}
		})

		Convey("When the same seed is used again", func() {
			again, _ := fixtures.NewGenerator(cfg, fixtures.WithLogger(logger.Nop())).Tournament()
			So(again.Rows, ShouldResemble, tbl.Rows)
		})
	})
}

func TestTraining(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := testConfig(t.TempDir())
		athletes, logs := fixtures.NewGenerator(cfg, fixtures.WithLogger(logger.Nop())).Training()

		Convey("Then every athlete trains three sets per session", func() {
			So(athletes.Len(), ShouldEqual, 6)
			So(logs.Len()%3, ShouldEqual, 0)
			So(logs.Len(), ShouldBeGreaterThan, 6*cfg.Weeks*3)
		})

		Convey("Then the fatigued athletes log a high RPE in the last two weeks", func() {
			fatigued := athletes.Cell(2, 0)
			cutoff := cfg.End.AddDate(0, 0, -13)
			seen := 0
			for r := 0; r < logs.Len(); r++ {
				if logs.Cell(r, 1) != fatigued {
					continue
				}
				ts, err := time.Parse("2006-01-02 15:04", logs.Cell(r, 0))
				So(err, ShouldBeNil)
				if ts.Before(cutoff) {
					continue
				}
				rpe, err := strconv.ParseFloat(logs.Cell(r, 6), 64)
				So(err, ShouldBeNil)
				So(rpe, ShouldBeGreaterThanOrEqualTo, 8.5)
				seen++
			}
			So(seen, ShouldBeGreaterThan, 0)
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given a workbook directory", t, func() {
		dir := filepath.Join(t.TempDir(), "wb")
		g := fixtures.NewGenerator(testConfig(dir), fixtures.WithLogger(logger.Nop()))

		Convey("When the fixtures are generated", func() {
			stats, err := g.Generate(context.Background())

			Convey("Then the three tables are written", func() {
				So(err, ShouldBeNil)
				So(stats.Tables, ShouldResemble, []string{"Open", "DB_Athletes", "DB_Logs"})
				So(stats.Lifters, ShouldEqual, 25)
				So(stats.Athletes, ShouldEqual, 6)
				for _, name := range stats.Tables {
					_, statErr := os.Stat(filepath.Join(dir, name+".csv"))
					So(statErr, ShouldBeNil)
				}
			})
		})
	})
}
