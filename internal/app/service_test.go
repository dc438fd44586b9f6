package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/ironsys/internal/adapters/notify"
	"github.com/okian/ironsys/internal/adapters/repository"
	"github.com/okian/ironsys/internal/adapters/table"
	service "github.com/okian/ironsys/internal/app"
	"github.com/okian/ironsys/internal/config"
	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/types"
	"github.com/okian/ironsys/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var tournamentHeaders = []string{
	"Nombre", "Edad", "Peso", "Sexo", "Equipo",
	"SQ_1", "SQ_2", "SQ_3", "BP_1", "BP_2", "BP_3", "DL_1", "DL_2", "DL_3",
}

type fakeDispatcher struct {
	got []model.Alert
	err error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, alerts []model.Alert) (notify.Result, error) {
	f.got = append(f.got, alerts...)
	if f.err != nil {
		return notify.Result{Failed: len(alerts)}, f.err
	}
	return notify.Result{Sent: len(alerts)}, nil
}

type fixture struct {
	dir      string
	wb       *table.Workbook
	store    *repository.SQLiteStore
	svc      *service.Service
	dispatch *fakeDispatcher
}

func newFixture(t *testing.T, opts ...service.Option) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := repository.Open(filepath.Join(dir, "ironsys.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	f := &fixture{
		dir:      dir,
		wb:       table.NewWorkbook(filepath.Join(dir, "workbook")),
		store:    store,
		dispatch: &fakeDispatcher{},
	}
	base := []service.Option{
		service.WithWorkbook(f.wb),
		service.WithExporter(table.NewExporter(filepath.Join(dir, "export"))),
		service.WithArchive(store),
		service.WithTables(config.New().Tables),
		service.WithLogger(logger.Nop()),
		service.WithClock(func() time.Time { return time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC) }),
	}
	f.svc = service.New(append(base, opts...)...)
	t.Cleanup(func() { _ = f.svc.Close() })
	return f
}

func (f *fixture) put(t *testing.T, name string, headers []string, rows ...[]string) {
	t.Helper()
	tb := table.New(name, headers...)
	for _, r := range rows {
		tb.Append(r...)
	}
	if err := f.wb.Write(context.Background(), tb); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func (f *fixture) putTournament(t *testing.T) {
	f.put(t, "Open", tournamentHeaders,
		[]string{"Leo", "24", "80", "M", "Lobos", "100", "-105", "105", "60", "62", "-65", "140", "145", "150"},
		[]string{"Bea", "30", "60", "F", "Lobos", "-80", "-80", "-80", "50", "52.5", "", "120", "", ""},
		[]string{"Cai", "45", "", "M", "", "100", "", "", "70", "", "", "150", "", ""},
	)
}

func column(t *table.Table, header string) []string {
	i := t.Index(header)
	out := make([]string, len(t.Rows))
	for r := range t.Rows {
		out[r] = t.Cell(r, i)
	}
	return out
}

func TestService_ProcessTournament(t *testing.T) {
	Convey("Given a tournament table", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.putTournament(t)

		Convey("When it is processed", func() {
			sum, err := f.svc.ProcessTournament(ctx, "Open")
			So(err, ShouldBeNil)
			So(sum.Rows, ShouldEqual, 3)
			So(sum.RunID, ShouldNotBeEmpty)

			out, err := f.wb.Read(ctx, "Open")
			So(err, ShouldBeNil)

			Convey("Then the output columns are appended after the inputs", func() {
				So(out.Headers[:len(tournamentHeaders)], ShouldResemble, tournamentHeaders)
				So(out.Headers[len(tournamentHeaders):], ShouldResemble,
					[]string{"TOTAL (kg)", "Progreso", "Ratio", "Category", "DOTS", "Wilks"})
			})

			Convey("Then each row carries its derived metrics", func() {
				So(column(out, "TOTAL (kg)"), ShouldResemble, []string{"317", "0", "320"})
				So(column(out, "Progreso"), ShouldResemble, []string{"Debut", "Debut", "Debut"})
				So(column(out, "Ratio"), ShouldResemble, []string{"3.963", "", ""})
				So(column(out, "Category"), ShouldResemble, []string{"Average", "", ""})
				So(column(out, "DOTS"), ShouldResemble, []string{"218.586", "", ""})
				So(column(out, "Wilks"), ShouldResemble, []string{"259.667", "", ""})
			})

			Convey("Then the leaderboard holds the athletes with a DOTS score", func() {
				entries, err := f.svc.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Name, ShouldEqual, "Leo")
			})

			Convey("Then processing again keeps the same columns", func() {
				_, err := f.svc.ProcessTournament(ctx, "Open")
				So(err, ShouldBeNil)
				again, _ := f.wb.Read(ctx, "Open")
				So(again.Headers, ShouldResemble, out.Headers)
			})
		})

		Convey("When the tournament was archived before", func() {
			_, err := f.svc.ArchiveTournament(ctx, "Open", "Winter Open")
			So(err, ShouldBeNil)
			_, err = f.svc.ProcessTournament(ctx, "Open")
			So(err, ShouldBeNil)

			Convey("Then progress compares against the archive", func() {
				out, _ := f.wb.Read(ctx, "Open")
				So(column(out, "Progreso"), ShouldResemble, []string{"unchanged", "Debut", "unchanged"})
			})
		})
	})
}

func TestService_Errors(t *testing.T) {
	Convey("Given tables that cannot be processed", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.put(t, "Broken", []string{"Nombre", "Peso"}, []string{"Leo", "80"})
		f.put(t, "DB_Logs", []string{"Timestamp"})

		Convey("When a required column is missing", func() {
			_, err := f.svc.ProcessTournament(ctx, "Broken")

			Convey("Then the run aborts with a schema error and writes nothing", func() {
				So(errors.Is(err, table.ErrMissingColumns), ShouldBeTrue)
				var se *table.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldContain, "SQ_1")
				tb, _ := f.wb.Read(ctx, "Broken")
				So(tb.Headers, ShouldResemble, []string{"Nombre", "Peso"})
			})
		})

		Convey("When the table is reserved", func() {
			_, err := f.svc.ProcessTournament(ctx, "DB_Logs")
			So(errors.Is(err, service.ErrReservedTable), ShouldBeTrue)
		})

		Convey("When the table does not exist", func() {
			_, err := f.svc.ProcessTournament(ctx, "Nope")
			So(errors.Is(err, table.ErrTableNotFound), ShouldBeTrue)
		})
	})
}

func TestService_ClassifyTable(t *testing.T) {
	Convey("Given a tournament table with ages and weights", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.putTournament(t)

		sum, err := f.svc.ClassifyTable(ctx, "Open")
		So(err, ShouldBeNil)
		So(sum.Processed, ShouldEqual, 3)

		Convey("Then age and weight classes are filled", func() {
			out, _ := f.wb.Read(ctx, "Open")
			So(column(out, "Cat_Edad"), ShouldResemble, []string{"Open", "Open", "Master I"})
			So(column(out, "Cat_Peso"), ShouldResemble, []string{"-83kg", "-63kg", ""})
		})
	})
}

func TestService_RankTeams(t *testing.T) {
	Convey("Given a tournament table with teams", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.putTournament(t)
		f.put(t, "Guerra de Clanes", []string{"old"}, []string{"stale"})

		standings, sum, err := f.svc.RankTeams(ctx, "Open")
		So(err, ShouldBeNil)
		So(sum.Skipped, ShouldEqual, 1)

		Convey("Then athletes without a team are left out", func() {
			So(standings, ShouldHaveLength, 1)
			So(standings[0].Team, ShouldEqual, "Lobos")
			So(standings[0].Attempts, ShouldEqual, 15)
			So(standings[0].Failures, ShouldEqual, 5)
		})

		Convey("Then the ranking table is fully replaced", func() {
			out, err := f.wb.Read(ctx, "Guerra de Clanes")
			So(err, ShouldBeNil)
			So(out.Headers, ShouldResemble, []string{"Ranking", "Equipo / Gremio", "Total Promedio", "Tasa Fallos", "Estrategia"})
			So(out.Rows, ShouldResemble, [][]string{{"1", "Lobos", "158.5", "33.3%", "high-risk"}})
		})

		Convey("Then the standings are served", func() {
			So(f.svc.Teams(ctx), ShouldResemble, standings)
		})
	})
}

func TestService_ArchiveTournament(t *testing.T) {
	Convey("Given a tournament table", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.putTournament(t)

		Convey("When it is archived without a tournament name", func() {
			sum, err := f.svc.ArchiveTournament(ctx, "Open", "")
			So(err, ShouldBeNil)

			Convey("Then only named athletes with a positive total are kept", func() {
				So(sum.Written, ShouldEqual, 2)
				So(sum.Skipped, ShouldEqual, 1)
				recs, err := f.store.ListHistory(ctx, "")
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].Tournament, ShouldEqual, "Open")
				So(recs[0].AgeClass, ShouldEqual, "Open")
				So(recs[0].WeightClass, ShouldEqual, "-83kg")
				So(*recs[0].DOTS, ShouldEqual, 218.586)
				So(recs[1].Name, ShouldEqual, "Cai")
				So(recs[1].Bodyweight, ShouldBeNil)
				So(recs[1].DOTS, ShouldBeNil)
			})
		})

		Convey("When no row has a positive total", func() {
			f.put(t, "Bombed", tournamentHeaders,
				[]string{"Bea", "30", "60", "F", "Lobos", "-80", "-80", "-80", "50", "", "", "120", "", ""})
			_, err := f.svc.ArchiveTournament(ctx, "Bombed", "x")

			Convey("Then nothing is written", func() {
				So(errors.Is(err, service.ErrNoValidRows), ShouldBeTrue)
				recs, _ := f.store.ListHistory(ctx, "")
				So(recs, ShouldBeEmpty)
			})
		})
	})
}

func TestService_ExportAll(t *testing.T) {
	Convey("Given a workbook with a tournament, a note and reserved tables", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.putTournament(t)
		f.put(t, "Notes", []string{"text"}, []string{"hello, world"})
		f.put(t, "DB_Logs", []string{"Timestamp"})

		sum, err := f.svc.ExportAll(ctx)
		So(err, ShouldBeNil)

		Convey("Then every non-reserved table is exported once", func() {
			So(sum.Written, ShouldEqual, 2)
			So(sum.Processed, ShouldEqual, 1)
			So(sum.Skipped, ShouldEqual, 1)
			_, err := os.Stat(filepath.Join(f.dir, "export", "DB_Logs_processed.csv"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("Then the tournament export has totals and best lifts", func() {
			data, err := os.ReadFile(filepath.Join(f.dir, "export", "Open_processed.csv"))
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			So(lines[0], ShouldEndWith, "TOTAL (kg),Progreso,Ratio,Category,DOTS,Wilks,Best_SQ,Best_BP,Best_DL")
			So(lines[1], ShouldEndWith, ",317,Debut,3.963,Average,218.586,259.667,105,62,150")
		})

		Convey("Then cells with commas are quoted", func() {
			data, _ := os.ReadFile(filepath.Join(f.dir, "export", "Notes_processed.csv"))
			So(string(data), ShouldContainSubstring, `"hello, world",0,0,0`)
		})
	})
}

func TestService_Detect(t *testing.T) {
	Convey("Given athletes and training logs", t, func() {
		ctx := context.Background()
		disp := &fakeDispatcher{}
		f := newFixture(t, service.WithDispatcher(disp), service.WithAlertDedupe(0))
		f.put(t, "DB_Athletes", []string{"UUID", "Nombre", "CoachEmail"},
			[]string{"A1", "Ana", "coach@example.com"},
			[]string{"A2", "Bo", ""},
		)
		f.put(t, "DB_Logs", []string{"Timestamp", "Athlete_UUID", "Exercise", "Reps", "Load", "RPE"},
			[]string{"2024-01-29", "A1", "squat", "5", "100", "7"},
			[]string{"2024-01-30", "A1", "squat", "5", "100", "7"},
			[]string{"2024-02-05", "A1", "squat", "5", "100", "7"},
			[]string{"2024-02-12", "A1", "squat", "5", "100", "8.5"},
			[]string{"2024-02-13", "A1", "squat", "5", "100", "8.5"},
			[]string{"2024-02-19 18:30:00", "A1", "squat", "5", "100", "8.5"},
			[]string{"", "A1", "squat", "5", "100", "9"},
		)

		Convey("When detection runs", func() {
			sum, err := f.svc.Detect(ctx)
			So(err, ShouldBeNil)

			Convey("Then both signals are logged for the athlete", func() {
				So(sum.Skipped, ShouldEqual, 1)
				So(sum.Written, ShouldEqual, 2)
				alerts, err := f.svc.Alerts(ctx, 10)
				So(err, ShouldBeNil)
				So(alerts, ShouldHaveLength, 2)
				So(alerts[1].Kind, ShouldEqual, model.AlertStagnation)
				So(alerts[1].Value, ShouldEqual, "0%")
				So(alerts[1].RunID, ShouldEqual, sum.RunID)
				So(alerts[0].Kind, ShouldEqual, model.AlertFatigue)
				So(alerts[0].Value, ShouldEqual, "1.5")
				So(alerts[0].Note, ShouldEqual, "AvgPrior 7 | AvgRecent 8.5")
			})

			Convey("Then the coach is notified", func() {
				So(sum.Notified, ShouldEqual, 2)
				So(disp.got, ShouldHaveLength, 2)
				So(disp.got[0].NotifyTarget, ShouldEqual, "coach@example.com")
			})

			Convey("Then a second run in the same week is suppressed", func() {
				again, err := f.svc.Detect(ctx)
				So(err, ShouldBeNil)
				So(again.Suppressed, ShouldEqual, 2)
				So(again.Written, ShouldEqual, 0)
			})
		})

		Convey("When delivery fails", func() {
			disp.err = notify.ErrDelivery
			sum, err := f.svc.Detect(ctx)

			Convey("Then the alerts are still logged and the error is reported", func() {
				So(errors.Is(err, notify.ErrDelivery), ShouldBeTrue)
				So(sum.Written, ShouldEqual, 2)
				So(sum.Failed, ShouldEqual, 2)
			})
		})

		Convey("When the training log is missing", func() {
			_ = os.Remove(filepath.Join(f.dir, "workbook", "DB_Logs.csv"))
			_, err := f.svc.Detect(ctx)
			So(errors.Is(err, table.ErrTableNotFound), ShouldBeTrue)
		})
	})
}

func TestService_SetupAndRefresh(t *testing.T) {
	Convey("Given a fresh workbook", t, func() {
		ctx := context.Background()
		f := newFixture(t)

		Convey("When the archive is set up twice", func() {
			_, err := f.svc.SetupArchive(ctx)
			So(err, ShouldBeNil)
			_, err = f.svc.SetupArchive(ctx)
			So(err, ShouldBeNil)

			Convey("Then the instructions table exists and is reserved", func() {
				So(f.wb.Exists(ctx, "INSTRUCCIONES"), ShouldBeTrue)
				So(f.svc.IsReserved("INSTRUCCIONES"), ShouldBeTrue)
			})
		})

		Convey("When the read model is refreshed from every table", func() {
			f.putTournament(t)
			f.put(t, "Notes", []string{"text"}, []string{"x"})
			sum, err := f.svc.RefreshLeaderboard(ctx, "")
			So(err, ShouldBeNil)

			Convey("Then non-tournament tables are skipped and nothing is written", func() {
				So(sum.Skipped, ShouldEqual, 1)
				So(sum.Rows, ShouldEqual, 3)
				out, _ := f.wb.Read(ctx, "Open")
				So(out.Index("TOTAL (kg)"), ShouldEqual, -1)
			})

			Convey("Then rank, teams and dashboard are available", func() {
				e, err := f.svc.Rank(ctx, "Leo")
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, 1)
				So(f.svc.Teams(ctx), ShouldHaveLength, 1)
				d := f.svc.CurrentDashboard(ctx)
				So(d.TopTotals[0].Name, ShouldEqual, "Cai")
				So(f.svc.GetStats()["athletes"], ShouldEqual, 1)
			})
		})
	})
}

func TestService_Dashboard(t *testing.T) {
	Convey("Given a tournament table", t, func() {
		ctx := context.Background()
		f := newFixture(t)
		f.putTournament(t)

		Convey("When its dashboard is built", func() {
			d, err := f.svc.Dashboard(ctx, "Open")
			So(err, ShouldBeNil)

			Convey("Then totals, categories and team averages are filled", func() {
				So(d.Table, ShouldEqual, "Open")
				So(d.TopTotals[0].Name, ShouldEqual, "Cai")
				So(d.TopTotals[1].Name, ShouldEqual, "Leo")
				So(d.Categories, ShouldResemble, []types.CategoryCount{
					{Category: "Average", Count: 1},
					{Category: types.Unclassified, Count: 2},
				})
				So(d.TeamAverages[0].Team, ShouldEqual, types.NoTeam)
				So(d.TeamAverages[1].Average, ShouldEqual, 158.5)
			})

			Convey("Then nothing is written back", func() {
				out, _ := f.wb.Read(ctx, "Open")
				So(out.Index("TOTAL (kg)"), ShouldEqual, -1)
			})
		})
	})
}

func TestSummary_String(t *testing.T) {
	Convey("Given a summary", t, func() {
		s := service.Summary{RunID: "r1", Operation: "detect", Table: "DB_Logs", Rows: 7, Processed: 2, Skipped: 1, Written: 2, Suppressed: 1}
		So(s.String(), ShouldStartWith, `detect "DB_Logs": 7 rows, 2 processed, 1 skipped, 2 written, 1 suppressed (run r1`)
	})
}
