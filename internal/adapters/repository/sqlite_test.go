package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/ironsys/internal/domain/dedupe"
	"github.com/okian/ironsys/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "ironsys.db"), WithBusyTimeout(time.Second))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_History(t *testing.T) {
	Convey("Given an empty archive", t, func() {
		ctx := context.Background()
		s := openTestStore(t)
		date := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

		Convey("When nothing is appended", func() {
			n, err := s.AppendHistory(ctx, nil)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			totals, err := s.PriorTotals(ctx)
			So(err, ShouldBeNil)
			So(totals, ShouldBeEmpty)
		})

		Convey("When records are appended across tournaments", func() {
			n, err := s.AppendHistory(ctx, []model.HistoricalRecord{
				{Date: date, Tournament: "Open", Name: "Ana", Age: f(24), Bodyweight: f(80), AgeClass: "Open",
					WeightClass: "-83kg", Team: "Lobos", BestSquat: 105, BestBench: 62, BestDeadlift: 150, Total: 317,
					DOTS: f(218.586), Wilks: f(259.667)},
				{Date: date, Tournament: "Open", Name: "Bea", Total: 250},
			})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			_, err = s.AppendHistory(ctx, []model.HistoricalRecord{
				{Date: date.AddDate(0, 1, 0), Tournament: "Spring", Name: "Ana", Total: 330},
			})
			So(err, ShouldBeNil)

			Convey("Then prior totals are grouped by name in insertion order", func() {
				totals, err := s.PriorTotals(ctx)
				So(err, ShouldBeNil)
				So(totals["Ana"], ShouldResemble, []float64{317, 330})
				So(totals["Bea"], ShouldResemble, []float64{250})
			})

			Convey("Then the full record round-trips including missing values", func() {
				recs, err := s.ListHistory(ctx, "Ana")
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].Date.Equal(date), ShouldBeTrue)
				So(*recs[0].Age, ShouldEqual, 24)
				So(*recs[0].DOTS, ShouldEqual, 218.586)
				So(recs[0].WeightClass, ShouldEqual, "-83kg")
				So(recs[1].Age, ShouldBeNil)
				So(recs[1].DOTS, ShouldBeNil)

				all, err := s.ListHistory(ctx, "")
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
			})
		})
	})
}

func TestSQLiteStore_Alerts(t *testing.T) {
	Convey("Given an archive with alerts", t, func() {
		ctx := context.Background()
		s := openTestStore(t)
		date := time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)
		alerts := []model.Alert{
			{ID: "a1", RunID: "r1", Date: date, AthleteID: "A1", Name: "Ana", Kind: model.AlertStagnation,
				Metric: "e1RM_trend_pct", Value: "0.1%", Threshold: "0.5% (expected)", Recommendation: "Deload",
				NotifyTarget: "coach@example.com", Note: "From 2024-02 avg 100.0 to 2024-05 avg 100.1"},
			{ID: "a2", RunID: "r1", Date: date, AthleteID: "A1", Name: "Ana", Kind: model.AlertFatigue,
				Metric: "RPE_delta", Value: "1.5", Threshold: ">1"},
		}

		n, err := s.AppendAlerts(ctx, alerts)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 2)

		Convey("When listing", func() {
			got, err := s.ListAlerts(ctx, 10)
			So(err, ShouldBeNil)

			Convey("Then the newest alert comes first", func() {
				So(got, ShouldHaveLength, 2)
				So(got[0].ID, ShouldEqual, "a2")
				So(got[1].Kind, ShouldEqual, model.AlertStagnation)
				So(got[1].NotifyTarget, ShouldEqual, "coach@example.com")
				So(got[1].Date.Equal(date), ShouldBeTrue)
			})

			Convey("Then the limit is honored and must be positive", func() {
				one, err := s.ListAlerts(ctx, 1)
				So(err, ShouldBeNil)
				So(one, ShouldHaveLength, 1)

				_, err = s.ListAlerts(ctx, 0)
				So(err, ShouldEqual, ErrInvalidLimit)
			})
		})

		Convey("When reading dedupe keys", func() {
			keys, err := s.AlertKeys(ctx)
			So(err, ShouldBeNil)
			So(keys, ShouldResemble, []string{dedupe.AlertKey(alerts[0]), dedupe.AlertKey(alerts[1])})
		})
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	Convey("Given a database file written once", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "ironsys.db")
		s, err := Open(path)
		So(err, ShouldBeNil)
		_, err = s.AppendHistory(ctx, []model.HistoricalRecord{{Date: time.Now().UTC(), Tournament: "T", Name: "Ana", Total: 300}})
		So(err, ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When it is opened again", func() {
			s2, err := Open(path)
			So(err, ShouldBeNil)
			defer s2.Close()

			Convey("Then migrations are idempotent and rows survive", func() {
				totals, err := s2.PriorTotals(ctx)
				So(err, ShouldBeNil)
				So(totals["Ana"], ShouldResemble, []float64{300})
			})
		})
	})
}
