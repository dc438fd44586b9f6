package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	dedupe "github.com/okian/ironsys/internal/domain/dedupe"
	"github.com/okian/ironsys/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is new", func() {
			seen := d.SeenAndRecord(ctx, "k1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is recorded twice", func() {
			d.SeenAndRecord(ctx, "k1")
			seen := d.SeenAndRecord(ctx, "k1")

			Convey("Then the second call reports it as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}

		Convey("Then the oldest key is evicted first", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})

	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					d.SeenAndRecord(ctx, fmt.Sprintf("g%d-%d", g, i))
				}
			}(g)
		}
		wg.Wait()
		So(d.Size(), ShouldEqual, 800)
	})
}

func TestAlertKeys(t *testing.T) {
	Convey("Given alerts of the same condition", t, func() {
		mon := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
		sun := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
		next := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

		a := model.Alert{AthleteID: "a1", Kind: model.AlertFatigue, Metric: "RPE_delta", Date: mon}
		b := a
		b.Date = sun
		c := a
		c.Date = next

		Convey("Then the key is stable within one ISO week", func() {
			So(dedupe.AlertKey(a), ShouldEqual, "a1|Fatigue|RPE_delta|2024-10")
			So(dedupe.AlertKey(b), ShouldEqual, dedupe.AlertKey(a))
			So(dedupe.AlertKey(c), ShouldNotEqual, dedupe.AlertKey(a))
		})

		Convey("When filtering against keys seeded from the log", func() {
			d := dedupe.NewInMemoryDeduper()
			dedupe.Seed(context.Background(), d, []string{dedupe.AlertKey(a)})
			kept, suppressed := dedupe.Filter(context.Background(), d, []model.Alert{b, c, c})

			Convey("Then repeats are suppressed", func() {
				So(suppressed, ShouldEqual, 2)
				So(len(kept), ShouldEqual, 1)
				So(kept[0].Date, ShouldEqual, next)
			})
		})
	})
}
