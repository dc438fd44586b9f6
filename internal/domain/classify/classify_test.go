package classify_test

import (
	"math"
	"testing"

	"github.com/okian/ironsys/internal/domain/classify"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAgeClass(t *testing.T) {
	Convey("Given ages around every bracket bound", t, func() {
		cases := map[float64]string{
			12:   "Sub-Junior",
			17.9: "Sub-Junior",
			18:   "Junior",
			23:   "Junior",
			24:   "Open",
			39:   "Open",
			40:   "Master I",
			49:   "Master I",
			59:   "Master II",
			69:   "Master III",
			70:   "Master IV",
		}
		for age, want := range cases {
			So(classify.AgeClass(age), ShouldEqual, want)
		}
		So(classify.AgeClass(math.NaN()), ShouldEqual, "")
	})
}

func TestWeightClass(t *testing.T) {
	Convey("Given bodyweights around every bracket bound", t, func() {
		So(classify.WeightClass(45), ShouldEqual, "-52kg")
		So(classify.WeightClass(52), ShouldEqual, "-52kg")
		So(classify.WeightClass(52.1), ShouldEqual, "-57kg")
		So(classify.WeightClass(83), ShouldEqual, "-83kg")
		So(classify.WeightClass(104.9), ShouldEqual, "-105kg")
		So(classify.WeightClass(120), ShouldEqual, "-120kg")
		So(classify.WeightClass(120.5), ShouldEqual, "+120kg")
	})
}

func TestClasses(t *testing.T) {
	Convey("Given raw cells", t, func() {
		Convey("When both parse", func() {
			a, w := classify.Classes("25", "82,5")
			So(a, ShouldEqual, "Open")
			So(w, ShouldEqual, "-83kg")
		})

		Convey("When a cell is blank or text", func() {
			a, w := classify.Classes("", "heavy")
			So(a, ShouldEqual, "")
			So(w, ShouldEqual, "")
		})
	})
}
