package numeric_test

import (
	"math"
	"testing"

	"github.com/okian/ironsys/internal/domain/numeric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseNumber(t *testing.T) {
	Convey("Given raw cell values", t, func() {
		Convey("When the cell is blank", func() {
			_, ok := numeric.ParseNumber("   ")

			Convey("Then it is absent", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the cell holds a signed number", func() {
			n, ok := numeric.ParseNumber(" -105 ")

			Convey("Then it parses", func() {
				So(ok, ShouldBeTrue)
				So(n, ShouldEqual, -105)
			})
		})

		Convey("When the cell uses a decimal comma", func() {
			n, ok := numeric.ParseNumber("82,5")

			Convey("Then it parses as a decimal", func() {
				So(ok, ShouldBeTrue)
				So(n, ShouldEqual, 82.5)
			})
		})

		Convey("When the comma is a thousands separator", func() {
			_, okThousands := numeric.ParseNumber("1,234")
			_, okTrailing := numeric.ParseNumber("82,")
			n, ok := numeric.ParseNumber("-102,25")

			Convey("Then only one or two digits after the comma read as decimals", func() {
				So(okThousands, ShouldBeFalse)
				So(okTrailing, ShouldBeFalse)
				So(ok, ShouldBeTrue)
				So(n, ShouldEqual, -102.25)
			})
		})

		Convey("When the cell is text or non-finite", func() {
			_, okText := numeric.ParseNumber("DNS")
			_, okInf := numeric.ParseNumber("Inf")
			_, okNaN := numeric.ParseNumber("NaN")

			Convey("Then it is absent", func() {
				So(okText, ShouldBeFalse)
				So(okInf, ShouldBeFalse)
				So(okNaN, ShouldBeFalse)
			})
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given values to round", t, func() {
		So(numeric.Round(317.0/80.0, 3), ShouldEqual, 3.963)
		So(numeric.Round(116.666666, 3), ShouldEqual, 116.667)
		So(numeric.Round(-2.5, 0), ShouldEqual, -3)
		So(math.IsNaN(numeric.Round(math.NaN(), 2)), ShouldBeTrue)
	})
}

func TestFormat(t *testing.T) {
	Convey("Given values to format", t, func() {
		So(numeric.Format(317, 3), ShouldEqual, "317")
		So(numeric.Format(3.9625, 3), ShouldEqual, "3.963")
		So(numeric.FormatFixed(12, 1), ShouldEqual, "12.0")
		So(numeric.FormatFixed(21.428571, 1), ShouldEqual, "21.4")
		So(numeric.Format(-0.001, 2), ShouldEqual, "0")
		So(numeric.FormatFixed(-0.004, 2), ShouldEqual, "0.00")
	})
}

func TestMean(t *testing.T) {
	Convey("Given a list of values", t, func() {
		m, ok := numeric.Mean([]float64{8, 8.5, 9})
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, 8.5)

		_, ok = numeric.Mean(nil)
		So(ok, ShouldBeFalse)
	})
}
