package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/ironsys/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the documented defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Tables.History, convey.ShouldEqual, "HISTORIAL")
			convey.So(cfg.Tables.TeamRanking, convey.ShouldEqual, "Guerra de Clanes")
			convey.So(cfg.Scoring.NoobBelow, convey.ShouldEqual, 3)
			convey.So(cfg.Scoring.ComradeAbove, convey.ShouldEqual, 5)
			convey.So(cfg.Detect.WeeksForTrend, convey.ShouldEqual, 4)
			convey.So(cfg.Detect.StagnationPctThreshold, convey.ShouldEqual, 0.5)
			convey.So(cfg.Detect.RecentDays, convey.ShouldEqual, 14)
			convey.So(cfg.Detect.PriorDays, convey.ShouldEqual, 14)
			convey.So(cfg.Detect.RPEIncreaseThreshold, convey.ShouldEqual, 1.0)
			convey.So(cfg.Detect.MinObservations, convey.ShouldEqual, 3)
			convey.So(cfg.Detect.DedupeAlerts, convey.ShouldBeFalse)
			convey.So(cfg.Detect.NotifyByEmail, convey.ShouldBeFalse)
			convey.So(cfg.Notify.Driver, convey.ShouldEqual, config.DriverLog)
			convey.So(cfg.RefreshInterval, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.Delimiter(), convey.ShouldEqual, ',')
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then reserved tables cover every fixed-role table", func() {
			convey.So(cfg.Tables.Reserved(), convey.ShouldResemble, []string{
				"HISTORIAL", "Guerra de Clanes", "INSTRUCCIONES", "DB_Athletes", "DB_Logs",
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid values", t, func() {
		convey.Convey("When scoring bounds are inverted", func() {
			cfg := config.New()
			cfg.Scoring.NoobBelow = 6
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "scoring bounds")
		})

		convey.Convey("When the smtp driver lacks a host", func() {
			cfg := config.New()
			cfg.Notify.Driver = config.DriverSMTP
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the kafka driver is complete", func() {
			cfg := config.New()
			cfg.Notify.Driver = config.DriverKafka
			cfg.Notify.Kafka.Brokers = []string{"localhost:9092"}
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the driver is unknown", func() {
			cfg := config.New()
			cfg.Notify.Driver = "pigeon"
			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "pigeon")
		})

		convey.Convey("When the workbook delimiter is not a single usable character", func() {
			cfg := config.New()
			cfg.WorkbookDelimiter = ";;"
			convey.So(cfg.Validate().Error(), convey.ShouldContainSubstring, "workbook_delimiter")
			cfg.WorkbookDelimiter = "\""
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			cfg.WorkbookDelimiter = ";"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.Delimiter(), convey.ShouldEqual, ';')
		})

		convey.Convey("When the trend window is too short", func() {
			cfg := config.New()
			cfg.Detect.WeeksForTrend = 1
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
