package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// sample returns the counter or gauge value of the series matching name and
// the label pairs, or -1 when absent.
func sample(g prometheus.Gatherer, name string, labelPairs ...string) float64 {
	families, err := g.Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			have := map[string]string{}
			for _, lp := range m.GetLabel() {
				have[lp.GetName()] = lp.GetValue()
			}
			for i := 0; i+1 < len(labelPairs); i += 2 {
				if have[labelPairs[i]] != labelPairs[i+1] {
					continue next
				}
			}
			return m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return -1
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("batch"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{1, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.rowsScored.Add(2)

			Convey("Then metric names carry namespace, subsystem and prefix", func() {
				So(sample(registry, "test_batch_x_rows_scored_total"), ShouldEqual, 2)
			})

			Convey("Then the constant labels are attached", func() {
				So(sample(registry, "test_batch_x_rows_scored_total", "env", "test"), ShouldEqual, 2)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	reg := GetRegistry()

	Convey("Given the global manager", t, func() {
		Convey("When rows are scored", func() {
			RecordRowsScored(0, 0)
			before := sample(reg, "ironsys_rows_scored_total")
			bombedBefore := sample(reg, "ironsys_totals_bombed_total")
			RecordRowsScored(5, 1)

			So(sample(reg, "ironsys_rows_scored_total")-before, ShouldEqual, 5)
			So(sample(reg, "ironsys_totals_bombed_total")-bombedBefore, ShouldEqual, 1)
		})

		Convey("When alerts and notifications are recorded", func() {
			RecordAlert("Fatigue")
			before := sample(reg, "ironsys_alerts_emitted_total", "kind", "Fatigue")
			RecordAlert("Fatigue")
			RecordNotification("log", true)
			RecordNotification("log", false)

			So(sample(reg, "ironsys_alerts_emitted_total", "kind", "Fatigue")-before, ShouldEqual, 1)
			So(sample(reg, "ironsys_notifications_sent_total", "driver", "log"), ShouldBeGreaterThanOrEqualTo, 1)
			So(sample(reg, "ironsys_notifications_failed_total", "driver", "log"), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("When runs complete or fail", func() {
			RecordRun("score", 12*time.Millisecond)
			RecordRunError("score", "schema")
			So(sample(reg, "ironsys_run_errors_total", "operation", "score", "error_type", "schema"), ShouldBeGreaterThanOrEqualTo, 1)
			So(sample(reg, "ironsys_last_run_unix", "operation", "score"), ShouldBeGreaterThan, 0)
		})

		Convey("When recording is disabled", func() {
			RecordHistoryAppended(0)
			before := sample(reg, "ironsys_history_appended_total")
			SetEnabled(false)
			RecordHistoryAppended(10)
			SetEnabled(true)
			So(sample(reg, "ironsys_history_appended_total"), ShouldEqual, before)
		})

		Convey("When the read model is resized", func() {
			UpdateLeaderboardSize(7)
			So(sample(reg, "ironsys_leaderboard_size"), ShouldEqual, 7)
		})

		Convey("When HTTP traffic is recorded", func() {
			RecordHTTPRequest("rank", "GET", "404")
			RecordHTTPRequestDuration("rank", "GET", "404", 3)
			RecordHTTPError("rank", "GET", "not_found", "medium")
			So(sample(reg, "ironsys_http_requests_total", "endpoint", "rank", "status_code", "404"), ShouldBeGreaterThanOrEqualTo, 1)
			So(sample(reg, "ironsys_http_errors_total", "endpoint", "rank", "error_type", "not_found"), ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}
