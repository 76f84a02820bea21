package db

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"trafficinsight/internal/metrics"
)

var (
	summaryPageViews = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trafficinsight",
		Name:      "summary_page_views_total",
		Help:      "All-time total page views across stored daily metrics.",
	})
	summaryUniqueVisitors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trafficinsight",
		Name:      "summary_unique_visitors_total",
		Help:      "All-time total unique visitors across stored daily metrics.",
	})
	summaryAvgBounceRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trafficinsight",
		Name:      "summary_avg_bounce_rate",
		Help:      "All-time mean bounce rate (percent) across stored daily metrics.",
	})
	summaryAvgSessionDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trafficinsight",
		Name:      "summary_avg_session_duration_seconds",
		Help:      "All-time mean session duration across stored daily metrics.",
	})
)

func exportSummaryOnce(engine *metrics.Engine) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := engine.Summarize(ctx, nil)
	if err != nil {
		return err
	}
	summaryPageViews.Set(float64(s.TotalPageViews))
	summaryUniqueVisitors.Set(float64(s.TotalUniqueVisitors))
	summaryAvgBounceRate.Set(s.AvgBounceRate)
	summaryAvgSessionDuration.Set(s.AvgSessionDuration)
	return nil
}

// StartSummaryExporter launches a background goroutine that refreshes
// the dashboard summary gauges once at startup and then on the given
// interval. This is observability only; summaries served over HTTP are
// always computed fresh from the store.
func StartSummaryExporter(engine *metrics.Engine, log zerolog.Logger, interval time.Duration) {
	prometheus.MustRegister(summaryPageViews, summaryUniqueVisitors, summaryAvgBounceRate, summaryAvgSessionDuration)

	go func() {
		if err := exportSummaryOnce(engine); err != nil {
			log.Error().Err(err).Msg("summary export failed (startup)")
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := exportSummaryOnce(engine); err != nil {
				log.Error().Err(err).Msg("summary export failed")
			}
		}
	}()
}
