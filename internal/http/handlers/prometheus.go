package handlers

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

var (
	recordsTotal *prometheus.CounterVec
	queriesTotal *prometheus.CounterVec
)

func InitPrometheusMetrics() {
	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trafficinsight",
			Name:      "records_total",
			Help:      "Total number of daily metric rows recorded.",
		},
		[]string{"source"},
	)
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trafficinsight",
			Name:      "queries_total",
			Help:      "Total number of served query operations.",
		},
		[]string{"operation"},
	)
	prometheus.MustRegister(recordsTotal, queriesTotal)
}

// PrometheusHandler serves the default registry in text exposition format.
func PrometheusHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to gather metrics")
			return
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}
