package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/valyala/fasthttp"

	httpctx "trafficinsight/internal/http/ctx"
	"trafficinsight/internal/metrics"
)

// parseDateRange reads the optional start_date/end_date query pair.
// Both must be present or both absent; a lone bound is rejected.
func parseDateRange(ctx *fasthttp.RequestCtx) (*metrics.DateRange, error) {
	start := string(ctx.QueryArgs().Peek("start_date"))
	end := string(ctx.QueryArgs().Peek("end_date"))
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, errors.New("start_date and end_date must be provided together")
	}
	s, err := metrics.ParseDate(start)
	if err != nil {
		return nil, errors.New("start_date: " + err.Error())
	}
	e, err := metrics.ParseDate(end)
	if err != nil {
		return nil, errors.New("end_date: " + err.Error())
	}
	return &metrics.DateRange{Start: s, End: e}, nil
}

// parseDays reads the "days" query parameter, defaulting to the
// engine's recent-window size. Non-integer input is rejected here;
// non-positive values are rejected by the engine.
func parseDays(ctx *fasthttp.RequestCtx) (int, error) {
	s := string(ctx.QueryArgs().Peek("days"))
	if s == "" {
		return metrics.DefaultRecentDays, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("days: must be an integer")
	}
	return n, nil
}

// RecordMetric persists one day's metrics. The caller is identified by
// its API key (BearerAuth runs first), which labels the records counter.
func RecordMetric(engine *metrics.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var in metrics.RecordInput
		if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		m, err := engine.Record(ctx, in)
		if err != nil {
			var ve *metrics.ValidationError
			switch {
			case errors.As(err, &ve):
				errResponse(ctx, fasthttp.StatusBadRequest, ve.Error())
			case errors.Is(err, metrics.ErrDuplicateDate):
				errResponse(ctx, fasthttp.StatusConflict, err.Error())
			default:
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to record metrics")
			}
			return
		}

		source := "unknown"
		if ak, ok := httpctx.APIKeyFromCtx(ctx); ok && ak != nil {
			source = ak.Name
		}
		recordsTotal.WithLabelValues(source).Inc()

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonResponse(ctx, m)
	}
}

// TrafficMetrics returns the stored time series ascending by date,
// optionally restricted to an inclusive date range.
func TrafficMetrics(engine *metrics.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		r, err := parseDateRange(ctx)
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		rows, lerr := engine.List(ctx, r)
		if lerr != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query metrics")
			return
		}
		queriesTotal.WithLabelValues("list").Inc()
		jsonResponse(ctx, map[string]any{"metrics": rows})
	}
}

// DashboardSummary returns aggregate totals and means over the
// optional date range.
func DashboardSummary(engine *metrics.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		r, err := parseDateRange(ctx)
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		s, serr := engine.Summarize(ctx, r)
		if serr != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query summary")
			return
		}
		queriesTotal.WithLabelValues("summary").Inc()
		jsonResponse(ctx, s)
	}
}

// RecentMetrics returns the last N days of metrics, most recent first.
func RecentMetrics(engine *metrics.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		days, err := parseDays(ctx)
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		rows, rerr := engine.RecentWindow(ctx, days)
		if rerr != nil {
			var ve *metrics.ValidationError
			if errors.As(rerr, &ve) {
				errResponse(ctx, fasthttp.StatusBadRequest, ve.Error())
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query recent metrics")
			return
		}
		queriesTotal.WithLabelValues("recent").Inc()
		jsonResponse(ctx, map[string]any{"metrics": rows})
	}
}

// TrendSeries returns the recent window annotated with day-over-day
// percentage changes.
func TrendSeries(engine *metrics.Engine) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		days, err := parseDays(ctx)
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, err.Error())
			return
		}
		rows, rerr := engine.RecentWindow(ctx, days)
		if rerr != nil {
			var ve *metrics.ValidationError
			if errors.As(rerr, &ve) {
				errResponse(ctx, fasthttp.StatusBadRequest, ve.Error())
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query recent metrics")
			return
		}
		queriesTotal.WithLabelValues("trends").Inc()
		jsonResponse(ctx, map[string]any{"trends": metrics.Trends(rows)})
	}
}
