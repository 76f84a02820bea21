package metrics

// Trend is one day of a recent window annotated with its day-over-day
// percentage change against the next-older row. The change fields are
// nil for the oldest row and whenever the older value is 0.
type Trend struct {
	Date                    Date     `json:"date"`
	PageViews               int64    `json:"page_views"`
	UniqueVisitors          int64    `json:"unique_visitors"`
	PageViewsChangePct      *float64 `json:"page_views_change_pct,omitempty"`
	UniqueVisitorsChangePct *float64 `json:"unique_visitors_change_pct,omitempty"`
}

// Trends computes day-over-day deltas over a most-recent-first slice,
// as produced by RecentWindow: for index i the comparison point is
// index i+1.
func Trends(rows []Metric) []Trend {
	out := make([]Trend, 0, len(rows))
	for i, m := range rows {
		t := Trend{
			Date:           m.Date,
			PageViews:      m.PageViews,
			UniqueVisitors: m.UniqueVisitors,
		}
		if i+1 < len(rows) {
			prev := rows[i+1]
			t.PageViewsChangePct = changePct(m.PageViews, prev.PageViews)
			t.UniqueVisitorsChangePct = changePct(m.UniqueVisitors, prev.UniqueVisitors)
		}
		out = append(out, t)
	}
	return out
}

func changePct(current, previous int64) *float64 {
	if previous == 0 {
		return nil
	}
	pct := float64(current-previous) / float64(previous) * 100
	return &pct
}
