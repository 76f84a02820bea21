package metrics

import (
	"context"
	"time"
)

// Metric is one calendar day of site traffic as served to callers.
// BounceRate and AvgSessionDuration carry two fractional digits; the
// store keeps them as fixed-point decimals and converts at its boundary.
type Metric struct {
	ID                 uint      `json:"id"`
	Date               Date      `json:"date"`
	PageViews          int64     `json:"page_views"`
	UniqueVisitors     int64     `json:"unique_visitors"`
	BounceRate         float64   `json:"bounce_rate"`
	AvgSessionDuration float64   `json:"avg_session_duration"`
	CreatedAt          time.Time `json:"created_at"`
}

// RecordInput is a day's metrics as submitted by a caller, before the
// store assigns ID and CreatedAt.
type RecordInput struct {
	Date               Date    `json:"date"`
	PageViews          int64   `json:"page_views"`
	UniqueVisitors     int64   `json:"unique_visitors"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
}

// DateRange is an inclusive [Start, End] calendar-day interval. An
// inverted range (Start after End) is legal and simply matches nothing.
type DateRange struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// Summary is the aggregate view over a set of daily records. It is
// derived fresh on every call and never persisted. PeriodStart and
// PeriodEnd are nil when the store is empty and no range was given.
type Summary struct {
	TotalPageViews      int64   `json:"total_page_views"`
	TotalUniqueVisitors int64   `json:"total_unique_visitors"`
	AvgBounceRate       float64 `json:"avg_bounce_rate"`
	AvgSessionDuration  float64 `json:"avg_session_duration"`
	PeriodStart         *Date   `json:"period_start"`
	PeriodEnd           *Date   `json:"period_end"`
}

// Filter is the read primitive the engine pushes down to the store.
// Nil bounds are open; Limit 0 means unbounded.
type Filter struct {
	Start      *Date
	End        *Date
	Descending bool
	Limit      int
}

// Store is the durable row store the engine reads and appends to.
// Implementations must order Select results by date according to
// Filter.Descending and must reject duplicate-day inserts with
// ErrDuplicateDate.
type Store interface {
	Insert(ctx context.Context, in RecordInput) (Metric, error)
	Select(ctx context.Context, f Filter) ([]Metric, error)
	// Bounds reports the minimum and maximum date present; ok is false
	// when the store holds no rows.
	Bounds(ctx context.Context) (min, max Date, ok bool, err error)
}
