package metrics

import (
	"context"
	"fmt"
	"time"
)

// DefaultRecentDays is the recent-window size used when a caller does
// not ask for a specific number of days.
const DefaultRecentDays = 7

// Engine implements the query layer over a Store: one write operation
// (Record) and three derived read views (List, Summarize,
// RecentWindow). It holds no state beyond its collaborators, so a
// single Engine is safe for concurrent use.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// NewEngineWithClock pins the current-date source used for
// recent-window cutoffs. Tests use this to avoid day-boundary flakes.
func NewEngineWithClock(store Store, now func() time.Time) *Engine {
	return &Engine{store: store, now: now}
}

// Record validates and persists one day's metrics. The store assigns
// ID and CreatedAt; the complete stored row is returned. A second
// record for an already-present date fails with ErrDuplicateDate.
func (e *Engine) Record(ctx context.Context, in RecordInput) (Metric, error) {
	if err := ValidateInput(in); err != nil {
		return Metric{}, err
	}
	m, err := e.store.Insert(ctx, in)
	if err != nil {
		if err == ErrDuplicateDate {
			return Metric{}, err
		}
		return Metric{}, fmt.Errorf("insert metric: %w", err)
	}
	return m, nil
}

// List returns the stored time series ascending by date, restricted to
// the inclusive range when one is given. The result is never nil; a
// range matching nothing (including an inverted one) yields an empty
// slice.
func (e *Engine) List(ctx context.Context, r *DateRange) ([]Metric, error) {
	f := Filter{}
	if r != nil {
		start, end := r.Start, r.End
		f.Start, f.End = &start, &end
	}
	rows, err := e.store.Select(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("select metrics: %w", err)
	}
	if rows == nil {
		rows = []Metric{}
	}
	return rows, nil
}

// Summarize aggregates the rows matching the optional range: exact
// integer sums and full-precision means, all zero over an empty set.
// Rounding for display is left to callers. The reported period echoes
// the supplied range; with no range it is the min/max date actually
// present in the store, and nil when the store is empty.
func (e *Engine) Summarize(ctx context.Context, r *DateRange) (Summary, error) {
	rows, err := e.List(ctx, r)
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, m := range rows {
		s.TotalPageViews += m.PageViews
		s.TotalUniqueVisitors += m.UniqueVisitors
		s.AvgBounceRate += m.BounceRate
		s.AvgSessionDuration += m.AvgSessionDuration
	}
	if n := len(rows); n > 0 {
		s.AvgBounceRate /= float64(n)
		s.AvgSessionDuration /= float64(n)
	} else {
		s.AvgBounceRate = 0
		s.AvgSessionDuration = 0
	}

	if r != nil {
		start, end := r.Start, r.End
		s.PeriodStart, s.PeriodEnd = &start, &end
		return s, nil
	}
	min, max, ok, err := e.store.Bounds(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("metric bounds: %w", err)
	}
	if ok {
		s.PeriodStart, s.PeriodEnd = &min, &max
	}
	return s, nil
}

// RecentWindow returns at most days rows dated on or after
// today − days, most recent first. days must be positive.
func (e *Engine) RecentWindow(ctx context.Context, days int) ([]Metric, error) {
	if days <= 0 {
		return nil, &ValidationError{Field: "days", Message: "must be a positive integer"}
	}
	cutoff := DateOf(e.now()).AddDays(-days)
	rows, err := e.store.Select(ctx, Filter{
		Start:      &cutoff,
		Descending: true,
		Limit:      days,
	})
	if err != nil {
		return nil, fmt.Errorf("select recent metrics: %w", err)
	}
	if rows == nil {
		rows = []Metric{}
	}
	return rows, nil
}
