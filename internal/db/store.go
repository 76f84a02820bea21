package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"trafficinsight/internal/metrics"
)

// MetricStore is the GORM-backed implementation of metrics.Store. All
// conversion between the database's fixed-point/date representations
// and true numeric values happens here, so the on-disk encoding never
// leaks past this package.
type MetricStore struct {
	db *gorm.DB
}

func NewMetricStore(db *gorm.DB) *MetricStore {
	return &MetricStore{db: db}
}

func (s *MetricStore) Insert(ctx context.Context, in metrics.RecordInput) (metrics.Metric, error) {
	row := TrafficMetric{
		Date:               in.Date.Time(),
		PageViews:          in.PageViews,
		UniqueVisitors:     in.UniqueVisitors,
		BounceRate:         formatDecimal(in.BounceRate),
		AvgSessionDuration: formatDecimal(in.AvgSessionDuration),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return metrics.Metric{}, metrics.ErrDuplicateDate
		}
		return metrics.Metric{}, err
	}
	return toMetric(row)
}

func (s *MetricStore) Select(ctx context.Context, f metrics.Filter) ([]metrics.Metric, error) {
	q := s.db.WithContext(ctx).Model(&TrafficMetric{})
	if f.Start != nil {
		q = q.Where("date >= ?", f.Start.Time())
	}
	if f.End != nil {
		q = q.Where("date <= ?", f.End.Time())
	}
	if f.Descending {
		q = q.Order("date DESC")
	} else {
		q = q.Order("date ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []TrafficMetric
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]metrics.Metric, 0, len(rows))
	for _, row := range rows {
		m, err := toMetric(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MetricStore) Bounds(ctx context.Context) (min, max metrics.Date, ok bool, err error) {
	var row struct {
		MinDate *time.Time
		MaxDate *time.Time
	}
	err = s.db.WithContext(ctx).
		Raw("SELECT min(date) AS min_date, max(date) AS max_date FROM traffic_metrics").
		Scan(&row).Error
	if err != nil {
		return metrics.Date{}, metrics.Date{}, false, err
	}
	if row.MinDate == nil || row.MaxDate == nil {
		return metrics.Date{}, metrics.Date{}, false, nil
	}
	return metrics.DateOf(*row.MinDate), metrics.DateOf(*row.MaxDate), true, nil
}

func toMetric(row TrafficMetric) (metrics.Metric, error) {
	bounce, err := parseDecimal(row.BounceRate)
	if err != nil {
		return metrics.Metric{}, fmt.Errorf("bounce_rate for %s: %w", row.Date.Format("2006-01-02"), err)
	}
	duration, err := parseDecimal(row.AvgSessionDuration)
	if err != nil {
		return metrics.Metric{}, fmt.Errorf("avg_session_duration for %s: %w", row.Date.Format("2006-01-02"), err)
	}
	return metrics.Metric{
		ID:                 row.ID,
		Date:               metrics.DateOf(row.Date),
		PageViews:          row.PageViews,
		UniqueVisitors:     row.UniqueVisitors,
		BounceRate:         bounce,
		AvgSessionDuration: duration,
		CreatedAt:          row.CreatedAt,
	}, nil
}

// formatDecimal renders f with exactly 2 fractional digits, matching
// the numeric(_,2) column scale so values round-trip without drift.
func formatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
