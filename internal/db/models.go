package db

import (
	"time"
)

// TrafficMetric is one calendar day of site traffic as stored in
// Postgres. The fixed-point columns are carried as strings on this
// model so the database's numeric representation never reaches
// callers; MetricStore converts them at its boundary.
type TrafficMetric struct {
	ID uint `gorm:"primaryKey"`

	// Date is the calendar day this row covers. One row per day.
	Date time.Time `gorm:"type:date;uniqueIndex;not null"`

	PageViews      int64 `gorm:"not null"`
	UniqueVisitors int64 `gorm:"not null"`

	// BounceRate is a percentage in [0, 100] with 2 fractional digits.
	BounceRate string `gorm:"type:numeric(5,2);not null"`

	// AvgSessionDuration is in seconds with 2 fractional digits.
	AvgSessionDuration string `gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time
}

// APIKey is a bearer token allowed to record metrics. The bootstrap
// key (from env, or generated at startup) is created as a row here.
type APIKey struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time

	// Name is a friendly identifier for this key (e.g. "collector").
	Name string `gorm:"size:128;not null"`

	// Key is the actual bearer token value.
	Key string `gorm:"uniqueIndex;size:255;not null"`

	// Active indicates whether this key is currently enabled.
	Active bool `gorm:"default:true"`
}
