package metrics

// ValidateInput range-checks a day's metrics. It is pure and runs
// before any store access, so a rejected input never causes a partial
// write.
func ValidateInput(in RecordInput) error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	if in.PageViews < 0 {
		return &ValidationError{Field: "page_views", Message: "must not be negative"}
	}
	if in.UniqueVisitors < 0 {
		return &ValidationError{Field: "unique_visitors", Message: "must not be negative"}
	}
	if in.BounceRate < 0 || in.BounceRate > 100 {
		return &ValidationError{Field: "bounce_rate", Message: "must be between 0 and 100"}
	}
	if in.AvgSessionDuration < 0 {
		return &ValidationError{Field: "avg_session_duration", Message: "must not be negative"}
	}
	return nil
}
