package metrics

import "errors"

// ErrDuplicateDate is returned by Record when a row for the same
// calendar day already exists. One row per day is enforced by a unique
// index on the date column.
var ErrDuplicateDate = errors.New("a metric for this date already exists")

// ValidationError rejects malformed input before any store access.
// Field identifies the offending input so callers can resubmit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
