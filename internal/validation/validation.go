package validation

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Length limits for user supplied text
const (
	MaxTitleLength    = 100
	MaxContentsLength = 5000
	MaxAddressLength  = 255
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all markup from s and trims surrounding whitespace.
// The result is plain text, so entities escaped by the policy are decoded again.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// ValidateTitle checks that a group or mogaco title is present and not too long
func ValidateTitle(title string) error {
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ValidationError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}
	}
	return nil
}

// ValidateGroupTypeID checks that a group type id is positive
func ValidateGroupTypeID(id int64) error {
	if id <= 0 {
		return ValidationError{Field: "groupTypeId", Message: "groupTypeId must be a positive integer"}
	}
	return nil
}

// ValidateMaxLength checks an optional free-text field
func ValidateMaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
	}
	return nil
}

// ValidateMaxHumanCount checks the capacity of a mogaco
func ValidateMaxHumanCount(n int) error {
	if n < 1 {
		return ValidationError{Field: "maxHumanCount", Message: "maxHumanCount must be at least 1"}
	}
	return nil
}

// ParseMonth parses a YYYY-MM string and returns the half-open UTC range
// [first day of month, first day of next month).
func ParseMonth(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, time.Time{}, ValidationError{Field: "date", Message: "date must be formatted as YYYY-MM"}
	}
	return start, start.AddDate(0, 1, 0), nil
}
