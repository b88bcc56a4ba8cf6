// Package validation collects per-field input errors for form submissions.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldErrors maps a form field to its error messages. A non-empty FieldErrors is an error;
// handlers render it as 422 with the map as the "errors" body.
type FieldErrors map[string][]string

// Add appends msg to field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Has reports whether field has at least one error.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Err returns fe as an error, or nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Error lists the failing fields in a stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// MinLen records msg on field when s has fewer than n characters.
func (fe FieldErrors) MinLen(field, s string, n int, msg string) {
	if utf8.RuneCountInString(s) < n {
		fe.Add(field, msg)
	}
}

// OptionalEmail records msg on field when s is set but not an email address.
func (fe FieldErrors) OptionalEmail(field, s, msg string) {
	if s != "" && !IsEmail(s) {
		fe.Add(field, msg)
	}
}

// OneOf records an error on field when s is not one of allowed.
func (fe FieldErrors) OneOf(field, s string, allowed ...string) {
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	fe.Add(field, "Must be one of "+strings.Join(allowed, ", "))
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// OptionalDate parses s as YYYY-MM-DD (an RFC 3339 timestamp is also accepted and
// truncated to its date). Empty input returns nil. Invalid input records an error on field.
func (fe FieldErrors) OptionalDate(field, s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := ParseDate(s)
	if err != nil {
		fe.Add(field, "Invalid date")
		return nil
	}
	return &d
}

// ParseDate parses YYYY-MM-DD or RFC 3339 and returns the UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}
