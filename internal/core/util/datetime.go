package util

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDatetime = errors.New("invalid datetime")

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDatetime accepts ISO 8601 date-times with either a "T" or a space
// separator, optional seconds fraction and optional zone. Values without a
// zone are read as UTC.
func ParseDatetime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return time.Time{}, ErrInvalidDatetime
	}

	for _, layout := range datetimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidDatetime
}

func IsDatetime(value string) bool {
	_, err := ParseDatetime(value)

	return err == nil
}
