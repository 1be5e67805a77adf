package utils

import (
	"fmt"
	"time"
)

const (
	DateFormat  = "2006-01-02"
	MonthFormat = "2006-01"
)

// ParseDate validates a date string in the API's date format.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s): %w", dateStr, DateFormat, err)
	}
	return t, nil
}

// ParseMonth validates a settlement-month string ("2024-05").
func ParseMonth(monthStr string) (time.Time, error) {
	t, err := time.Parse(MonthFormat, monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want %s): %w", monthStr, MonthFormat, err)
	}
	return t, nil
}
