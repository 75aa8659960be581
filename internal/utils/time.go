package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutDate  = "2006-01-02"
	layoutMonth = "2006-01"
)

// NormalizeDate validates a YYYY-MM-DD date and returns it in canonical form.
func NormalizeDate(s string) (string, error) {
	t, err := time.Parse(layoutDate, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(layoutDate), nil
}

// MonthBounds returns the first and last day of a YYYY-MM month.
func MonthBounds(s string) (string, string, error) {
	t, err := time.Parse(layoutMonth, strings.TrimSpace(s))
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	last := t.AddDate(0, 1, -1)
	return t.Format(layoutDate), last.Format(layoutDate), nil
}

// DatesBetween lists every date from..to inclusive. Both must be canonical dates.
func DatesBetween(from, to string) []string {
	start, err1 := time.Parse(layoutDate, from)
	end, err2 := time.Parse(layoutDate, to)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}
	out := []string{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(layoutDate))
	}
	return out
}
