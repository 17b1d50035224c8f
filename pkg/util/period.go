package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod splits a lookback like "6mo", "1y" or "5d" into count and unit.
// Units: d, wk, mo, y.
func ParsePeriod(s string) (int, string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, "", fmt.Errorf("invalid period %q", s)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("invalid period %q", s)
	}
	unit := s[i:]
	switch unit {
	case "d", "wk", "mo", "y":
		return n, unit, nil
	default:
		return 0, "", fmt.Errorf("invalid period unit %q", unit)
	}
}

// PeriodStart returns the start of the lookback window ending at now.
func PeriodStart(now time.Time, period string) (time.Time, error) {
	n, unit, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	switch unit {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "wk":
		return now.AddDate(0, 0, -7*n), nil
	case "mo":
		return now.AddDate(0, -n, 0), nil
	default:
		return now.AddDate(-n, 0, 0), nil
	}
}
