package dates

import (
	"fmt"
	"time"
)

// Layout is the calendar-day format used for slot keys and booking dates.
// Days are local calendar days; no timezone arithmetic happens beyond that.
const Layout = "2006-01-02"

// Parse parses an ISO calendar day (YYYY-MM-DD).
func Parse(day string) (time.Time, error) {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar day %q: %w", day, err)
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays returns the day n days after the given day.
func AddDays(day string, n int) (string, error) {
	t, err := Parse(day)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// Range expands an inclusive [start, end] range into the ordered list of
// day keys it covers. start must not be after end.
func Range(start, end string) ([]string, error) {
	from, err := Parse(start)
	if err != nil {
		return nil, err
	}
	to, err := Parse(end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("start day %s is after end day %s", start, end)
	}

	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, Format(d))
	}
	return days, nil
}

// DayCount returns the number of calendar days in the inclusive range.
func DayCount(start, end string) (int, error) {
	days, err := Range(start, end)
	if err != nil {
		return 0, err
	}
	return len(days), nil
}

// Today returns the current local calendar day.
func Today() string {
	return Format(time.Now())
}
