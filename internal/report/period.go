package report

import (
	"fmt"
	"time"

	"rfid-attendance/internal/attendance"
)

// Period is the report type chosen on the reports screen.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodCustom  Period = "custom"
)

// RangeFor resolves a period to inclusive start and end dates. Custom (and
// empty) returns the caller's bounds, which must be empty or YYYY-MM-DD.
func RangeFor(p Period, now time.Time, loc *time.Location, start, end string) (string, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc)
	switch p {
	case PeriodDaily:
		d := today.Format(time.DateOnly)
		return d, d, nil
	case PeriodMonthly:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		last := first.AddDate(0, 1, -1)
		return first.Format(time.DateOnly), last.Format(time.DateOnly), nil
	case PeriodCustom, "":
		for _, d := range []string{start, end} {
			if err := attendance.ValidateDate(d); err != nil {
				return "", "", err
			}
		}
		return start, end, nil
	}
	return "", "", fmt.Errorf("unknown report period %q", p)
}
