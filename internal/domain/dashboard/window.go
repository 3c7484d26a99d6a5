package dashboard

import (
	"time"

	"github.com/beautydesk/beautydesk/internal/platform/apperr"
	"github.com/beautydesk/beautydesk/internal/platform/timeutil"
)

const (
	FilterDay   = "day"
	FilterWeek  = "week"
	FilterMonth = "month"
	FilterYear  = "year"
)

// Window is a closed time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the calendar window of filter that contains now. An
// empty filter means month. Weeks run Sunday to Saturday.
func WindowFor(filter string, now time.Time) (Window, error) {
	today := timeutil.StartOfDay(now)
	var start time.Time
	switch filter {
	case FilterDay:
		start = today
	case FilterWeek:
		start = today.AddDate(0, 0, -int(today.Weekday()))
	case FilterMonth, "":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case FilterYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return Window{}, apperr.Validation("timeFilter must be one of day, week, month, year")
	}
	return Window{Start: start, End: endOf(filter, start)}, nil
}

func endOf(filter string, start time.Time) time.Time {
	var next time.Time
	switch filter {
	case FilterDay:
		next = start.AddDate(0, 0, 1)
	case FilterWeek:
		next = start.AddDate(0, 0, 7)
	case FilterYear:
		next = start.AddDate(1, 0, 0)
	default:
		next = start.AddDate(0, 1, 0)
	}
	return next.Add(-time.Nanosecond)
}
