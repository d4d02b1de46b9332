package farm

import (
	"fmt"
	"time"
)

// Expense timestamps are nanoseconds since the epoch, which limits calendar
// windows to years whose months fit in an int64.
const (
	minCalendarYear = 1970
	maxCalendarYear = 2261
)

// monthWindow is the half-open timestamp range [start, end).
type monthWindow struct {
	start, end uint64
}

func (w monthWindow) contains(ts uint64) bool {
	return ts >= w.start && ts < w.end
}

func (s *Service) monthWindow(month, year uint64) (monthWindow, error) {
	if month < 1 || month > 12 {
		return monthWindow{}, &InvalidArgumentError{Arg: "month", Msg: fmt.Sprintf("%d is not in 1..12", month)}
	}
	if s.legacyMonthWindow {
		return legacyMonthWindow(month, year), nil
	}
	if year < minCalendarYear || year > maxCalendarYear {
		return monthWindow{}, &InvalidArgumentError{Arg: "year", Msg: fmt.Sprintf("%d is not in %d..%d", year, minCalendarYear, maxCalendarYear)}
	}
	return calendarMonthWindow(month, year), nil
}

func calendarMonthWindow(month, year uint64) monthWindow {
	start := time.Date(int(year), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return monthWindow{
		start: uint64(start.UnixNano()),
		end:   uint64(end.UnixNano()),
	}
}

// legacyMonthWindow computes boundaries as year*10000 + month*100 + day,
// which is what databases written before calendar windows were queried with.
func legacyMonthWindow(month, year uint64) monthWindow {
	stamp := func(month, year, day uint64) uint64 {
		return year*10000 + month*100 + day
	}
	nextMonth, nextYear := month+1, year
	if month == 12 {
		nextMonth, nextYear = 1, year+1
	}
	return monthWindow{
		start: stamp(month, year, 1),
		end:   stamp(nextMonth, nextYear, 1),
	}
}
