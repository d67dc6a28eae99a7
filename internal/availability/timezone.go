package availability

import (
	"strings"
	"time"
)

const (
	storedDateLayout = "2006-01-02"
	storedTimeLayout = "15:04"
)

// LoadLocation loads an IANA zone. Unknown zones are configuration faults.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, configErrorf("timezone", "timezone is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &ConfigurationError{Field: "timezone", Err: err}
	}
	return loc, nil
}

// DisplayLocation picks the zone used to render times to an actor: the
// actor's own zone when it is set and loadable, otherwise the tenant's.
func DisplayLocation(actorTimezone, tenantTimezone string) (*time.Location, error) {
	if strings.TrimSpace(actorTimezone) != "" {
		if loc, err := time.LoadLocation(strings.TrimSpace(actorTimezone)); err == nil {
			return loc, nil
		}
	}
	return LoadLocation(tenantTimezone)
}

// LocalToUTC converts a wall-clock time on date in loc to a UTC instant.
// Wall-clock times that a DST transition skips or repeats resolve however
// time.Date resolves them; wallClock detects intervals that do not survive it.
func LocalToUTC(date Date, clock ClockTime, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year, date.Month, date.Day, clock.Hour(), clock.Minute(), 0, 0, loc).UTC()
}

// UTCToLocal returns the calendar date and wall-clock time of t in loc.
func UTCToLocal(t time.Time, loc *time.Location) (Date, ClockTime) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return DateOf(local), NewClockTime(local.Hour(), local.Minute())
}

// wallClock renders iv as a wall-clock window in loc and reports whether that
// window converts back to exactly iv. Intervals touching a repeated or skipped
// hour on a DST transition day do not.
func wallClock(iv Interval, loc *time.Location) (TimeWindow, bool) {
	startDate, start := UTCToLocal(iv.Start, loc)
	endDate, end := UTCToLocal(iv.End, loc)
	window := TimeWindow{Start: start, End: end}
	exact := LocalToUTC(startDate, start, loc).Equal(iv.Start) &&
		LocalToUTC(endDate, end, loc).Equal(iv.End) &&
		window.Length() == iv.Duration()
	return window, exact
}

// SplitStored normalizes a booking to its storage form: UTC start date and
// UTC wall-clock start and end times.
func SplitStored(start, end time.Time) (startDate, startTime, endTime string) {
	start = start.UTC()
	end = end.UTC()
	return start.Format(storedDateLayout), start.Format(storedTimeLayout), end.Format(storedTimeLayout)
}

// JoinStored reverses SplitStored. An end time at or before the start time
// ends on the following UTC day.
func JoinStored(startDate, startTime, endTime string) (time.Time, time.Time, error) {
	date, err := time.ParseInLocation(storedDateLayout, strings.TrimSpace(startDate), time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, &ConfigurationError{Field: "start_date", Err: err}
	}
	startClock, err := ParseClockTime(startTime)
	if err != nil {
		return time.Time{}, time.Time{}, &ConfigurationError{Field: "start_time", Err: err}
	}
	endClock, err := ParseClockTime(endTime)
	if err != nil {
		return time.Time{}, time.Time{}, &ConfigurationError{Field: "end_time", Err: err}
	}

	day := DateOf(date)
	start := LocalToUTC(day, startClock, time.UTC)
	endDay := day
	if endClock <= startClock {
		endDay = day.AddDays(1)
	}
	return start, LocalToUTC(endDay, endClock, time.UTC), nil
}
