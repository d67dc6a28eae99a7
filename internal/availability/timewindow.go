package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day, stored as minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "15:04", "15:04:05" and the 12-hour forms staff
// tend to type ("3:04 PM", "03:04PM").
func ParseClockTime(raw string) (ClockTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("time is required")
	}
	formats := []string{"15:04", "15:04:05", "3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}
	for _, format := range formats {
		parsed, err := time.Parse(format, strings.ToUpper(raw))
		if err == nil {
			return NewClockTime(parsed.Hour(), parsed.Minute()), nil
		}
	}
	return 0, fmt.Errorf("time %q must be in HH:MM or H:MM AM/PM format", raw)
}

func (c ClockTime) Hour() int {
	return int(c) / 60
}

func (c ClockTime) Minute() int {
	return int(c) % 60
}

func (c ClockTime) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// TimeWindow is a local [Start, End) interval. End <= Start means the
// window runs past midnight into the next day; End == Start is a full day.
type TimeWindow struct {
	Start ClockTime
	End   ClockTime
}

func ParseTimeWindow(start, end string) (TimeWindow, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("end: %w", err)
	}
	return TimeWindow{Start: s, End: e}, nil
}

func (w TimeWindow) Overnight() bool {
	return w.End <= w.Start
}

func (w TimeWindow) Length() time.Duration {
	minutes := int(w.End - w.Start)
	if minutes <= 0 {
		minutes += minutesPerDay
	}
	return time.Duration(minutes) * time.Minute
}

// covers reports whether inner lies within w once both are laid out from
// w's start, so 00:30-01:00 is inside 22:00-02:00 but 21:30-23:00 is not.
func (w TimeWindow) covers(inner TimeWindow) bool {
	offset := int(inner.Start-w.Start+minutesPerDay) % minutesPerDay
	return time.Duration(offset)*time.Minute+inner.Length() <= w.Length()
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// On places w on the calendar relative to the operating day of a rule window.
// Clock times earlier than an overnight rule's start belong to the following
// day, so a 00:30 break inside a 22:00-02:00 rule lands after midnight.
func (w TimeWindow) On(date Date, rule TimeWindow, loc *time.Location) Interval {
	startDay := date
	if rule.Overnight() && w.Start < rule.Start {
		startDay = date.AddDays(1)
	}
	endDay := startDay
	if w.End <= w.Start {
		endDay = startDay.AddDays(1)
	}
	return Interval{
		Start: LocalToUTC(startDay, w.Start, loc),
		End:   LocalToUTC(endDay, w.End, loc),
	}
}

// Interval is an absolute half-open [Start, End) span.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies entirely inside i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Format renders the interval as wall-clock "HH:MM-HH:MM" in loc.
func (i Interval) Format(loc *time.Location) string {
	return i.Start.In(loc).Format("15:04") + "-" + i.End.In(loc).Format("15:04")
}
