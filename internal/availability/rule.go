package availability

import (
	"errors"
	"time"
)

// Rule is one operating-hours record for a court or a court type. It recurs
// on DayOfWeek or applies to SpecificDate only; exactly one of the two is set.
type Rule struct {
	ID           int64
	TenantID     int64
	CourtID      *int64
	CourtTypeID  *int64
	DayOfWeek    *time.Weekday
	SpecificDate *Date
	Window       TimeWindow
	Breaks       []TimeWindow
	IsAvailable  bool
	CreatedAt    time.Time
}

// Validate checks the invariants the engine depends on.
func (r Rule) Validate() error {
	if r.CourtID == nil && r.CourtTypeID == nil {
		return configErrorf("rule", "rule %d has neither court_id nor court_type_id", r.ID)
	}
	if (r.DayOfWeek == nil) == (r.SpecificDate == nil) {
		return configErrorf("rule", "rule %d must set exactly one of day_of_week or specific_date", r.ID)
	}
	if r.DayOfWeek != nil && (*r.DayOfWeek < time.Sunday || *r.DayOfWeek > time.Saturday) {
		return configErrorf("day_of_week", "rule %d has day_of_week %d", r.ID, int(*r.DayOfWeek))
	}
	if !r.Window.Start.Valid() || !r.Window.End.Valid() {
		return configErrorf("window", "rule %d has window %s", r.ID, r.Window)
	}
	for _, brk := range r.Breaks {
		if !brk.Start.Valid() || !brk.End.Valid() {
			return configErrorf("breaks", "rule %d has break %s", r.ID, brk)
		}
		if brk.Start == brk.End {
			return &ConfigurationError{Field: "breaks", Err: errors.New("break has zero length")}
		}
		if !r.Window.covers(brk) {
			return configErrorf("breaks", "rule %d has break %s outside window %s", r.ID, brk, r.Window)
		}
	}
	return nil
}

func (r Rule) scopedToCourt(courtID int64) bool {
	return r.CourtID != nil && *r.CourtID == courtID
}

func (r Rule) scopedToCourtType(courtTypeID int64) bool {
	return r.CourtID == nil && r.CourtTypeID != nil && *r.CourtTypeID == courtTypeID
}

func (r Rule) matchesDate(date Date) bool {
	return r.SpecificDate != nil && *r.SpecificDate == date
}

func (r Rule) matchesWeekday(date Date) bool {
	return r.SpecificDate == nil && r.DayOfWeek != nil && *r.DayOfWeek == date.Weekday()
}

// Interval returns the rule window placed on date in loc.
func (r Rule) Interval(date Date, loc *time.Location) Interval {
	return r.Window.On(date, r.Window, loc)
}

func (r Rule) breakIntervals(date Date, loc *time.Location) []Interval {
	if len(r.Breaks) == 0 {
		return nil
	}
	out := make([]Interval, 0, len(r.Breaks))
	for _, brk := range r.Breaks {
		out = append(out, brk.On(date, r.Window, loc))
	}
	return out
}
