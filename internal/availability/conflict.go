package availability

import (
	"fmt"
	"time"
)

type ConflictParams struct {
	Rule     *Rule
	Date     Date
	Start    ClockTime
	End      ClockTime
	Location *time.Location
	// Bookings should cover Date-1 through Date+1.
	Bookings         BookingSet
	CourtID          int64
	Buffer           time.Duration
	ExcludeUserID    int64
	ExcludeBookingID int64
}

// CheckConflict validates a candidate booking against the governing rule,
// its breaks, and existing bookings. Checks run in a fixed order and the
// first failure is returned. A nil conflict and nil error means the court is
// free. Times are wall-clock in Location; the candidate is placed on the
// rule's operating day, so 01:00 under a 22:00-02:00 rule means after midnight.
func CheckConflict(p ConflictParams) (*Conflict, error) {
	loc := p.Location
	if loc == nil {
		return nil, configErrorf("timezone", "tenant location is required")
	}
	if p.Buffer < 0 {
		return nil, configErrorf("buffer_minutes", "buffer must not be negative, got %s", p.Buffer)
	}
	if !p.Start.Valid() || !p.End.Valid() {
		return nil, fmt.Errorf("%w: start and end must be times of day", ErrInvalidRequest)
	}
	if p.Start == p.End {
		return nil, fmt.Errorf("%w: start and end must differ", ErrInvalidRequest)
	}

	if p.Rule == nil {
		return newConflict(ReasonNoOperatingHours, Interval{}, loc), nil
	}
	window := p.Rule.Interval(p.Date, loc)
	if !p.Rule.IsAvailable {
		return newConflict(ReasonCourtUnavailable, window, loc), nil
	}

	requested := TimeWindow{Start: p.Start, End: p.End}
	candidate := requested.On(p.Date, p.Rule.Window, loc)
	if got, ok := wallClock(candidate, loc); !ok || got != requested {
		return nil, fmt.Errorf("%w: %s on %s crosses a daylight saving change in %s", ErrInvalidRequest, requested, p.Date, loc)
	}
	if !window.Contains(candidate) {
		return newConflict(ReasonOutsideOperatingHours, window, loc), nil
	}

	for _, brk := range p.Rule.breakIntervals(p.Date, loc) {
		if candidate.Overlaps(brk) {
			return newConflict(ReasonBreakConflict, brk, loc), nil
		}
	}

	bookings, err := p.Bookings.Active(p.CourtID, p.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	// A direct overlap with any booking outranks a buffer-only hit.
	for _, b := range bookings {
		if candidate.Overlaps(b.Interval()) {
			return newBookingConflict(b, p.Buffer, false, loc), nil
		}
	}
	for _, b := range bookings {
		block, buffered := b.block(candidate, p.Buffer, p.ExcludeUserID)
		if buffered && candidate.Overlaps(block) {
			return newBookingConflict(b, p.Buffer, true, loc), nil
		}
	}
	return nil, nil
}
