// Package availability computes bookable slots for courts and validates
// proposed bookings against operating hours, breaks, existing bookings and
// the court type's post-booking buffer.
//
// Everything here is pure computation over data the caller has already
// loaded. Operating hours are wall-clock times in the tenant's zone; booking
// instants are UTC.
package availability

import (
	"fmt"
	"time"
)

// Calendar is everything the engine needs to answer questions about one
// court: its configuration, the rules of the court and its court type, the
// live bookings around the dates in question, and the tenant's zone.
type Calendar struct {
	Court    Court
	Rules    []Rule
	Bookings BookingSet
	Location *time.Location
}

type SlotOptions struct {
	// ExcludeBookingID ignores one booking, used when editing it.
	ExcludeBookingID int64
	// ExcludeUserID enables the same-user sequential bypass.
	ExcludeUserID int64
	// Display is the zone slots are rendered in; the tenant zone when nil.
	Display *time.Location
}

// Request is a proposed booking in the tenant's wall-clock time.
type Request struct {
	Date             Date
	Start            string
	End              string
	ExcludeUserID    int64
	ExcludeBookingID int64
}

func (c Calendar) ResolveRule(date Date) (*Rule, error) {
	return ResolveRule(c.Court, date, c.Rules)
}

// ResolveSlots lists bookable slots on date.
func (c Calendar) ResolveSlots(date Date, opts SlotOptions) ([]Slot, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	rule, err := c.ResolveRule(date)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, nil
	}
	return GenerateSlots(SlotParams{
		Rule:             rule,
		Date:             date,
		Location:         c.Location,
		Bookings:         c.Bookings,
		CourtID:          c.Court.ID,
		Interval:         time.Duration(c.Court.IntervalMinutes) * time.Minute,
		Buffer:           time.Duration(c.Court.BufferMinutes) * time.Minute,
		ExcludeBookingID: opts.ExcludeBookingID,
		ExcludeUserID:    opts.ExcludeUserID,
		Display:          opts.Display,
	})
}

// ResolveAvailableDates lists the dates in [start, end] that have at least
// one bookable slot.
func (c Calendar) ResolveAvailableDates(start, end Date, opts SlotOptions) ([]Date, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRequest, end, start)
	}
	var dates []Date
	for date := start; !date.After(end); date = date.AddDays(1) {
		slots, err := c.ResolveSlots(date, opts)
		if err != nil {
			return nil, fmt.Errorf("resolve slots for %s: %w", date, err)
		}
		if len(slots) > 0 {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

// CheckConflict validates req. See the package-level CheckConflict for the
// order of checks.
func (c Calendar) CheckConflict(req Request) (*Conflict, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	start, err := ParseClockTime(req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidRequest, err)
	}
	end, err := ParseClockTime(req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrInvalidRequest, err)
	}
	rule, err := c.ResolveRule(req.Date)
	if err != nil {
		return nil, err
	}
	return CheckConflict(ConflictParams{
		Rule:             rule,
		Date:             req.Date,
		Start:            start,
		End:              end,
		Location:         c.Location,
		Bookings:         c.Bookings,
		CourtID:          c.Court.ID,
		Buffer:           time.Duration(c.Court.BufferMinutes) * time.Minute,
		ExcludeUserID:    req.ExcludeUserID,
		ExcludeBookingID: req.ExcludeBookingID,
	})
}

// Candidate returns the UTC interval req would occupy, placed on the
// governing rule's operating day. It is meaningful only after CheckConflict
// has accepted req.
func (c Calendar) Candidate(req Request) (Interval, error) {
	start, err := ParseClockTime(req.Start)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: start: %v", ErrInvalidRequest, err)
	}
	end, err := ParseClockTime(req.End)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: end: %v", ErrInvalidRequest, err)
	}
	rule, err := c.ResolveRule(req.Date)
	if err != nil {
		return Interval{}, err
	}
	requested := TimeWindow{Start: start, End: end}
	reference := requested
	if rule != nil {
		reference = rule.Window
	}
	return requested.On(req.Date, reference, c.Location), nil
}

func (c Calendar) validate() error {
	if c.Location == nil {
		return configErrorf("timezone", "tenant location is required")
	}
	return c.Court.validate()
}
