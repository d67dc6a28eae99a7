package availability

import (
	"time"
)

// minAdvance keeps the slot walk moving when blocker data is degenerate.
const minAdvance = time.Minute

// Slot is a bookable interval rendered in the display zone.
type Slot struct {
	Start   string    `json:"start"`
	End     string    `json:"end"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type SlotParams struct {
	Rule     *Rule
	Date     Date
	Location *time.Location
	// Bookings should cover Date-1 through Date+1 so that bookings spilling
	// over a UTC day boundary are seen.
	Bookings         BookingSet
	CourtID          int64
	Interval         time.Duration
	Buffer           time.Duration
	ExcludeBookingID int64
	ExcludeUserID    int64
	Display          *time.Location
}

// GenerateSlots tiles the governing rule's window on Date into fixed-length
// slots, skipping anything that collides with a break or a buffered booking
// and any tile that a DST transition leaves without an unambiguous
// wall-clock reading.
func GenerateSlots(p SlotParams) ([]Slot, error) {
	if p.Rule == nil || !p.Rule.IsAvailable {
		return nil, nil
	}
	if p.Interval <= 0 {
		return nil, configErrorf("interval_minutes", "slot interval must be positive, got %s", p.Interval)
	}
	if p.Buffer < 0 {
		return nil, configErrorf("buffer_minutes", "buffer must not be negative, got %s", p.Buffer)
	}
	loc := p.Location
	if loc == nil {
		return nil, configErrorf("timezone", "tenant location is required")
	}
	display := p.Display
	if display == nil {
		display = loc
	}

	bookings, err := p.Bookings.Active(p.CourtID, p.ExcludeBookingID)
	if err != nil {
		return nil, err
	}

	window := p.Rule.Interval(p.Date, loc)
	breaks := p.Rule.breakIntervals(p.Date, loc)

	var slots []Slot
	cursor := window.Start
	for !cursor.Add(p.Interval).After(window.End) {
		candidate := Interval{Start: cursor, End: cursor.Add(p.Interval)}

		resume, blocked := nextFreeStart(candidate, breaks, bookings, p.Buffer, p.ExcludeUserID)
		if blocked {
			if !resume.After(cursor) {
				resume = cursor.Add(minAdvance)
			}
			cursor = resume
			continue
		}
		// A slot that cannot be requested back by its wall-clock times is
		// not offered.
		if _, ok := wallClock(candidate, loc); !ok {
			cursor = candidate.End
			continue
		}

		slots = append(slots, Slot{
			Start:   candidate.Start.In(display).Format("15:04"),
			End:     candidate.End.In(display).Format("15:04"),
			StartAt: candidate.Start,
			EndAt:   candidate.End,
		})
		cursor = candidate.End
	}
	return slots, nil
}

// nextFreeStart reports whether candidate collides with anything and, if so,
// the earliest start that clears every blocker it hit.
func nextFreeStart(candidate Interval, breaks []Interval, bookings BookingSet, buffer time.Duration, excludeUserID int64) (time.Time, bool) {
	var resume time.Time
	blocked := false
	push := func(t time.Time) {
		if !blocked || t.After(resume) {
			resume = t
		}
		blocked = true
	}

	for _, brk := range breaks {
		if candidate.Overlaps(brk) {
			push(brk.End)
		}
	}

	for _, b := range bookings {
		block, _ := b.block(candidate, buffer, excludeUserID)
		if !candidate.Overlaps(block) {
			continue
		}
		// The owner may start again right at the booking's end.
		if b.ownedBy(excludeUserID) && candidate.Start.Before(b.End) {
			push(b.End)
			continue
		}
		push(block.End)
	}
	return resume, blocked
}
