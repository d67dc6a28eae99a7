package availability

import (
	"sort"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is an existing reservation as the engine sees it: UTC instants and
// the owning user.
type Booking struct {
	ID      int64
	CourtID int64
	UserID  int64
	Start   time.Time
	End     time.Time
	Status  BookingStatus
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// block returns the span b occupies for a candidate. The buffer after b is
// waived only for the same user booking back-to-back with no gap.
func (b Booking) block(candidate Interval, buffer time.Duration, excludeUserID int64) (Interval, bool) {
	if b.sequentialFor(candidate, excludeUserID) {
		return b.Interval(), false
	}
	return Interval{Start: b.Start, End: b.End.Add(buffer)}, buffer > 0
}

func (b Booking) sequentialFor(candidate Interval, excludeUserID int64) bool {
	if excludeUserID == 0 || b.UserID != excludeUserID {
		return false
	}
	return sameMinute(candidate.Start, b.End) || sameMinute(candidate.End, b.Start)
}

func (b Booking) ownedBy(userID int64) bool {
	return userID != 0 && b.UserID == userID
}

// BookingSet is the set of bookings relevant to one court around one date.
type BookingSet []Booking

// Active drops cancelled bookings, bookings on other courts, and the booking
// being edited, and orders the rest by start.
func (s BookingSet) Active(courtID, excludeBookingID int64) (BookingSet, error) {
	out := make(BookingSet, 0, len(s))
	for _, b := range s {
		if b.Status == StatusCancelled {
			continue
		}
		if excludeBookingID != 0 && b.ID == excludeBookingID {
			continue
		}
		if b.CourtID != 0 && courtID != 0 && b.CourtID != courtID {
			continue
		}
		if b.End.Before(b.Start) {
			return nil, configErrorf("booking", "booking %d ends before it starts", b.ID)
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func sameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}
