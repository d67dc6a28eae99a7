package availability

import (
	"testing"
	"time"
)

const (
	testTenantID    int64 = 1
	testCourtID     int64 = 10
	testCourtTypeID int64 = 20
)

// monday is 2026-06-15.
var monday = Date{Year: 2026, Month: time.June, Day: 15}

func ptr[T any](v T) *T {
	return &v
}

func mustClock(t *testing.T, raw string) ClockTime {
	t.Helper()
	c, err := ParseClockTime(raw)
	if err != nil {
		t.Fatalf("ParseClockTime(%q) error = %v", raw, err)
	}
	return c
}

func mustWindow(t *testing.T, start, end string) TimeWindow {
	t.Helper()
	w, err := ParseTimeWindow(start, end)
	if err != nil {
		t.Fatalf("ParseTimeWindow(%q, %q) error = %v", start, end, err)
	}
	return w
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func courtWeekdayRule(t *testing.T, id int64, day time.Weekday, start, end string, breaks ...[2]string) Rule {
	t.Helper()
	rule := Rule{
		ID:          id,
		TenantID:    testTenantID,
		CourtID:     ptr(testCourtID),
		DayOfWeek:   ptr(day),
		Window:      mustWindow(t, start, end),
		IsAvailable: true,
	}
	for _, brk := range breaks {
		rule.Breaks = append(rule.Breaks, mustWindow(t, brk[0], brk[1]))
	}
	return rule
}

func testCourt(interval, buffer int) Court {
	return Court{
		ID:              testCourtID,
		TenantID:        testTenantID,
		CourtTypeID:     testCourtTypeID,
		IntervalMinutes: interval,
		BufferMinutes:   buffer,
	}
}

// at returns the UTC instant of a wall-clock time on date in loc.
func at(t *testing.T, date Date, clock string, loc *time.Location) time.Time {
	t.Helper()
	return LocalToUTC(date, mustClock(t, clock), loc)
}

func booking(t *testing.T, id, userID int64, date Date, start, end string, loc *time.Location) Booking {
	t.Helper()
	return Booking{
		ID:      id,
		CourtID: testCourtID,
		UserID:  userID,
		Start:   at(t, date, start, loc),
		End:     at(t, date, end, loc),
		Status:  StatusConfirmed,
	}
}

func slotStarts(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, slot := range slots {
		out[i] = slot.Start
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
