package availability

import (
	"errors"
	"testing"
	"time"
)

func TestResolveSlots(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		court    Court
		bookings func(t *testing.T) BookingSet
		opts     SlotOptions
		want     []string
	}{
		{
			name:  "open_day_hourly",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "21:00"),
			court: testCourt(60, 0),
			want: []string{
				"09:00", "10:00", "11:00", "12:00", "13:00", "14:00",
				"15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
			},
		},
		{
			name:  "break_moves_cursor_to_break_end",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "13:00", [2]string{"11:00", "11:30"}),
			court: testCourt(60, 0),
			want:  []string{"09:00", "10:00", "11:30"},
		},
		{
			name:  "buffered_booking",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "14:00"),
			court: testCourt(60, 15),
			bookings: func(t *testing.T) BookingSet {
				return BookingSet{booking(t, 100, 7, monday, "10:00", "11:00", time.UTC)}
			},
			want: []string{"09:00", "11:15", "12:15"},
		},
		{
			name:  "owner_books_back_to_back",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "14:00"),
			court: testCourt(60, 15),
			bookings: func(t *testing.T) BookingSet {
				return BookingSet{booking(t, 100, 7, monday, "10:00", "11:00", time.UTC)}
			},
			opts: SlotOptions{ExcludeUserID: 7},
			want: []string{"09:00", "11:00", "12:00", "13:00"},
		},
		{
			name:  "other_user_still_buffered",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "14:00"),
			court: testCourt(60, 15),
			bookings: func(t *testing.T) BookingSet {
				return BookingSet{booking(t, 100, 7, monday, "10:00", "11:00", time.UTC)}
			},
			opts: SlotOptions{ExcludeUserID: 8},
			want: []string{"09:00", "11:15", "12:15"},
		},
		{
			name:  "excluded_booking_does_not_block_itself",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "14:00"),
			court: testCourt(60, 15),
			bookings: func(t *testing.T) BookingSet {
				return BookingSet{booking(t, 100, 7, monday, "10:00", "11:00", time.UTC)}
			},
			opts: SlotOptions{ExcludeBookingID: 100},
			want: []string{"09:00", "10:00", "11:00", "12:00", "13:00"},
		},
		{
			name:  "cancelled_and_other_court_bookings_ignored",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "12:00"),
			court: testCourt(60, 15),
			bookings: func(t *testing.T) BookingSet {
				cancelled := booking(t, 100, 7, monday, "09:00", "10:00", time.UTC)
				cancelled.Status = StatusCancelled
				elsewhere := booking(t, 101, 7, monday, "10:00", "11:00", time.UTC)
				elsewhere.CourtID = 99
				return BookingSet{cancelled, elsewhere}
			},
			want: []string{"09:00", "10:00", "11:00"},
		},
		{
			name:  "pending_bookings_block",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "12:00"),
			court: testCourt(60, 0),
			bookings: func(t *testing.T) BookingSet {
				pending := booking(t, 100, 7, monday, "10:00", "11:00", time.UTC)
				pending.Status = StatusPending
				return BookingSet{pending}
			},
			want: []string{"09:00", "11:00"},
		},
		{
			name:  "window_shorter_than_interval",
			rule:  courtWeekdayRule(t, 1, time.Monday, "09:00", "09:45"),
			court: testCourt(60, 0),
			want:  nil,
		},
		{
			name:  "overnight_window_spans_midnight",
			rule:  courtWeekdayRule(t, 1, time.Monday, "22:00", "02:00"),
			court: testCourt(60, 0),
			want:  []string{"22:00", "23:00", "00:00", "01:00"},
		},
		{
			name:  "overnight_break_after_midnight",
			rule:  courtWeekdayRule(t, 1, time.Monday, "22:00", "02:00", [2]string{"00:00", "00:30"}),
			court: testCourt(30, 0),
			want:  []string{"22:00", "22:30", "23:00", "23:30", "00:30", "01:00", "01:30"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cal := Calendar{
				Court:    test.court,
				Rules:    []Rule{test.rule},
				Location: time.UTC,
			}
			if test.bookings != nil {
				cal.Bookings = test.bookings(t)
			}
			slots, err := cal.ResolveSlots(monday, test.opts)
			if err != nil {
				t.Fatalf("ResolveSlots() error = %v", err)
			}
			if got := slotStarts(slots); !equalStrings(got, test.want) {
				t.Fatalf("ResolveSlots() starts = %v, want %v", got, test.want)
			}
		})
	}
}

func TestResolveSlotsOvernightInstants(t *testing.T) {
	cal := Calendar{
		Court:    testCourt(60, 0),
		Rules:    []Rule{courtWeekdayRule(t, 1, time.Monday, "22:00", "02:00")},
		Location: time.UTC,
	}
	slots, err := cal.ResolveSlots(monday, SlotOptions{})
	if err != nil {
		t.Fatalf("ResolveSlots() error = %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("ResolveSlots() returned %d slots, want 4", len(slots))
	}
	last := slots[len(slots)-1]
	wantStart := time.Date(2026, 6, 16, 1, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 6, 16, 2, 0, 0, 0, time.UTC)
	if !last.StartAt.Equal(wantStart) || !last.EndAt.Equal(wantEnd) {
		t.Fatalf("last slot = %s..%s, want %s..%s", last.StartAt, last.EndAt, wantStart, wantEnd)
	}
}

func TestResolveSlotsClosedDate(t *testing.T) {
	rule := courtWeekdayRule(t, 1, time.Monday, "09:00", "21:00")
	rule.IsAvailable = false
	cal := Calendar{Court: testCourt(60, 0), Rules: []Rule{rule}, Location: time.UTC}

	slots, err := cal.ResolveSlots(monday, SlotOptions{})
	if err != nil {
		t.Fatalf("ResolveSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("ResolveSlots() = %v, want none", slotStarts(slots))
	}

	for _, window := range [][2]string{{"09:00", "10:00"}, {"12:00", "13:00"}, {"06:00", "07:00"}} {
		conflict, err := cal.CheckConflict(Request{Date: monday, Start: window[0], End: window[1]})
		if err != nil {
			t.Fatalf("CheckConflict() error = %v", err)
		}
		if conflict == nil || conflict.Reason != ReasonCourtUnavailable {
			t.Fatalf("CheckConflict(%v) = %+v, want %s", window, conflict, ReasonCourtUnavailable)
		}
	}
}

func TestResolveSlotsDisplayTimezone(t *testing.T) {
	tokyo := mustLocation(t, "Asia/Tokyo")
	cal := Calendar{
		Court:    testCourt(60, 0),
		Rules:    []Rule{courtWeekdayRule(t, 1, time.Monday, "09:00", "11:00")},
		Location: time.UTC,
	}
	slots, err := cal.ResolveSlots(monday, SlotOptions{Display: tokyo})
	if err != nil {
		t.Fatalf("ResolveSlots() error = %v", err)
	}
	want := []string{"18:00", "19:00"}
	if got := slotStarts(slots); !equalStrings(got, want) {
		t.Fatalf("ResolveSlots() starts = %v, want %v", got, want)
	}
	if slots[0].End != "19:00" {
		t.Fatalf("first slot end = %s, want 19:00", slots[0].End)
	}
}

func TestResolveSlotsSeesBookingsAcrossUTCDayBoundary(t *testing.T) {
	tokyo := mustLocation(t, "Asia/Tokyo")
	// 09:00-10:00 in Tokyo on Monday is 00:00-01:00 UTC the same day, and
	// 08:00 Tokyo is 23:00 UTC on Sunday.
	early := Booking{
		ID:      1,
		CourtID: testCourtID,
		UserID:  5,
		Start:   time.Date(2026, 6, 14, 23, 0, 0, 0, time.UTC),
		End:     time.Date(2026, 6, 15, 1, 0, 0, 0, time.UTC),
		Status:  StatusConfirmed,
	}
	cal := Calendar{
		Court:    testCourt(60, 0),
		Rules:    []Rule{courtWeekdayRule(t, 1, time.Monday, "08:00", "12:00")},
		Bookings: BookingSet{early},
		Location: tokyo,
	}
	slots, err := cal.ResolveSlots(monday, SlotOptions{})
	if err != nil {
		t.Fatalf("ResolveSlots() error = %v", err)
	}
	want := []string{"10:00", "11:00"}
	if got := slotStarts(slots); !equalStrings(got, want) {
		t.Fatalf("ResolveSlots() starts = %v, want %v", got, want)
	}
}

func TestResolveSlotsConfigurationErrors(t *testing.T) {
	rule := courtWeekdayRule(t, 1, time.Monday, "09:00", "21:00")

	tests := []struct {
		name string
		cal  Calendar
	}{
		{name: "zero_interval", cal: Calendar{Court: testCourt(0, 0), Rules: []Rule{rule}, Location: time.UTC}},
		{name: "negative_buffer", cal: Calendar{Court: testCourt(60, -5), Rules: []Rule{rule}, Location: time.UTC}},
		{name: "missing_location", cal: Calendar{Court: testCourt(60, 0), Rules: []Rule{rule}}},
		{
			name: "reversed_booking",
			cal: Calendar{
				Court:    testCourt(60, 0),
				Rules:    []Rule{rule},
				Location: time.UTC,
				Bookings: BookingSet{booking(t, 1, 1, monday, "11:00", "10:00", time.UTC)},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			slots, err := test.cal.ResolveSlots(monday, SlotOptions{})
			if !IsConfigurationError(err) {
				t.Fatalf("ResolveSlots() = %v, %v; want ConfigurationError", slotStarts(slots), err)
			}
		})
	}
}

func TestGenerateSlotsTerminatesOnDegenerateBookings(t *testing.T) {
	rule := courtWeekdayRule(t, 1, time.Monday, "09:00", "12:00")
	instant := at(t, monday, "10:00", time.UTC)
	zero := Booking{ID: 1, CourtID: testCourtID, UserID: 3, Start: instant, End: instant, Status: StatusConfirmed}

	slots, err := GenerateSlots(SlotParams{
		Rule:          &rule,
		Date:          monday,
		Location:      time.UTC,
		Bookings:      BookingSet{zero, zero},
		CourtID:       testCourtID,
		Interval:      time.Hour,
		Buffer:        10 * time.Minute,
		ExcludeUserID: 3,
	})
	if err != nil {
		t.Fatalf("GenerateSlots() error = %v", err)
	}
	want := []string{"09:00", "10:00", "11:00"}
	if got := slotStarts(slots); !equalStrings(got, want) {
		t.Fatalf("GenerateSlots() starts = %v, want %v", got, want)
	}

	// Anyone else still waits out the buffer after the empty booking.
	slots, err = GenerateSlots(SlotParams{
		Rule:     &rule,
		Date:     monday,
		Location: time.UTC,
		Bookings: BookingSet{zero, zero},
		CourtID:  testCourtID,
		Interval: time.Hour,
		Buffer:   10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("GenerateSlots() error = %v", err)
	}
	want = []string{"09:00", "10:10"}
	if got := slotStarts(slots); !equalStrings(got, want) {
		t.Fatalf("GenerateSlots() starts = %v, want %v", got, want)
	}
}

func TestResolveAvailableDates(t *testing.T) {
	closedWednesday := Rule{
		ID:           9,
		TenantID:     testTenantID,
		CourtID:      ptr(testCourtID),
		SpecificDate: ptr(monday.AddDays(2)),
		Window:       mustWindow(t, "09:00", "21:00"),
		IsAvailable:  false,
	}
	rules := []Rule{closedWednesday}
	for _, day := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday} {
		rules = append(rules, courtWeekdayRule(t, int64(day)+1, day, "09:00", "11:00"))
	}
	// Tuesday is fully booked.
	tuesday := monday.AddDays(1)
	cal := Calendar{
		Court:    testCourt(60, 0),
		Rules:    rules,
		Location: time.UTC,
		Bookings: BookingSet{booking(t, 1, 4, tuesday, "09:00", "11:00", time.UTC)},
	}

	dates, err := cal.ResolveAvailableDates(monday, monday.AddDays(6), SlotOptions{})
	if err != nil {
		t.Fatalf("ResolveAvailableDates() error = %v", err)
	}
	got := make([]string, len(dates))
	for i, d := range dates {
		got[i] = d.String()
	}
	want := []string{"2026-06-15", "2026-06-18"}
	if !equalStrings(got, want) {
		t.Fatalf("ResolveAvailableDates() = %v, want %v", got, want)
	}

	dates, err = cal.ResolveAvailableDates(monday, monday.AddDays(6), SlotOptions{ExcludeBookingID: 1})
	if err != nil {
		t.Fatalf("ResolveAvailableDates() error = %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("ResolveAvailableDates(exclude) returned %d dates, want 3", len(dates))
	}

	if _, err := cal.ResolveAvailableDates(monday, monday.AddDays(-1), SlotOptions{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("ResolveAvailableDates(reversed) error = %v, want ErrInvalidRequest", err)
	}
}
