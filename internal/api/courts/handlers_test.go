package courts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/courtbook/internal/api"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/request"
	"github.com/codr1/courtbook/internal/testutil"
)

func setupCourtsTest(t *testing.T) (http.Handler, testutil.Fixture) {
	t.Helper()

	service = nil
	serviceOnce = sync.Once{}

	database := testutil.NewTestDB(t)
	f := testutil.SeedCourt(t, database, testutil.FixtureOptions{Timezone: "America/New_York"})
	testutil.AddCourtWeekdayRule(t, database, f, time.Monday, "09:00", "21:00", [2]string{"13:00", "14:00"})
	InitHandlers(booking.NewService(database, nil, booking.Options{DefaultTimezone: "UTC", MaxRangeDays: 31}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/courts/{court_id}/slots", HandleSlots)
	mux.HandleFunc("GET /api/v1/courts/{court_id}/available-dates", HandleAvailableDates)
	mux.HandleFunc("POST /api/v1/courts/{court_id}/conflicts", HandleCheckConflict)
	return api.ChainMiddleware(mux, api.WithActor), f
}

func doRequest(h http.Handler, method, target, body string, actorID int64) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if actorID != 0 {
		req.Header.Set(request.ActorHeader, fmt.Sprint(actorID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleSlots(t *testing.T) {
	h, f := setupCourtsTest(t)

	rec := doRequest(h, http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/slots?date=2026-06-15", f.CourtID), "", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp slotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Timezone != "America/New_York" {
		t.Fatalf("timezone = %q, want America/New_York", resp.Timezone)
	}
	if len(resp.Slots) != 11 {
		t.Fatalf("slots = %d, want 11", len(resp.Slots))
	}
	if resp.Slots[0].Start != "09:00" || resp.Slots[len(resp.Slots)-1].End != "21:00" {
		t.Fatalf("slots span %s-%s, want 09:00-21:00", resp.Slots[0].Start, resp.Slots[len(resp.Slots)-1].End)
	}
	for _, slot := range resp.Slots {
		if slot.Start == "13:00" {
			t.Fatalf("slot during break returned: %+v", slot)
		}
	}
}

func TestHandleSlotsLoadOutlivesCancelledCaller(t *testing.T) {
	h, f := setupCourtsTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/slots?date=2026-06-15", f.CourtID), nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp slotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 11 {
		t.Fatalf("slots = %d, want 11", len(resp.Slots))
	}
}

func TestHandleSlotsClosedDateIsEmptyList(t *testing.T) {
	h, f := setupCourtsTest(t)

	rec := doRequest(h, http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/slots?date=2026-06-16", f.CourtID), "", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"slots":[]`) {
		t.Fatalf("body = %s, want empty slots array", rec.Body.String())
	}
}

func TestHandleSlotsErrors(t *testing.T) {
	h, f := setupCourtsTest(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing_date", fmt.Sprintf("/api/v1/courts/%d/slots", f.CourtID), http.StatusBadRequest},
		{"bad_date", fmt.Sprintf("/api/v1/courts/%d/slots?date=06/15/2026", f.CourtID), http.StatusBadRequest},
		{"bad_court", "/api/v1/courts/abc/slots?date=2026-06-15", http.StatusBadRequest},
		{"bad_exclude", fmt.Sprintf("/api/v1/courts/%d/slots?date=2026-06-15&exclude_booking_id=-1", f.CourtID), http.StatusBadRequest},
		{"unknown_court", "/api/v1/courts/9999/slots?date=2026-06-15", http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodGet, test.target, "", 0)
			if rec.Code != test.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, test.want, rec.Body.String())
			}
		})
	}
}

func TestHandleAvailableDates(t *testing.T) {
	h, f := setupCourtsTest(t)

	rec := doRequest(h, http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/available-dates?start=2026-06-15&end=2026-06-28", f.CourtID), "", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp availableDatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := []string{"2026-06-15", "2026-06-22"}
	if len(resp.Dates) != len(want) || resp.Dates[0] != want[0] || resp.Dates[1] != want[1] {
		t.Fatalf("dates = %v, want %v", resp.Dates, want)
	}

	rec = doRequest(h, http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/available-dates?start=2026-06-28&end=2026-06-15", f.CourtID), "", 0)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reversed range status = %d, want 400", rec.Code)
	}
	rec = doRequest(h, http.MethodGet, fmt.Sprintf("/api/v1/courts/%d/available-dates?start=2026-06-01&end=2026-08-01", f.CourtID), "", 0)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized range status = %d, want 400", rec.Code)
	}
}

func TestHandleCheckConflict(t *testing.T) {
	h, f := setupCourtsTest(t)
	target := fmt.Sprintf("/api/v1/courts/%d/conflicts", f.CourtID)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		available  bool
		reason     string
	}{
		{"open_slot", `{"date":"2026-06-15","start":"10:00","end":"11:00"}`, http.StatusOK, true, ""},
		{"break", `{"date":"2026-06-15","start":"13:00","end":"14:00"}`, http.StatusOK, false, "break_conflict"},
		{"outside_hours", `{"date":"2026-06-15","start":"20:30","end":"21:30"}`, http.StatusOK, false, "outside_operating_hours"},
		{"closed_day", `{"date":"2026-06-16","start":"10:00","end":"11:00"}`, http.StatusOK, false, "no_operating_hours"},
		{"zero_length", `{"date":"2026-06-15","start":"10:00","end":"10:00"}`, http.StatusBadRequest, false, ""},
		{"unknown_field", `{"date":"2026-06-15","start":"10:00","end":"11:00","court":1}`, http.StatusBadRequest, false, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, target, test.body, f.UserID)
			if rec.Code != test.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, test.wantStatus, rec.Body.String())
			}
			if test.wantStatus != http.StatusOK {
				return
			}
			var resp conflictCheckResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Available != test.available {
				t.Fatalf("available = %v, want %v", resp.Available, test.available)
			}
			if !test.available && (resp.Conflict == nil || resp.Conflict.Reason != test.reason) {
				t.Fatalf("conflict = %+v, want reason %s", resp.Conflict, test.reason)
			}
		})
	}
}

func TestHandlersWithoutService(t *testing.T) {
	service = nil
	serviceOnce = sync.Once{}

	rec := httptest.NewRecorder()
	HandleSlots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/courts/1/slots?date=2026-06-15", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
