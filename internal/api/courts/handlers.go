// internal/api/courts/handlers.go
package courts

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/availability"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/request"
)

var (
	service     *booking.Service
	serviceOnce sync.Once
	slotReads   singleflight.Group
)

const courtsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

type slotsResponse struct {
	CourtID  int64               `json:"court_id"`
	Date     string              `json:"date"`
	Timezone string              `json:"timezone"`
	Slots    []availability.Slot `json:"slots"`
}

type availableDatesResponse struct {
	CourtID int64    `json:"court_id"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Dates   []string `json:"dates"`
}

type conflictRequest struct {
	Date             string `json:"date"`
	Start            string `json:"start"`
	End              string `json:"end"`
	ExcludeBookingID int64  `json:"exclude_booking_id"`
}

type conflictCheckResponse struct {
	Available bool                      `json:"available"`
	Conflict  *apiutil.ConflictResponse `json:"conflict,omitempty"`
}

// GET /api/v1/courts/{court_id}/slots
func HandleSlots(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		apiutil.WriteErrorMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.PathID(r, "court_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid court_id")
		return
	}
	date, err := apiutil.ParseDateField(r.URL.Query().Get("date"), "date")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid date")
		return
	}
	excludeID, err := apiutil.OptionalQueryID(r, "exclude_booking_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid exclude_booking_id")
		return
	}
	actorID := request.ActorFromContext(r.Context())

	// Identical reads share one calendar load. The load is detached from any
	// one caller so a cancelled leader does not fail the requests sharing it.
	key := fmt.Sprintf("%d|%s|%d|%d", courtID, date, excludeID, actorID)
	result, err, shared := slotReads.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), courtsQueryTimeout)
		defer cancel()
		return svc.Slots(ctx, courtID, date, excludeID, actorID)
	})
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load slots")
		return
	}
	day, _ := result.(booking.DaySlots)
	slots := day.Slots
	if slots == nil {
		slots = []availability.Slot{}
	}

	logger.Debug().
		Int64("court_id", courtID).
		Str("date", date.String()).
		Int("slots", len(slots)).
		Bool("shared", shared).
		Msg("Slots resolved")

	resp := slotsResponse{CourtID: courtID, Date: date.String(), Slots: slots}
	if day.Location != nil {
		resp.Timezone = day.Location.String()
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write slots response")
	}
}

// GET /api/v1/courts/{court_id}/available-dates
func HandleAvailableDates(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		apiutil.WriteErrorMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.PathID(r, "court_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid court_id")
		return
	}
	start, err := apiutil.ParseDateField(r.URL.Query().Get("start"), "start")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid start")
		return
	}
	end, err := apiutil.ParseDateField(r.URL.Query().Get("end"), "end")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid end")
		return
	}
	excludeID, err := apiutil.OptionalQueryID(r, "exclude_booking_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid exclude_booking_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	dates, err := svc.AvailableDates(ctx, courtID, start, end, excludeID, request.ActorFromContext(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load available dates")
		return
	}

	resp := availableDatesResponse{
		CourtID: courtID,
		Start:   start.String(),
		End:     end.String(),
		Dates:   make([]string, 0, len(dates)),
	}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.String())
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write available dates response")
	}
}

// POST /api/v1/courts/{court_id}/conflicts
//
// Dry run of a booking window. Rejections are reported with 200 and
// available=false; nothing is written.
func HandleCheckConflict(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Booking service not initialized")
		apiutil.WriteErrorMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	courtID, err := apiutil.PathID(r, "court_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid court_id")
		return
	}

	var payload conflictRequest
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	date, err := apiutil.ParseDateField(payload.Date, "date")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid date")
		return
	}
	if payload.ExcludeBookingID < 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "exclude_booking_id", Reason: "must be 0 or greater"}, "Invalid exclude_booking_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	conflict, err := svc.CheckConflict(ctx, courtID, availability.Request{
		Date:             date,
		Start:            payload.Start,
		End:              payload.End,
		ExcludeUserID:    request.ActorFromContext(r.Context()),
		ExcludeBookingID: payload.ExcludeBookingID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to check conflict")
		return
	}

	resp := conflictCheckResponse{Available: conflict == nil}
	if conflict != nil {
		body := apiutil.NewConflictResponse(conflict)
		resp.Conflict = &body
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write conflict response")
	}
}

func loadService() *booking.Service {
	return service
}
