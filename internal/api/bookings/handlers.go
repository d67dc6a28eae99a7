// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/availability"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/request"
)

var (
	service     *booking.Service
	serviceOnce sync.Once
)

// Writes wait on the court lock, so they get more room than reads.
const bookingsWriteTimeout = 15 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

type createRequest struct {
	CourtID int64  `json:"court_id"`
	Date    string `json:"date"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Status  string `json:"status"`
}

type updateRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc, actorID, ok := prepareWrite(w, r)
	if !ok {
		return
	}

	var payload createRequest
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if payload.CourtID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "court_id", Reason: "must be greater than 0"}, "Invalid court_id")
		return
	}
	date, err := apiutil.ParseDateField(payload.Date, "date")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid date")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsWriteTimeout)
	defer cancel()

	created, conflict, err := svc.Create(ctx, booking.CreateParams{
		CourtID: payload.CourtID,
		UserID:  actorID,
		Date:    date,
		Start:   payload.Start,
		End:     payload.End,
		Status:  availability.BookingStatus(payload.Status),
	})
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create booking")
		return
	}
	if conflict != nil {
		apiutil.WriteConflict(w, r, conflict)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// PUT /api/v1/bookings/{booking_id}
func HandleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc, actorID, ok := prepareWrite(w, r)
	if !ok {
		return
	}

	bookingID, err := apiutil.PathID(r, "booking_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid booking_id")
		return
	}

	var payload updateRequest
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	date, err := apiutil.ParseDateField(payload.Date, "date")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid date")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsWriteTimeout)
	defer cancel()

	updated, conflict, err := svc.Update(ctx, booking.UpdateParams{
		BookingID: bookingID,
		ActorID:   actorID,
		Date:      date,
		Start:     payload.Start,
		End:       payload.End,
	})
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update booking")
		return
	}
	if conflict != nil {
		apiutil.WriteConflict(w, r, conflict)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// POST /api/v1/bookings/{booking_id}/cancel
func HandleBookingCancel(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc, actorID, ok := prepareWrite(w, r)
	if !ok {
		return
	}

	bookingID, err := apiutil.PathID(r, "booking_id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid booking_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsWriteTimeout)
	defer cancel()

	cancelled, err := svc.Cancel(ctx, bookingID, actorID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to cancel booking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, cancelled); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking response")
	}
}

// prepareWrite returns the service and the acting user. Writes are never
// anonymous.
func prepareWrite(w http.ResponseWriter, r *http.Request) (*booking.Service, int64, bool) {
	svc := loadService()
	if svc == nil {
		log.Ctx(r.Context()).Error().Msg("Booking service not initialized")
		apiutil.WriteErrorMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
		return nil, 0, false
	}
	actorID := request.ActorFromContext(r.Context())
	if actorID == 0 {
		apiutil.WriteErrorMessage(w, r, http.StatusUnauthorized, request.ActorHeader+" header is required")
		return nil, 0, false
	}
	return svc, actorID, true
}

func loadService() *booking.Service {
	return service
}
