package apiutil

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/availability"
)

type ConflictWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ConflictResponse is the 409 body for a rejected booking window.
type ConflictResponse struct {
	Error         string          `json:"error"`
	Reason        string          `json:"reason"`
	Message       string          `json:"message"`
	Window        *ConflictWindow `json:"window,omitempty"`
	BookingID     int64           `json:"booking_id,omitempty"`
	BufferOnly    bool            `json:"buffer_only,omitempty"`
	BufferMinutes int64           `json:"buffer_minutes,omitempty"`
}

func NewConflictResponse(c *availability.Conflict) ConflictResponse {
	resp := ConflictResponse{
		Error:     "conflict",
		Reason:    string(c.Reason),
		Message:   c.Message,
		BookingID: c.BookingID,
	}
	if !c.Window.Start.IsZero() {
		resp.Window = &ConflictWindow{
			Start: c.Window.Start.UTC().Format(time.RFC3339),
			End:   c.Window.End.UTC().Format(time.RFC3339),
		}
	}
	if c.BufferOnly {
		resp.BufferOnly = true
		resp.BufferMinutes = int64(c.Buffer / time.Minute)
	}
	return resp
}

// WriteConflict writes a 409 with the conflict details.
func WriteConflict(w http.ResponseWriter, r *http.Request, c *availability.Conflict) {
	log.Ctx(r.Context()).Debug().
		Str("reason", string(c.Reason)).
		Int64("conflicting_booking_id", c.BookingID).
		Msg("Booking window rejected")
	if err := WriteJSON(w, http.StatusConflict, NewConflictResponse(c)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write conflict response")
	}
}
