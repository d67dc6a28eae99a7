package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/availability"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/locks"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteErrorMessage writes {"error": message}.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := WriteJSON(w, status, errorResponse{Error: message}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write error response")
	}
}

// ErrorStatus maps service errors to an HTTP status and client message.
func ErrorStatus(err error) (int, string) {
	var (
		herr     HandlerError
		ferr     FieldError
		conflict *availability.Conflict
	)
	switch {
	case errors.As(err, &herr):
		return herr.Status, herr.Message
	case errors.As(err, &ferr):
		return http.StatusBadRequest, ferr.Error()
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Message
	case errors.Is(err, availability.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrCourtNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, booking.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, booking.ErrBookingCancelled):
		return http.StatusConflict, err.Error()
	case errors.Is(err, locks.ErrLockTimeout):
		return http.StatusServiceUnavailable, "Court is busy, try again"
	case availability.IsConfigurationError(err):
		return http.StatusInternalServerError, "Court availability is misconfigured"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteError writes err as JSON. Server-side failures are logged with msg.
func WriteError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, message := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg(msg)
	}
	WriteErrorMessage(w, r, status, message)
}
