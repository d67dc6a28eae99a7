package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest marks caller input that cannot describe a booking at all,
// such as a zero-length window or a reversed date range.
var ErrInvalidRequest = errors.New("invalid availability request")

// Reason identifies which booking rule a candidate violated.
type Reason string

const (
	ReasonNoOperatingHours      Reason = "no_operating_hours"
	ReasonCourtUnavailable      Reason = "court_unavailable"
	ReasonOutsideOperatingHours Reason = "outside_operating_hours"
	ReasonBreakConflict         Reason = "break_conflict"
	ReasonBookingConflict       Reason = "booking_conflict"
)

// Conflict is an expected business-rule rejection. It is returned as a value
// next to the error result, never in place of it.
type Conflict struct {
	Reason Reason
	// Window is the offending rule window, break, or existing booking.
	Window Interval
	// BufferOnly is set for booking conflicts that only exist because of the
	// post-booking buffer.
	BufferOnly bool
	Buffer     time.Duration
	// BookingID is the existing booking that blocked the candidate, if any.
	BookingID int64
	Message   string
}

func (c *Conflict) Error() string {
	return c.Message
}

func newConflict(reason Reason, window Interval, loc *time.Location) *Conflict {
	c := &Conflict{Reason: reason, Window: window}
	switch reason {
	case ReasonNoOperatingHours:
		c.Message = "no operating hours configured for this date"
	case ReasonCourtUnavailable:
		c.Message = "court marked unavailable on this date"
	case ReasonOutsideOperatingHours:
		c.Message = fmt.Sprintf("outside operating hours (%s)", window.Format(loc))
	case ReasonBreakConflict:
		c.Message = fmt.Sprintf("conflicts with a configured break (%s)", window.Format(loc))
	case ReasonBookingConflict:
		c.Message = fmt.Sprintf("slot already booked (%s)", window.Format(loc))
	default:
		c.Message = string(reason)
	}
	return c
}

func newBookingConflict(existing Booking, buffer time.Duration, bufferOnly bool, loc *time.Location) *Conflict {
	c := newConflict(ReasonBookingConflict, existing.Interval(), loc)
	c.BookingID = existing.ID
	c.Buffer = buffer
	c.BufferOnly = bufferOnly
	if bufferOnly {
		c.Message = fmt.Sprintf(
			"slot already booked (%s); a %d-minute buffer is required after each booking, next start %s",
			existing.Interval().Format(loc),
			int(buffer/time.Minute),
			existing.End.Add(buffer).In(loc).Format("15:04"),
		)
	}
	return c
}

// ConfigurationError reports stored availability data the engine cannot
// interpret. Callers surface it as a server fault.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("availability configuration: %v", e.Err)
	}
	return fmt.Sprintf("availability configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
