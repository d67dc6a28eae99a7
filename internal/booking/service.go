package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/availability"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/locks"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBookingCancelled = errors.New("booking is cancelled")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotOwner         = errors.New("booking belongs to another user")
)

// Booking is a stored booking as returned to callers. Start and End are UTC.
type Booking struct {
	ID      int64     `json:"id"`
	CourtID int64     `json:"court_id"`
	UserID  int64     `json:"user_id"`
	Status  string    `json:"status"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type Options struct {
	DefaultTimezone string
	LockTimeout     time.Duration
	PendingTTL      time.Duration
	MaxRangeDays    int
}

// Service is the booking read and write path. Writes hold the court's lock
// for the whole check-then-insert sequence and run in an immediate
// transaction; the partial unique index on bookings backs both up.
type Service struct {
	db     *db.DB
	locker locks.Locker
	loader Loader
	opts   Options
	now    func() time.Time
}

func NewService(database *db.DB, locker locks.Locker, opts Options) *Service {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 5 * time.Second
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 15 * time.Minute
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 62
	}
	if locker == nil {
		locker = locks.NewLocalLocker()
	}
	return &Service{
		db:     database,
		locker: locker,
		loader: Loader{DefaultTimezone: opts.DefaultTimezone},
		opts:   opts,
		now:    time.Now,
	}
}

// DaySlots is one date's bookable slots and the zone they are rendered in.
type DaySlots struct {
	Location *time.Location
	Slots    []availability.Slot
}

// Slots lists bookable slots on a local date, rendered in the actor's zone:
// the user's own zone when set, else the court's tenant zone. The actor gets
// the same-user sequential bypass.
func (s *Service) Slots(ctx context.Context, courtID int64, date availability.Date, excludeBookingID, actorID int64) (DaySlots, error) {
	cal, err := s.loader.LoadCalendar(ctx, s.db.Queries, courtID, date, date)
	if err != nil {
		return DaySlots{}, err
	}
	display, err := s.displayLocation(ctx, s.db.Queries, cal, actorID)
	if err != nil {
		return DaySlots{}, err
	}
	slots, err := cal.ResolveSlots(date, availability.SlotOptions{
		ExcludeBookingID: excludeBookingID,
		ExcludeUserID:    actorID,
		Display:          display,
	})
	if err != nil {
		return DaySlots{}, err
	}
	return DaySlots{Location: display, Slots: slots}, nil
}

// AvailableDates lists local dates in [start, end] with at least one slot.
func (s *Service) AvailableDates(ctx context.Context, courtID int64, start, end availability.Date, excludeBookingID, actorID int64) ([]availability.Date, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", availability.ErrInvalidRequest, end, start)
	}
	if days := start.DaysUntil(end) + 1; days > s.opts.MaxRangeDays {
		return nil, fmt.Errorf("%w: range of %d days exceeds the %d day limit", availability.ErrInvalidRequest, days, s.opts.MaxRangeDays)
	}
	cal, err := s.loader.LoadCalendar(ctx, s.db.Queries, courtID, start, end)
	if err != nil {
		return nil, err
	}
	return cal.ResolveAvailableDates(start, end, availability.SlotOptions{
		ExcludeBookingID: excludeBookingID,
		ExcludeUserID:    actorID,
	})
}

// CheckConflict is a dry run of req against courtID. It takes no lock.
func (s *Service) CheckConflict(ctx context.Context, courtID int64, req availability.Request) (*availability.Conflict, error) {
	cal, err := s.loader.LoadCalendar(ctx, s.db.Queries, courtID, req.Date, req.Date)
	if err != nil {
		return nil, err
	}
	return cal.CheckConflict(req)
}

func (s *Service) displayLocation(ctx context.Context, q *db.Queries, cal availability.Calendar, actorID int64) (*time.Location, error) {
	if actorID == 0 {
		return cal.Location, nil
	}
	user, err := q.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cal.Location, nil
		}
		return nil, fmt.Errorf("load user %d: %w", actorID, err)
	}
	if user.TenantID != cal.Court.TenantID {
		return cal.Location, nil
	}
	return availability.DisplayLocation(user.Timezone.String, cal.Location.String())
}

type CreateParams struct {
	CourtID int64
	UserID  int64
	Date    availability.Date
	Start   string
	End     string
	// Status is pending or confirmed; confirmed when empty.
	Status availability.BookingStatus
}

// Create books a slot for UserID. A non-nil conflict means the slot was
// rejected and nothing was written.
func (s *Service) Create(ctx context.Context, p CreateParams) (Booking, *availability.Conflict, error) {
	status := p.Status
	if status == "" {
		status = availability.StatusConfirmed
	}
	if status != availability.StatusConfirmed && status != availability.StatusPending {
		return Booking{}, nil, fmt.Errorf("%w: status must be pending or confirmed", availability.ErrInvalidRequest)
	}
	if p.UserID <= 0 {
		return Booking{}, nil, fmt.Errorf("%w: user is required", availability.ErrInvalidRequest)
	}

	logger := log.Ctx(ctx).With().Int64("court_id", p.CourtID).Int64("user_id", p.UserID).Str("date", p.Date.String()).Logger()

	unlock, err := s.lockCourt(ctx, p.CourtID)
	if err != nil {
		return Booking{}, nil, err
	}
	defer unlock()

	var created Booking
	var conflict *availability.Conflict
	err = s.db.RunInTx(ctx, func(tx *db.DB) error {
		cal, err := s.loader.LoadCalendar(ctx, tx.Queries, p.CourtID, p.Date, p.Date)
		if err != nil {
			return err
		}
		if err := s.ensureMember(ctx, tx.Queries, cal.Court.TenantID, p.UserID); err != nil {
			return err
		}

		req := availability.Request{Date: p.Date, Start: p.Start, End: p.End, ExcludeUserID: p.UserID}
		conflict, err = cal.CheckConflict(req)
		if err != nil || conflict != nil {
			return err
		}
		span, err := cal.Candidate(req)
		if err != nil {
			return err
		}

		startDate, startTime, endTime := availability.SplitStored(span.Start, span.End)
		row, err := tx.Queries.CreateBooking(ctx, db.CreateBookingParams{
			TenantID:  cal.Court.TenantID,
			CourtID:   p.CourtID,
			UserID:    p.UserID,
			StartDate: startDate,
			StartTime: startTime,
			EndTime:   endTime,
			Status:    string(status),
			CreatedAt: s.now(),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				conflict = duplicateConflict(span, cal.Location)
				return nil
			}
			return fmt.Errorf("insert booking: %w", err)
		}
		created, err = toResult(row)
		return err
	})
	if err != nil {
		logWriteError(logger, err, "Failed to create booking")
		return Booking{}, nil, err
	}
	if conflict != nil {
		logger.Info().Str("reason", string(conflict.Reason)).Msg(conflict.Message)
		return Booking{}, conflict, nil
	}

	logger.Info().Int64("booking_id", created.ID).Str("status", created.Status).Msg("Booking created")
	return created, nil, nil
}

type UpdateParams struct {
	BookingID int64
	// ActorID must own the booking when set.
	ActorID int64
	Date    availability.Date
	Start   string
	End     string
}

// Update moves a booking. The booking never conflicts with itself, and its
// owner keeps the sequential bypass.
func (s *Service) Update(ctx context.Context, p UpdateParams) (Booking, *availability.Conflict, error) {
	existing, err := s.getBooking(ctx, s.db.Queries, p.BookingID)
	if err != nil {
		return Booking{}, nil, err
	}

	logger := log.Ctx(ctx).With().
		Int64("booking_id", p.BookingID).
		Int64("court_id", existing.CourtID).
		Str("date", p.Date.String()).
		Logger()

	unlock, err := s.lockCourt(ctx, existing.CourtID)
	if err != nil {
		return Booking{}, nil, err
	}
	defer unlock()

	var updated Booking
	var conflict *availability.Conflict
	err = s.db.RunInTx(ctx, func(tx *db.DB) error {
		current, err := s.getBooking(ctx, tx.Queries, p.BookingID)
		if err != nil {
			return err
		}
		if current.Status == string(availability.StatusCancelled) {
			return ErrBookingCancelled
		}
		if p.ActorID != 0 && p.ActorID != current.UserID {
			return ErrNotOwner
		}

		cal, err := s.loader.LoadCalendar(ctx, tx.Queries, current.CourtID, p.Date, p.Date)
		if err != nil {
			return err
		}
		req := availability.Request{
			Date:             p.Date,
			Start:            p.Start,
			End:              p.End,
			ExcludeUserID:    current.UserID,
			ExcludeBookingID: current.ID,
		}
		conflict, err = cal.CheckConflict(req)
		if err != nil || conflict != nil {
			return err
		}
		span, err := cal.Candidate(req)
		if err != nil {
			return err
		}

		startDate, startTime, endTime := availability.SplitStored(span.Start, span.End)
		row, err := tx.Queries.UpdateBookingSchedule(ctx, db.UpdateBookingScheduleParams{
			ID:        current.ID,
			StartDate: startDate,
			StartTime: startTime,
			EndTime:   endTime,
			UpdatedAt: s.now(),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				conflict = duplicateConflict(span, cal.Location)
				return nil
			}
			return fmt.Errorf("update booking: %w", err)
		}
		updated, err = toResult(row)
		return err
	})
	if err != nil {
		logWriteError(logger, err, "Failed to update booking")
		return Booking{}, nil, err
	}
	if conflict != nil {
		logger.Info().Str("reason", string(conflict.Reason)).Msg(conflict.Message)
		return Booking{}, conflict, nil
	}

	logger.Info().Msg("Booking updated")
	return updated, nil, nil
}

// Cancel releases a booking's slot. Cancelling twice is not an error.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID int64) (Booking, error) {
	logger := log.Ctx(ctx).With().Int64("booking_id", bookingID).Logger()

	var cancelled Booking
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		current, err := s.getBooking(ctx, tx.Queries, bookingID)
		if err != nil {
			return err
		}
		if actorID != 0 && actorID != current.UserID {
			return ErrNotOwner
		}
		row := current
		if current.Status != string(availability.StatusCancelled) {
			row, err = tx.Queries.UpdateBookingStatus(ctx, db.UpdateBookingStatusParams{
				ID:        current.ID,
				Status:    string(availability.StatusCancelled),
				UpdatedAt: s.now(),
			})
			if err != nil {
				return fmt.Errorf("cancel booking: %w", err)
			}
		}
		cancelled, err = toResult(row)
		return err
	})
	if err != nil {
		logWriteError(logger, err, "Failed to cancel booking")
		return Booking{}, err
	}
	logger.Info().Int64("court_id", cancelled.CourtID).Msg("Booking cancelled")
	return cancelled, nil
}

// ExpirePending cancels pending bookings older than the pending TTL.
func (s *Service) ExpirePending(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.db.Queries.ExpirePendingBookings(ctx, db.ExpirePendingBookingsParams{
		UpdatedAt:     now,
		CreatedBefore: now.Add(-s.opts.PendingTTL),
	})
	if err != nil {
		return 0, fmt.Errorf("expire pending bookings: %w", err)
	}
	return n, nil
}

func (s *Service) lockCourt(ctx context.Context, courtID int64) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.opts.LockTimeout)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, courtID)
	if err != nil {
		return nil, fmt.Errorf("lock court %d: %w", courtID, err)
	}
	return unlock, nil
}

func (s *Service) getBooking(ctx context.Context, q *db.Queries, id int64) (db.Booking, error) {
	row, err := q.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Booking{}, fmt.Errorf("%w: %d", ErrBookingNotFound, id)
		}
		return db.Booking{}, fmt.Errorf("load booking %d: %w", id, err)
	}
	return row, nil
}

func (s *Service) ensureMember(ctx context.Context, q *db.Queries, tenantID, userID int64) error {
	user, err := q.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", ErrUserNotFound, userID)
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if user.TenantID != tenantID {
		return fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	return nil
}

// duplicateConflict reports a booking that lost the race at the unique index,
// worded like the engine's booking conflicts.
func duplicateConflict(span availability.Interval, loc *time.Location) *availability.Conflict {
	return &availability.Conflict{
		Reason:  availability.ReasonBookingConflict,
		Window:  span,
		Message: fmt.Sprintf("slot already booked (%s)", span.Format(loc)),
	}
}

func toResult(row db.Booking) (Booking, error) {
	b, err := toBooking(row)
	if err != nil {
		return Booking{}, err
	}
	return Booking{
		ID:      row.ID,
		CourtID: row.CourtID,
		UserID:  row.UserID,
		Status:  row.Status,
		Start:   b.Start,
		End:     b.End,
	}, nil
}

// logWriteError logs expected rejections at Info and everything else,
// configuration faults included, at Error.
func logWriteError(logger zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, availability.ErrInvalidRequest),
		errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrBookingCancelled),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrCourtNotFound):
		logger.Info().Err(err).Msg(msg)
	default:
		logger.Error().Err(err).Msg(msg)
	}
}
