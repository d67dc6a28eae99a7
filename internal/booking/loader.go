// Package booking loads court calendars from storage and runs the booking
// write path on top of the availability engine.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codr1/courtbook/internal/availability"
	"github.com/codr1/courtbook/internal/db"
)

var ErrCourtNotFound = errors.New("court not found")

// Loader turns stored rules and bookings into an availability.Calendar.
type Loader struct {
	// DefaultTimezone is used for tenants with no zone on record.
	DefaultTimezone string
}

// LoadCalendar loads everything needed to answer questions about courtID on
// local dates from..to. Bookings are fetched one UTC day either side so that
// bookings spilling across a UTC date boundary are seen.
func (l Loader) LoadCalendar(ctx context.Context, q *db.Queries, courtID int64, from, to availability.Date) (availability.Calendar, error) {
	cfg, err := q.GetCourtCalendarConfig(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return availability.Calendar{}, fmt.Errorf("%w: %d", ErrCourtNotFound, courtID)
		}
		return availability.Calendar{}, fmt.Errorf("load court %d: %w", courtID, err)
	}

	timezone := cfg.TenantTimezone
	if timezone == "" {
		timezone = l.DefaultTimezone
	}
	loc, err := availability.LoadLocation(timezone)
	if err != nil {
		return availability.Calendar{}, err
	}

	scope := db.ListAvailabilityRulesForCourtParams{
		TenantID:    cfg.TenantID,
		CourtID:     cfg.CourtID,
		CourtTypeID: cfg.CourtTypeID,
	}
	ruleRows, err := q.ListAvailabilityRulesForCourt(ctx, scope)
	if err != nil {
		return availability.Calendar{}, fmt.Errorf("list availability rules: %w", err)
	}
	breakRows, err := q.ListAvailabilityBreaksForCourt(ctx, scope)
	if err != nil {
		return availability.Calendar{}, fmt.Errorf("list availability breaks: %w", err)
	}
	rules, err := toRules(ruleRows, breakRows)
	if err != nil {
		return availability.Calendar{}, err
	}

	bookingRows, err := q.ListActiveBookingsForCourt(ctx, db.ListActiveBookingsForCourtParams{
		CourtID:  courtID,
		FromDate: from.AddDays(-1).String(),
		ToDate:   to.AddDays(1).String(),
	})
	if err != nil {
		return availability.Calendar{}, fmt.Errorf("list bookings: %w", err)
	}
	bookings := make(availability.BookingSet, 0, len(bookingRows))
	for _, row := range bookingRows {
		b, err := toBooking(row)
		if err != nil {
			return availability.Calendar{}, err
		}
		bookings = append(bookings, b)
	}

	return availability.Calendar{
		Court: availability.Court{
			ID:              cfg.CourtID,
			TenantID:        cfg.TenantID,
			CourtTypeID:     cfg.CourtTypeID,
			IntervalMinutes: int(cfg.IntervalMinutes),
			BufferMinutes:   int(cfg.BufferMinutes),
		},
		Rules:    rules,
		Bookings: bookings,
		Location: loc,
	}, nil
}

func toRules(rows []db.AvailabilityRule, breakRows []db.AvailabilityBreak) ([]availability.Rule, error) {
	breaksByRule := make(map[int64][]availability.TimeWindow, len(rows))
	for _, row := range breakRows {
		window, err := availability.ParseTimeWindow(row.StartTime, row.EndTime)
		if err != nil {
			return nil, &availability.ConfigurationError{
				Field: "breaks",
				Err:   fmt.Errorf("break %d of rule %d: %w", row.ID, row.RuleID, err),
			}
		}
		breaksByRule[row.RuleID] = append(breaksByRule[row.RuleID], window)
	}

	rules := make([]availability.Rule, 0, len(rows))
	for _, row := range rows {
		window, err := availability.ParseTimeWindow(row.StartTime, row.EndTime)
		if err != nil {
			return nil, &availability.ConfigurationError{
				Field: "window",
				Err:   fmt.Errorf("rule %d: %w", row.ID, err),
			}
		}
		rule := availability.Rule{
			ID:          row.ID,
			TenantID:    row.TenantID,
			Window:      window,
			Breaks:      breaksByRule[row.ID],
			IsAvailable: row.IsAvailable,
			CreatedAt:   row.CreatedAt,
		}
		if row.CourtID.Valid {
			id := row.CourtID.Int64
			rule.CourtID = &id
		}
		if row.CourtTypeID.Valid {
			id := row.CourtTypeID.Int64
			rule.CourtTypeID = &id
		}
		if row.DayOfWeek.Valid {
			day := time.Weekday(row.DayOfWeek.Int64)
			rule.DayOfWeek = &day
		}
		if row.SpecificDate.Valid {
			date, err := availability.ParseDate(row.SpecificDate.String)
			if err != nil {
				return nil, &availability.ConfigurationError{
					Field: "specific_date",
					Err:   fmt.Errorf("rule %d: %w", row.ID, err),
				}
			}
			rule.SpecificDate = &date
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func toBooking(row db.Booking) (availability.Booking, error) {
	start, end, err := availability.JoinStored(row.StartDate, row.StartTime, row.EndTime)
	if err != nil {
		return availability.Booking{}, fmt.Errorf("booking %d: %w", row.ID, err)
	}
	return availability.Booking{
		ID:      row.ID,
		CourtID: row.CourtID,
		UserID:  row.UserID,
		Start:   start,
		End:     end,
		Status:  availability.BookingStatus(row.Status),
	}, nil
}
