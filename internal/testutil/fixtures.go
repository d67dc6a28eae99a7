package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/codr1/courtbook/internal/db"
)

// Fixture is one tenant with a single court and two members.
type Fixture struct {
	TenantID    int64
	CourtTypeID int64
	CourtID     int64
	UserID      int64
	OtherUserID int64
}

type FixtureOptions struct {
	Timezone        string
	IntervalMinutes int64
	BufferMinutes   int64
	UserTimezone    string
}

// SeedCourt creates a tenant, court type, court, and two users.
func SeedCourt(t *testing.T, database *db.DB, opts FixtureOptions) Fixture {
	t.Helper()
	ctx := context.Background()

	if opts.Timezone == "" {
		opts.Timezone = "UTC"
	}
	if opts.IntervalMinutes == 0 {
		opts.IntervalMinutes = 60
	}

	tenant, err := database.Queries.CreateTenant(ctx, db.CreateTenantParams{Name: "Test Club", Timezone: opts.Timezone})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	courtType, err := database.Queries.CreateCourtType(ctx, db.CreateCourtTypeParams{
		TenantID:        tenant.ID,
		Name:            "Standard",
		IntervalMinutes: opts.IntervalMinutes,
		BufferMinutes:   opts.BufferMinutes,
	})
	if err != nil {
		t.Fatalf("create court type: %v", err)
	}
	court, err := database.Queries.CreateCourt(ctx, db.CreateCourtParams{
		TenantID:    tenant.ID,
		CourtTypeID: courtType.ID,
		Name:        "Court 1",
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}

	userTZ := sql.NullString{String: opts.UserTimezone, Valid: opts.UserTimezone != ""}
	user, err := database.Queries.CreateUser(ctx, db.CreateUserParams{TenantID: tenant.ID, Name: "Alex", Timezone: userTZ})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	other, err := database.Queries.CreateUser(ctx, db.CreateUserParams{TenantID: tenant.ID, Name: "Sam"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	return Fixture{
		TenantID:    tenant.ID,
		CourtTypeID: courtType.ID,
		CourtID:     court.ID,
		UserID:      user.ID,
		OtherUserID: other.ID,
	}
}

// AddCourtWeekdayRule stores a weekly rule for the fixture court with
// optional [start, end] breaks.
func AddCourtWeekdayRule(t *testing.T, database *db.DB, f Fixture, day time.Weekday, start, end string, breaks ...[2]string) int64 {
	t.Helper()
	return addRule(t, database, db.CreateAvailabilityRuleParams{
		TenantID:    f.TenantID,
		CourtID:     sql.NullInt64{Int64: f.CourtID, Valid: true},
		DayOfWeek:   sql.NullInt64{Int64: int64(day), Valid: true},
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}, breaks)
}

// AddCourtTypeDateRule stores a single-date rule on the fixture's court type.
func AddCourtTypeDateRule(t *testing.T, database *db.DB, f Fixture, date, start, end string, available bool) int64 {
	t.Helper()
	return addRule(t, database, db.CreateAvailabilityRuleParams{
		TenantID:     f.TenantID,
		CourtTypeID:  sql.NullInt64{Int64: f.CourtTypeID, Valid: true},
		SpecificDate: sql.NullString{String: date, Valid: true},
		StartTime:    start,
		EndTime:      end,
		IsAvailable:  available,
	}, nil)
}

func addRule(t *testing.T, database *db.DB, params db.CreateAvailabilityRuleParams, breaks [][2]string) int64 {
	t.Helper()
	ctx := context.Background()
	if params.CreatedAt.IsZero() {
		params.CreatedAt = time.Now().UTC()
	}
	ruleID, err := database.Queries.CreateAvailabilityRule(ctx, params)
	if err != nil {
		t.Fatalf("create availability rule: %v", err)
	}
	for i, brk := range breaks {
		if _, err := database.Queries.CreateAvailabilityBreak(ctx, db.CreateAvailabilityBreakParams{
			RuleID:    ruleID,
			StartTime: brk[0],
			EndTime:   brk[1],
			Position:  int64(i),
		}); err != nil {
			t.Fatalf("create availability break: %v", err)
		}
	}
	return ruleID
}
