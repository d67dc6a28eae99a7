package db

import (
	"database/sql"
	"time"
)

type Tenant struct {
	ID        int64
	Name      string
	Timezone  string
	CreatedAt time.Time
}

type User struct {
	ID        int64
	TenantID  int64
	Name      string
	Timezone  sql.NullString
	CreatedAt time.Time
}

type CourtType struct {
	ID              int64
	TenantID        int64
	Name            string
	IntervalMinutes int64
	BufferMinutes   int64
	CreatedAt       time.Time
}

type Court struct {
	ID          int64
	TenantID    int64
	CourtTypeID int64
	Name        string
	CreatedAt   time.Time
}

type AvailabilityRule struct {
	ID           int64
	TenantID     int64
	CourtID      sql.NullInt64
	CourtTypeID  sql.NullInt64
	DayOfWeek    sql.NullInt64
	SpecificDate sql.NullString
	StartTime    string
	EndTime      string
	IsAvailable  bool
	CreatedAt    time.Time
}

type AvailabilityBreak struct {
	ID        int64
	RuleID    int64
	StartTime string
	EndTime   string
	Position  int64
}

type Booking struct {
	ID        int64
	TenantID  int64
	CourtID   int64
	UserID    int64
	StartDate string
	StartTime string
	EndTime   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
