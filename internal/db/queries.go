package db

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createTenant = `-- name: CreateTenant :execlastid
INSERT INTO tenants (name, timezone) VALUES (?, ?)
`

type CreateTenantParams struct {
	Name     string
	Timezone string
}

func (q *Queries) CreateTenant(ctx context.Context, arg CreateTenantParams) (Tenant, error) {
	res, err := q.db.ExecContext(ctx, createTenant, arg.Name, arg.Timezone)
	if err != nil {
		return Tenant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Tenant{}, err
	}
	return q.GetTenant(ctx, id)
}

const getTenant = `-- name: GetTenant :one
SELECT id, name, timezone, created_at FROM tenants WHERE id = ?
`

func (q *Queries) GetTenant(ctx context.Context, id int64) (Tenant, error) {
	row := q.db.QueryRowContext(ctx, getTenant, id)
	var i Tenant
	err := row.Scan(&i.ID, &i.Name, &i.Timezone, &i.CreatedAt)
	return i, err
}

const createUser = `-- name: CreateUser :execlastid
INSERT INTO users (tenant_id, name, timezone) VALUES (?, ?, ?)
`

type CreateUserParams struct {
	TenantID int64
	Name     string
	Timezone sql.NullString
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx, createUser, arg.TenantID, arg.Name, arg.Timezone)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUser(ctx, id)
}

const getUser = `-- name: GetUser :one
SELECT id, tenant_id, name, timezone, created_at FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.TenantID, &i.Name, &i.Timezone, &i.CreatedAt)
	return i, err
}

const createCourtType = `-- name: CreateCourtType :execlastid
INSERT INTO court_types (tenant_id, name, interval_minutes, buffer_minutes) VALUES (?, ?, ?, ?)
`

type CreateCourtTypeParams struct {
	TenantID        int64
	Name            string
	IntervalMinutes int64
	BufferMinutes   int64
}

func (q *Queries) CreateCourtType(ctx context.Context, arg CreateCourtTypeParams) (CourtType, error) {
	res, err := q.db.ExecContext(ctx, createCourtType,
		arg.TenantID,
		arg.Name,
		arg.IntervalMinutes,
		arg.BufferMinutes,
	)
	if err != nil {
		return CourtType{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CourtType{}, err
	}
	return q.GetCourtType(ctx, id)
}

const getCourtType = `-- name: GetCourtType :one
SELECT id, tenant_id, name, interval_minutes, buffer_minutes, created_at FROM court_types WHERE id = ?
`

func (q *Queries) GetCourtType(ctx context.Context, id int64) (CourtType, error) {
	row := q.db.QueryRowContext(ctx, getCourtType, id)
	var i CourtType
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.Name,
		&i.IntervalMinutes,
		&i.BufferMinutes,
		&i.CreatedAt,
	)
	return i, err
}

const createCourt = `-- name: CreateCourt :execlastid
INSERT INTO courts (tenant_id, court_type_id, name) VALUES (?, ?, ?)
`

type CreateCourtParams struct {
	TenantID    int64
	CourtTypeID int64
	Name        string
}

func (q *Queries) CreateCourt(ctx context.Context, arg CreateCourtParams) (Court, error) {
	res, err := q.db.ExecContext(ctx, createCourt, arg.TenantID, arg.CourtTypeID, arg.Name)
	if err != nil {
		return Court{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Court{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT id, tenant_id, court_type_id, name, created_at FROM courts WHERE id = ?`, id)
	var i Court
	err = row.Scan(&i.ID, &i.TenantID, &i.CourtTypeID, &i.Name, &i.CreatedAt)
	return i, err
}

const getCourtCalendarConfig = `-- name: GetCourtCalendarConfig :one
SELECT c.id, c.tenant_id, c.court_type_id, ct.interval_minutes, ct.buffer_minutes, t.timezone
FROM courts c
JOIN court_types ct ON ct.id = c.court_type_id
JOIN tenants t ON t.id = c.tenant_id
WHERE c.id = ?
`

type GetCourtCalendarConfigRow struct {
	CourtID         int64
	TenantID        int64
	CourtTypeID     int64
	IntervalMinutes int64
	BufferMinutes   int64
	TenantTimezone  string
}

func (q *Queries) GetCourtCalendarConfig(ctx context.Context, courtID int64) (GetCourtCalendarConfigRow, error) {
	row := q.db.QueryRowContext(ctx, getCourtCalendarConfig, courtID)
	var i GetCourtCalendarConfigRow
	err := row.Scan(
		&i.CourtID,
		&i.TenantID,
		&i.CourtTypeID,
		&i.IntervalMinutes,
		&i.BufferMinutes,
		&i.TenantTimezone,
	)
	return i, err
}

const createAvailabilityRule = `-- name: CreateAvailabilityRule :execlastid
INSERT INTO availability_rules (
    tenant_id, court_id, court_type_id, day_of_week, specific_date,
    start_time, end_time, is_available, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateAvailabilityRuleParams struct {
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

func (q *Queries) CreateAvailabilityRule(ctx context.Context, arg CreateAvailabilityRuleParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createAvailabilityRule,
		arg.TenantID,
		arg.CourtID,
		arg.CourtTypeID,
		arg.DayOfWeek,
		arg.SpecificDate,
		arg.StartTime,
		arg.EndTime,
		arg.IsAvailable,
		arg.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const createAvailabilityBreak = `-- name: CreateAvailabilityBreak :execlastid
INSERT INTO availability_breaks (rule_id, start_time, end_time, position) VALUES (?, ?, ?, ?)
`

type CreateAvailabilityBreakParams struct {
	RuleID    int64
	StartTime string
	EndTime   string
	Position  int64
}

func (q *Queries) CreateAvailabilityBreak(ctx context.Context, arg CreateAvailabilityBreakParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createAvailabilityBreak, arg.RuleID, arg.StartTime, arg.EndTime, arg.Position)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listAvailabilityRulesForCourt = `-- name: ListAvailabilityRulesForCourt :many
SELECT id, tenant_id, court_id, court_type_id, day_of_week, specific_date,
       start_time, end_time, is_available, created_at
FROM availability_rules
WHERE tenant_id = ?1 AND (court_id = ?2 OR court_type_id = ?3)
ORDER BY id
`

type ListAvailabilityRulesForCourtParams struct {
	TenantID    int64
	CourtID     int64
	CourtTypeID int64
}

func (q *Queries) ListAvailabilityRulesForCourt(ctx context.Context, arg ListAvailabilityRulesForCourtParams) ([]AvailabilityRule, error) {
	rows, err := q.db.QueryContext(ctx, listAvailabilityRulesForCourt, arg.TenantID, arg.CourtID, arg.CourtTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AvailabilityRule
	for rows.Next() {
		var i AvailabilityRule
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.CourtID,
			&i.CourtTypeID,
			&i.DayOfWeek,
			&i.SpecificDate,
			&i.StartTime,
			&i.EndTime,
			&i.IsAvailable,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAvailabilityBreaksForCourt = `-- name: ListAvailabilityBreaksForCourt :many
SELECT b.id, b.rule_id, b.start_time, b.end_time, b.position
FROM availability_breaks b
JOIN availability_rules r ON r.id = b.rule_id
WHERE r.tenant_id = ?1 AND (r.court_id = ?2 OR r.court_type_id = ?3)
ORDER BY b.rule_id, b.position, b.id
`

func (q *Queries) ListAvailabilityBreaksForCourt(ctx context.Context, arg ListAvailabilityRulesForCourtParams) ([]AvailabilityBreak, error) {
	rows, err := q.db.QueryContext(ctx, listAvailabilityBreaksForCourt, arg.TenantID, arg.CourtID, arg.CourtTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AvailabilityBreak
	for rows.Next() {
		var i AvailabilityBreak
		if err := rows.Scan(&i.ID, &i.RuleID, &i.StartTime, &i.EndTime, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const bookingColumns = `id, tenant_id, court_id, user_id, start_date, start_time, end_time, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (Booking, error) {
	var i Booking
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.CourtID,
		&i.UserID,
		&i.StartDate,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveBookingsForCourt = `-- name: ListActiveBookingsForCourt :many
SELECT ` + bookingColumns + `
FROM bookings
WHERE court_id = ? AND start_date BETWEEN ? AND ? AND status <> 'cancelled'
ORDER BY start_date, start_time
`

type ListActiveBookingsForCourtParams struct {
	CourtID  int64
	FromDate string
	ToDate   string
}

func (q *Queries) ListActiveBookingsForCourt(ctx context.Context, arg ListActiveBookingsForCourtParams) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, listActiveBookingsForCourt, arg.CourtID, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Booking
	for rows.Next() {
		i, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBooking = `-- name: GetBooking :one
SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?
`

func (q *Queries) GetBooking(ctx context.Context, id int64) (Booking, error) {
	return scanBooking(q.db.QueryRowContext(ctx, getBooking, id))
}

const createBooking = `-- name: CreateBooking :execlastid
INSERT INTO bookings (
    tenant_id, court_id, user_id, start_date, start_time, end_time, status, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateBookingParams struct {
	TenantID  int64
	CourtID   int64
	UserID    int64
	StartDate string
	StartTime string
	EndTime   string
	Status    string
	CreatedAt time.Time
}

func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	createdAt := arg.CreatedAt.UTC()
	res, err := q.db.ExecContext(ctx, createBooking,
		arg.TenantID,
		arg.CourtID,
		arg.UserID,
		arg.StartDate,
		arg.StartTime,
		arg.EndTime,
		arg.Status,
		createdAt,
		createdAt,
	)
	if err != nil {
		return Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Booking{}, err
	}
	return q.GetBooking(ctx, id)
}

const updateBookingSchedule = `-- name: UpdateBookingSchedule :exec
UPDATE bookings
SET start_date = ?, start_time = ?, end_time = ?, updated_at = ?
WHERE id = ?
`

type UpdateBookingScheduleParams struct {
	ID        int64
	StartDate string
	StartTime string
	EndTime   string
	UpdatedAt time.Time
}

func (q *Queries) UpdateBookingSchedule(ctx context.Context, arg UpdateBookingScheduleParams) (Booking, error) {
	if _, err := q.db.ExecContext(ctx, updateBookingSchedule,
		arg.StartDate,
		arg.StartTime,
		arg.EndTime,
		arg.UpdatedAt.UTC(),
		arg.ID,
	); err != nil {
		return Booking{}, err
	}
	return q.GetBooking(ctx, arg.ID)
}

const updateBookingStatus = `-- name: UpdateBookingStatus :exec
UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?
`

type UpdateBookingStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateBookingStatus(ctx context.Context, arg UpdateBookingStatusParams) (Booking, error) {
	if _, err := q.db.ExecContext(ctx, updateBookingStatus, arg.Status, arg.UpdatedAt.UTC(), arg.ID); err != nil {
		return Booking{}, err
	}
	return q.GetBooking(ctx, arg.ID)
}

const expirePendingBookings = `-- name: ExpirePendingBookings :execrows
UPDATE bookings
SET status = 'cancelled', updated_at = ?
WHERE status = 'pending' AND created_at < ?
`

type ExpirePendingBookingsParams struct {
	UpdatedAt     time.Time
	CreatedBefore time.Time
}

func (q *Queries) ExpirePendingBookings(ctx context.Context, arg ExpirePendingBookingsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, expirePendingBookings, arg.UpdatedAt.UTC(), arg.CreatedBefore.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
