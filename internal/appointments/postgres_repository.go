package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("appointments: querier required")
	}
	return &PostgresRepository{db: q}
}

const appointmentColumns = `id::text, practice_id::text, first_name, last_name, mobile_phone, email,
	to_char(requested_date, 'YYYY-MM-DD'), requested_time, appointment_type,
	COALESCE(description, ''), is_emergency, is_scheduled,
	COALESCE(to_char(scheduled_date, 'YYYY-MM-DD'), ''), COALESCE(scheduled_time, ''),
	is_cancelled, created_at`

// Insert writes one appointment row and records its created_at.
func (r *PostgresRepository) Insert(ctx context.Context, appt *Appointment) error {
	if appt == nil {
		return ErrNilAppointment
	}
	query := `
		INSERT INTO appointments (
			id, practice_id, first_name, last_name, mobile_phone, email,
			requested_date, requested_time, appointment_type, description, is_emergency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9, NULLIF($10, ''), $11)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.PracticeID,
		appt.FirstName,
		appt.LastName,
		appt.MobilePhone,
		appt.Email,
		appt.RequestedDate,
		string(appt.RequestedTime),
		string(appt.AppointmentType),
		appt.Description,
		appt.IsEmergency,
	).Scan(&appt.CreatedAt); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// knownID reports whether id can name a row at all. The id column is a uuid,
// so anything else would fail the cast in Postgres rather than match nothing.
func knownID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Confirmation reads the fields used by the confirmation email.
func (r *PostgresRepository) Confirmation(ctx context.Context, id string) (*ConfirmationDetails, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	query := `
		SELECT first_name, last_name, appointment_type,
			COALESCE(to_char(scheduled_date, 'YYYY-MM-DD'), ''), COALESCE(scheduled_time, '')
		FROM appointments
		WHERE id = $1
	`
	var (
		d       ConfirmationDetails
		apptTyp string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&d.FirstName, &d.LastName, &apptTyp, &d.ScheduledDate, &d.ScheduledTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: select confirmation: %w", err)
	}
	d.AppointmentType = Type(apptTyp)
	return &d, nil
}

// Get fetches one appointment scoped to the practice.
func (r *PostgresRepository) Get(ctx context.Context, practiceID, id string) (*Appointment, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND practice_id = $2`
	return r.one(ctx, "select", query, id, practiceID)
}

// SetScheduled flips is_scheduled. Unscheduling clears the date and time.
func (r *PostgresRepository) SetScheduled(ctx context.Context, practiceID, id string, isScheduled bool) (*Appointment, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE appointments
		SET is_scheduled = $3,
			scheduled_date = CASE WHEN $3 THEN scheduled_date ELSE NULL END,
			scheduled_time = CASE WHEN $3 THEN scheduled_time ELSE NULL END
		WHERE id = $1 AND practice_id = $2
		RETURNING ` + appointmentColumns
	return r.one(ctx, "update schedule", query, id, practiceID, isScheduled)
}

// Schedule sets is_scheduled together with the date and time.
func (r *PostgresRepository) Schedule(ctx context.Context, practiceID, id, date, clock string) (*Appointment, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE appointments
		SET is_scheduled = TRUE, scheduled_date = $3::date, scheduled_time = $4
		WHERE id = $1 AND practice_id = $2
		RETURNING ` + appointmentColumns
	return r.one(ctx, "schedule", query, id, practiceID, date, clock)
}

// Cancel flags the appointment cancelled and returns the updated rows.
func (r *PostgresRepository) Cancel(ctx context.Context, practiceID, id string) ([]Appointment, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE appointments
		SET is_cancelled = TRUE
		WHERE id = $1 AND practice_id = $2
		RETURNING ` + appointmentColumns
	rows, err := r.db.Query(ctx, query, id, practiceID)
	if err != nil {
		return nil, fmt.Errorf("appointments: cancel failed: %w", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("appointments: cancel failed: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// List returns a practice's appointments, soonest requested date first.
func (r *PostgresRepository) List(ctx context.Context, practiceID string, filter ListFilter) ([]Appointment, error) {
	query, args, err := listQuery(practiceID, filter)
	if err != nil {
		return nil, fmt.Errorf("appointments: build list query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}

func listQuery(practiceID string, filter ListFilter) (string, []any, error) {
	ds := goqu.Dialect("postgres").
		From("appointments").
		Prepared(true).
		Select(goqu.L(appointmentColumns)).
		Where(goqu.C("practice_id").Eq(practiceID))

	switch filter.Status {
	case StatusUnscheduled:
		ds = ds.Where(goqu.Ex{"is_scheduled": false, "is_cancelled": false})
	case StatusScheduled:
		ds = ds.Where(goqu.Ex{"is_scheduled": true, "is_cancelled": false})
	case StatusCancelled:
		ds = ds.Where(goqu.Ex{"is_cancelled": true})
	case StatusEmergency:
		ds = ds.Where(goqu.Ex{"is_emergency": true, "is_cancelled": false})
	}
	if filter.From != "" {
		ds = ds.Where(goqu.C("requested_date").Gte(goqu.L("?::date", filter.From)))
	}
	if filter.To != "" {
		ds = ds.Where(goqu.C("requested_date").Lte(goqu.L("?::date", filter.To)))
	}

	ds = ds.Order(goqu.I("requested_date").Asc(), goqu.I("created_at").Desc()).
		Limit(uint(filter.limit()))
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}
	return ds.ToSQL()
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (*Appointment, error) {
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: %s failed: %w", op, err)
	}
	return appt, nil
}

func collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()
	var out []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *appt)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a             Appointment
		requestedTime string
		apptType      string
	)
	if err := row.Scan(
		&a.ID,
		&a.PracticeID,
		&a.FirstName,
		&a.LastName,
		&a.MobilePhone,
		&a.Email,
		&a.RequestedDate,
		&requestedTime,
		&apptType,
		&a.Description,
		&a.IsEmergency,
		&a.IsScheduled,
		&a.ScheduledDate,
		&a.ScheduledTime,
		&a.IsCancelled,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.RequestedTime = TimePreference(requestedTime)
	a.AppointmentType = Type(apptType)
	return &a, nil
}
