package clinicstub

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// EnsureSchema creates the stub tables when they are missing. The stub is a
// dev fixture; there is no migration story.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS staff (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			role        TEXT NOT NULL,
			phone       TEXT,
			email       TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS appointments (
			id               UUID PRIMARY KEY,
			patient_id       UUID NOT NULL,
			patient_name     TEXT NOT NULL,
			patient_phone    TEXT NOT NULL DEFAULT '',
			patient_email    TEXT,
			patient_address  TEXT,
			staff_id         UUID REFERENCES staff(id),
			appointment_date TEXT NOT NULL DEFAULT '',
			appointment_time TEXT NOT NULL DEFAULT '',
			duration_minutes INT NOT NULL DEFAULT 30,
			total_minutes    INT NOT NULL DEFAULT 0,
			procedures       TEXT,
			notes            TEXT NOT NULL DEFAULT '',
			visit_status     TEXT NOT NULL DEFAULT '',
			reason           TEXT,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_date
			ON appointments (appointment_date, appointment_time);
	`)
	if err != nil {
		return fmt.Errorf("ensure stub schema: %w", err)
	}
	return nil
}

// Helpers

const appointmentColumns = `
	id, patient_id, patient_name, patient_phone, patient_email, patient_address,
	staff_id, appointment_date, appointment_time, duration_minutes, total_minutes,
	procedures, notes, visit_status, reason, created_at, updated_at
`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientName,
		&a.PatientPhone,
		&a.PatientEmail,
		&a.PatientAddress,
		&a.StaffID,
		&a.AppointmentDate,
		&a.AppointmentTime,
		&a.DurationMinutes,
		&a.TotalMinutes,
		&a.Procedures,
		&a.Notes,
		&a.VisitStatus,
		&a.Reason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Role,
		&s.Phone,
		&s.Email,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Interface methods

func (r *PgRepository) ListAppointments(ctx context.Context, limit, offset int) ([]Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY appointment_date, appointment_time, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, upd Update) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET notes            = COALESCE($2, notes),
		    visit_status     = COALESCE($3, visit_status),
		    reason           = COALESCE($4, reason),
		    appointment_date = COALESCE($5, appointment_date),
		    appointment_time = COALESCE($6, appointment_time),
		    duration_minutes = COALESCE($7, duration_minutes),
		    procedures       = COALESCE($8, procedures),
		    staff_id         = COALESCE($9, staff_id),
		    updated_at       = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, upd.Notes, upd.VisitStatus, upd.Reason, upd.AppointmentDate,
		upd.AppointmentTime, upd.DurationMinutes, upd.Procedures, upd.StaffID)

	return scanAppointment(row)
}

func (r *PgRepository) InsertAppointment(ctx context.Context, a Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (
			id, patient_id, patient_name, patient_phone, patient_email, patient_address,
			staff_id, appointment_date, appointment_time, duration_minutes, total_minutes,
			procedures, notes, visit_status, reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
	`, a.ID, a.PatientID, a.PatientName, a.PatientPhone, a.PatientEmail, a.PatientAddress,
		a.StaffID, a.AppointmentDate, a.AppointmentTime, a.DurationMinutes, a.TotalMinutes,
		a.Procedures, a.Notes, a.VisitStatus, a.Reason)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, role, phone, email, created_at, updated_at
		FROM staff
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, role, phone, email, created_at, updated_at
		FROM staff
		WHERE id = $1
	`, id)
	return scanStaff(row)
}

func (r *PgRepository) InsertStaff(ctx context.Context, s Staff) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, name, role, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, s.ID, s.Name, s.Role, s.Phone, s.Email)
	if err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}
