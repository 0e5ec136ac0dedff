package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbook/medbook/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, doctor_id, patient_id, patient_name, patient_email, time_slot, status, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.PatientName,
		&a.PatientEmail, &a.TimeSlot, &a.Status, &a.CreatedAt)
	return &a, err
}

// Book relies on the partial unique index over (doctor_id, time_slot) to
// serialize concurrent bookings of the same slot. There is no pre-check; the
// index decides the winner and everyone else gets ErrSlotTaken.
func (r *repoPG) Book(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.Status = StatusBooked

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO appointments (id, doctor_id, patient_id, patient_name, patient_email, time_slot, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at`,
			a.ID, a.DoctorID, a.PatientID, a.PatientName, a.PatientEmail, a.TimeSlot, a.Status)
		if err := row.Scan(&a.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO patient_appointments (patient_id, appointment_id)
			VALUES ($1,$2)`,
			a.PatientID, a.ID)
		return err
	})
	if db.IsUniqueViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("book appointment: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// Cancel removes the appointment and the patient's back-reference in one
// transaction so the two tables never disagree.
func (r *repoPG) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a *Appointment
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var scanErr error
		a, scanErr = scanAppointment(tx.QueryRow(ctx,
			`DELETE FROM appointments WHERE id = $1 RETURNING `+apptCols, id))
		if scanErr != nil {
			return scanErr
		}
		_, err := tx.Exec(ctx,
			`DELETE FROM patient_appointments WHERE appointment_id = $1`, id)
		return err
	})
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	return a, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+col+` = $1`, id).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments
		WHERE `+col+` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return out, total, nil
}
