package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Book inserts the appointment and its patient back-reference atomically.
	// A concurrent booking of the same doctor and slot yields ErrSlotTaken.
	Book(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Cancel removes the appointment and its back-reference atomically and
	// returns the removed row.
	Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
