package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medbook/medbook/internal/platform/token"
)

// Participant is the slice of a doctor or patient profile booking needs.
type Participant struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// DoctorDirectory resolves doctor IDs to booking participants. Implementations
// return ErrDoctorNotFound for unknown IDs.
type DoctorDirectory interface {
	LookupDoctor(ctx context.Context, id uuid.UUID) (*Participant, error)
}

// PatientDirectory resolves patient IDs to booking participants. Implementations
// return ErrPatientNotFound for unknown IDs.
type PatientDirectory interface {
	LookupPatient(ctx context.Context, id uuid.UUID) (*Participant, error)
}

// Notifier dispatches fire-and-forget email; delivery failures never surface.
type Notifier interface {
	Notify(templateID, recipient string, data map[string]string)
}

type Service struct {
	repo     Repository
	doctors  DoctorDirectory
	patients PatientDirectory
	notifier Notifier
}

func NewService(repo Repository, doctors DoctorDirectory, patients PatientDirectory, notifier Notifier) *Service {
	return &Service{repo: repo, doctors: doctors, patients: patients, notifier: notifier}
}

// BookInput carries the fields required to book a slot. The patient ID is
// authoritative; name and email are optional snapshots and default to the
// patient's profile when empty.
type BookInput struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Name      string
	Email     string
	TimeSlot  string
}

// Book reserves a slot with a doctor. Both participants must exist; the slot
// conflict itself is decided by the store, not checked here first.
func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.TimeSlot == "" {
		return nil, fmt.Errorf("%w: timeSlot is required", ErrInvalid)
	}
	if in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctorId is required", ErrInvalid)
	}
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patientId is required", ErrInvalid)
	}

	doc, err := s.doctors.LookupDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	pat, err := s.patients.LookupPatient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	name, email := in.Name, in.Email
	if name == "" {
		name = pat.Name
	}
	if email == "" {
		email = pat.Email
	}

	a := &Appointment{
		DoctorID:     in.DoctorID,
		PatientID:    in.PatientID,
		PatientName:  name,
		PatientEmail: email,
		TimeSlot:     in.TimeSlot,
	}
	if err := s.repo.Book(ctx, a); err != nil {
		return nil, err
	}

	s.notifier.Notify("appointment-booked", a.PatientEmail, map[string]string{
		"patient_name": a.PatientName,
		"doctor_name":  doc.Name,
		"time_slot":    a.TimeSlot,
	})
	return a, nil
}

// Cancel removes an appointment. Patients may cancel their own bookings,
// doctors the bookings on their own schedule.
func (s *Service) Cancel(ctx context.Context, ident token.Identity, appointmentID uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	switch ident.Role {
	case token.RolePatient:
		if ident.ID != a.PatientID {
			return nil, ErrForbidden
		}
	case token.RoleDoctor:
		if ident.ID != a.DoctorID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	cancelled, err := s.repo.Cancel(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	data := map[string]string{
		"patient_name": cancelled.PatientName,
		"time_slot":    cancelled.TimeSlot,
	}
	if doc, err := s.doctors.LookupDoctor(ctx, cancelled.DoctorID); err == nil {
		data["doctor_name"] = doc.Name
	}
	s.notifier.Notify("appointment-cancelled", cancelled.PatientEmail, data)
	return cancelled, nil
}

// List returns the caller's appointments: a patient sees their bookings, a
// doctor sees their schedule.
func (s *Service) List(ctx context.Context, ident token.Identity, limit, offset int) ([]*Appointment, int, error) {
	switch ident.Role {
	case token.RolePatient:
		return s.repo.ListByPatient(ctx, ident.ID, limit, offset)
	case token.RoleDoctor:
		return s.repo.ListByDoctor(ctx, ident.ID, limit, offset)
	default:
		return nil, 0, ErrForbidden
	}
}
