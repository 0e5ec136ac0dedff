package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const StatusBooked = "Booked"

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrSlotTaken       = errors.New("time slot already booked")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrForbidden       = errors.New("not allowed to modify this appointment")
	ErrInvalid         = errors.New("invalid request")
)

// Appointment maps to the appointments table. Patient name and email are
// denormalized onto the row so notifications survive later profile edits.
type Appointment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctorId"`
	PatientID    uuid.UUID `db:"patient_id" json:"patientId"`
	PatientName  string    `db:"patient_name" json:"patientName"`
	PatientEmail string    `db:"patient_email" json:"patientEmail"`
	TimeSlot     string    `db:"time_slot" json:"timeSlot"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
