package doctor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("doctor not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not allowed to modify this doctor")
	ErrInvalid            = errors.New("invalid request")
)

// DefaultLocation is used for availability entries that omit a location.
const DefaultLocation = "Office"

// Doctor maps to the doctors table. The password hash never serializes.
type Doctor struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	Name            string              `db:"name" json:"name"`
	Email           string              `db:"email" json:"email"`
	PasswordHash    string              `db:"password_hash" json:"-"`
	Specialty       string              `db:"specialty" json:"specialty"`
	ExperienceYears int                 `db:"experience_years" json:"experience"`
	Location        string              `db:"location" json:"location"`
	Availability    []AvailabilityEntry `json:"availability"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// AvailabilityEntry is one offered consultation window. The doctor's list is
// replaced wholesale on update; entry order is preserved.
type AvailabilityEntry struct {
	Day       string `db:"day" json:"day"`
	StartTime string `db:"start_time" json:"startTime"`
	EndTime   string `db:"end_time" json:"endTime"`
	Location  string `db:"location" json:"location"`
}
