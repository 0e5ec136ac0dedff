package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medbook/medbook/internal/platform/token"
)

// Notifier dispatches fire-and-forget email; delivery failures never surface.
type Notifier interface {
	Notify(templateID, recipient string, data map[string]string)
}

type Service struct {
	repo     Repository
	tokens   *token.Issuer
	notifier Notifier
}

func NewService(repo Repository, tokens *token.Issuer, notifier Notifier) *Service {
	return &Service{repo: repo, tokens: tokens, notifier: notifier}
}

// RegisterInput carries the fields required to create a doctor account.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	Specialty       string
	ExperienceYears int
	Location        string
	Availability    []AvailabilityEntry
}

// Register creates a doctor account. The email unique index is the authority
// on duplicates; there is no pre-check, so concurrent registrations of the
// same email cannot both succeed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Doctor, error) {
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	case in.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalid)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrInvalid)
	case in.Specialty == "":
		return nil, fmt.Errorf("%w: specialty is required", ErrInvalid)
	case in.ExperienceYears <= 0:
		return nil, fmt.Errorf("%w: experience is required", ErrInvalid)
	case in.Location == "":
		return nil, fmt.Errorf("%w: location is required", ErrInvalid)
	}
	entries, err := normalizeAvailability(in.Availability)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d := &Doctor{
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    string(hash),
		Specialty:       in.Specialty,
		ExperienceYears: in.ExperienceYears,
		Location:        in.Location,
		Availability:    entries,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.notifier.Notify("welcome-doctor", d.Email, map[string]string{
		"name":      d.Name,
		"specialty": d.Specialty,
	})
	return d, nil
}

// Login verifies credentials and issues a doctor session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Doctor, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalid)
	}

	d, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(d.ID, token.RoleDoctor)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return d, signed, nil
}

// GetAvailability returns the doctor's offered windows in stored order.
func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityEntry, error) {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.repo.GetAvailability(ctx, doctorID)
}

// SetAvailability replaces the doctor's entire availability list. The acting
// identity comes from the verified token, never the request body: a doctor may
// only edit their own schedule.
func (s *Service) SetAvailability(ctx context.Context, actingID, doctorID uuid.UUID, entries []AvailabilityEntry) ([]AvailabilityEntry, error) {
	if actingID != doctorID {
		return nil, ErrForbidden
	}
	normalized, err := normalizeAvailability(entries)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAvailability(ctx, doctorID, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// Search lists doctors matching the optional specialty/location/name filters.
// Password hashes never leave the model's JSON representation.
func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func normalizeAvailability(entries []AvailabilityEntry) ([]AvailabilityEntry, error) {
	out := make([]AvailabilityEntry, len(entries))
	for i, e := range entries {
		if e.Day == "" || e.StartTime == "" || e.EndTime == "" {
			return nil, fmt.Errorf("%w: availability entries need day, startTime and endTime", ErrInvalid)
		}
		if e.Location == "" {
			e.Location = DefaultLocation
		}
		out[i] = e
	}
	return out, nil
}
