package patient

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

// RegisterInput carries the fields required to create a patient account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Gender   string
	Phone    string
	Address  string
}

// Register creates a patient account. Duplicate emails are rejected by the
// store's unique index, not an application pre-check.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	case in.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalid)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrInvalid)
	case in.Age <= 0:
		return nil, fmt.Errorf("%w: age is required", ErrInvalid)
	case in.Gender == "":
		return nil, fmt.Errorf("%w: gender is required", ErrInvalid)
	case in.Phone == "":
		return nil, fmt.Errorf("%w: phone is required", ErrInvalid)
	case in.Address == "":
		return nil, fmt.Errorf("%w: address is required", ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Patient{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Age:          in.Age,
		Gender:       in.Gender,
		Phone:        in.Phone,
		Address:      in.Address,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.notifier.Notify("welcome-patient", p.Email, map[string]string{"name": p.Name})
	return p, nil
}

// Login verifies credentials and issues a patient session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Patient, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalid)
	}

	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(p.ID, token.RolePatient)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return p, signed, nil
}

// Get returns a patient profile. Patients may only read their own record.
func (s *Service) Get(ctx context.Context, actingID, patientID uuid.UUID) (*Patient, error) {
	if actingID != patientID {
		return nil, ErrForbidden
	}
	return s.repo.GetByID(ctx, patientID)
}
