package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]AvailabilityEntry, error)
	ReplaceAvailability(ctx context.Context, doctorID uuid.UUID, entries []AvailabilityEntry) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error)
}
