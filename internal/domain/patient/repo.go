package patient

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// UpdateIntake persists the medical history and lifestyle fields only.
	UpdateIntake(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Summary, int, error)
}
