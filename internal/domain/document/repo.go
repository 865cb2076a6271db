package document

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id int64) (*Document, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Document, error)
	UpdateSource(ctx context.Context, id int64, source Source) error
	Delete(ctx context.Context, id int64) error
}
