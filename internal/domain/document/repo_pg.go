package document

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const documentCols = `id, filename, original_filename, file_path, file_type,
	tag, comment, source, patient_id, uploaded_at`

func (r *repoPG) scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Filename, &d.OriginalFilename, &d.FilePath, &d.FileType,
		&d.Tag, &d.Comment, &d.Source, &d.PatientID, &d.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Document) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO documents (filename, original_filename, file_path, file_type,
			tag, comment, source, patient_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, uploaded_at`,
		d.Filename, d.OriginalFilename, d.FilePath, d.FileType,
		d.Tag, d.Comment, d.Source, d.PatientID).Scan(&d.ID, &d.UploadedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Document, error) {
	return r.scanDocument(r.conn(ctx).QueryRow(ctx,
		`SELECT `+documentCols+` FROM documents WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Document, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+documentCols+` FROM documents WHERE patient_id = $1 ORDER BY uploaded_at DESC, id DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Document
	for rows.Next() {
		d, err := r.scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateSource(ctx context.Context, id int64, source Source) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE documents SET source = $2 WHERE id = $1`, id, source)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
