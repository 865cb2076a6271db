package document

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/clinicdesk/clinicdesk/internal/platform/filestore"
)

// Service coordinates document records and the files backing them.
type Service struct {
	repo  Repository
	files *filestore.Store
}

func NewService(repo Repository, files *filestore.Store) *Service {
	return &Service{repo: repo, files: files}
}

// StoreInput carries one upload through intake into the record store.
type StoreInput struct {
	PatientID int64
	Filename  string
	Content   io.Reader
	Tag       string
	Comment   string
	Source    Source
}

// Store runs an upload through the intake pipeline and records it. The file
// hits disk first so a failed insert leaves at worst an unreferenced file,
// never a record without its file.
func (s *Service) Store(ctx context.Context, in StoreInput) (*Document, error) {
	if in.PatientID <= 0 {
		return nil, fmt.Errorf("patient id is required")
	}

	stored, err := s.files.Save(in.Filename, in.Content)
	if err != nil {
		return nil, err
	}

	d := &Document{
		Filename:         stored.Name,
		OriginalFilename: stored.OriginalName,
		FilePath:         stored.Path,
		FileType:         stored.FileType,
		Source:           in.Source,
		PatientID:        in.PatientID,
	}
	if in.Tag != "" {
		d.Tag = &in.Tag
	}
	if in.Comment != "" {
		d.Comment = &in.Comment
	}
	if d.Source == "" {
		d.Source = SourceIndex
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if rerr := s.files.Remove(stored.Name); rerr != nil {
			log.Warn().Err(rerr).Str("file", stored.Name).Msg("orphan cleanup failed")
		}
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*Document, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Archive flips a document's source to the patient-form archive.
func (s *Service) Archive(ctx context.Context, id int64) error {
	return s.repo.UpdateSource(ctx, id, SourcePatientForm)
}

// Delete removes the stored file, then the record. If the record delete fails
// after the file is gone the row survives pointing at a missing file; reads of
// such documents fail at open time rather than here.
func (s *Service) Delete(ctx context.Context, id int64) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.files.Remove(d.Filename); err != nil {
		return fmt.Errorf("remove file %s: %w", d.Filename, err)
	}
	return s.repo.Delete(ctx, id)
}
