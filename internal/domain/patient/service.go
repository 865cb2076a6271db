package patient

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/clinicdesk/clinicdesk/internal/domain/document"
	"github.com/clinicdesk/clinicdesk/internal/platform/filestore"
)

// TxFunc runs fn inside a transaction; repositories pick the transaction up
// from the context. Tests substitute a pass-through.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// NoTx is the pass-through TxFunc for callers without a transactional store.
func NoTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	repo  Repository
	docs  *document.Service
	runTx TxFunc
}

func NewService(repo Repository, docs *document.Service, runTx TxFunc) *Service {
	if runTx == nil {
		runTx = NoTx
	}
	return &Service{repo: repo, docs: docs, runTx: runTx}
}

// RegisterInput carries the front-desk registration fields. Email is the only
// optional one.
type RegisterInput struct {
	Name    string
	Age     int
	Gender  string
	Phone   string
	Email   string
	Address string
}

// Register validates the demographics, enforces email uniqueness when an
// email is given, and creates the patient row.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("name is required")
	case in.Age <= 0:
		return nil, fmt.Errorf("age must be positive")
	case in.Gender == "":
		return nil, fmt.Errorf("gender is required")
	case in.Phone == "":
		return nil, fmt.Errorf("phone is required")
	case in.Address == "":
		return nil, fmt.Errorf("address is required")
	}

	if in.Email != "" {
		exists, err := s.repo.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return nil, ErrDuplicateEmail
		}
	}

	p := &Patient{
		Name:     in.Name,
		Age:      in.Age,
		Gender:   in.Gender,
		Phone:    in.Phone,
		Address:  in.Address,
		Smoking:  YesNoNo,
		Alcohol:  YesNoNo,
		Exercise: ExerciseLow,
		Sleep:    SleepNormal,
	}
	if in.Email != "" {
		p.Email = &in.Email
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Summary, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// IntakeUpload is one file attached to a self-service form submission.
type IntakeUpload struct {
	Filename string
	Content  io.Reader
}

// SubmitIntake overwrites the patient's medical history and lifestyle fields
// and stores the attached files as patient_form documents. Field update and
// document rows commit together; files with rejected names are skipped, the
// rest of the submission proceeds.
func (s *Service) SubmitIntake(ctx context.Context, id int64, in Intake, uploads []IntakeUpload) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	in.Apply(p)

	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateIntake(ctx, p); err != nil {
			return fmt.Errorf("update intake: %w", err)
		}
		for _, u := range uploads {
			_, err := s.docs.Store(ctx, document.StoreInput{
				PatientID: id,
				Filename:  u.Filename,
				Content:   u.Content,
				Source:    document.SourcePatientForm,
			})
			if errors.Is(err, filestore.ErrExtensionNotAllowed) || errors.Is(err, filestore.ErrEmptyFilename) {
				log.Debug().Int64("patient_id", id).Str("file", u.Filename).Msg("skipping rejected form upload")
				continue
			}
			if err != nil {
				return fmt.Errorf("store form upload %s: %w", u.Filename, err)
			}
		}
		return nil
	})
}
