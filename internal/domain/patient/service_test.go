package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/document"
	"github.com/clinicdesk/clinicdesk/internal/platform/filestore"
)

// -- Mock Repositories --

type mockRepo struct {
	items  map[int64]*Patient
	nextID int64
	fail   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Patient), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if m.fail != nil {
		return m.fail
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, p := range m.items {
		if p.Email != nil && *p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) UpdateIntake(_ context.Context, p *Patient) error {
	if m.fail != nil {
		return m.fail
	}
	stored, ok := m.items[p.ID]
	if !ok {
		return ErrNotFound
	}
	stored.ChronicDiseases = p.ChronicDiseases
	stored.Surgeries = p.Surgeries
	stored.Medications = p.Medications
	stored.Allergies = p.Allergies
	stored.Smoking = p.Smoking
	stored.Alcohol = p.Alcohol
	stored.Exercise = p.Exercise
	stored.Sleep = p.Sleep
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Summary, int, error) {
	var result []*Summary
	for _, p := range m.items {
		result = append(result, &Summary{ID: p.ID, Name: p.Name, Age: p.Age})
	}
	return result, len(result), nil
}

type mockDocRepo struct {
	items  map[int64]*document.Document
	nextID int64
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{items: make(map[int64]*document.Document), nextID: 1}
}

func (m *mockDocRepo) Create(_ context.Context, d *document.Document) error {
	d.ID = m.nextID
	m.nextID++
	d.UploadedAt = time.Now()
	m.items[d.ID] = d
	return nil
}

func (m *mockDocRepo) GetByID(_ context.Context, id int64) (*document.Document, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return d, nil
}

func (m *mockDocRepo) ListByPatient(_ context.Context, patientID int64) ([]*document.Document, error) {
	var result []*document.Document
	for _, d := range m.items {
		if d.PatientID == patientID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDocRepo) UpdateSource(_ context.Context, id int64, source document.Source) error {
	d, ok := m.items[id]
	if !ok {
		return document.ErrNotFound
	}
	d.Source = source
	return nil
}

func (m *mockDocRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return document.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockDocRepo) {
	t.Helper()
	files, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	repo := newMockRepo()
	docRepo := newMockDocRepo()
	docs := document.NewService(docRepo, files)
	return NewService(repo, docs, nil), repo, docRepo
}

// -- Service Tests --

func TestRegister(t *testing.T) {
	svc, repo, _ := newTestService(t)

	p, err := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Age: 34, Gender: "female",
		Phone: "555-0101", Email: "asha@example.com", Address: "12 Elm St",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected assigned id")
	}
	if p.Smoking != YesNoNo || p.Exercise != ExerciseLow || p.Sleep != SleepNormal {
		t.Errorf("lifestyle defaults not set: %+v", p)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected one row, got %d", len(repo.items))
	}
}

func TestRegister_RequiredFields(t *testing.T) {
	svc, repo, _ := newTestService(t)

	cases := []RegisterInput{
		{Age: 30, Gender: "male", Phone: "1", Address: "a"},
		{Name: "x", Gender: "male", Phone: "1", Address: "a"},
		{Name: "x", Age: 30, Phone: "1", Address: "a"},
		{Name: "x", Age: 30, Gender: "male", Address: "a"},
		{Name: "x", Age: 30, Gender: "male", Phone: "1"},
	}
	for i, in := range cases {
		if _, err := svc.Register(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if len(repo.items) != 0 {
		t.Error("rejected registrations must not create rows")
	}
}

func TestRegister_EmailOptional(t *testing.T) {
	svc, _, _ := newTestService(t)
	p, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ravi", Age: 50, Gender: "male", Phone: "555-0102", Address: "3 Oak Ave",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != nil {
		t.Errorf("expected nil email, got %v", *p.Email)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)

	in := RegisterInput{
		Name: "Asha", Age: 34, Gender: "female",
		Phone: "555-0101", Email: "asha@example.com", Address: "12 Elm St",
	}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := svc.Register(context.Background(), in)
	if err != ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Error("duplicate registration must not create a second row")
	}
}

func TestSubmitIntake(t *testing.T) {
	svc, repo, docRepo := newTestService(t)
	p, err := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Age: 34, Gender: "female", Phone: "555-0101", Address: "12 Elm St",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = svc.SubmitIntake(context.Background(), p.ID, Intake{
		ChronicDiseases: "asthma",
		Smoking:         YesNoNo,
		Alcohol:         YesNoNo,
		Exercise:        ExerciseMedium,
		Sleep:           SleepShort,
	}, []IntakeUpload{
		{Filename: "xray.png", Content: strings.NewReader("png")},
	})
	if err != nil {
		t.Fatalf("submit intake: %v", err)
	}

	stored := repo.items[p.ID]
	if stored.ChronicDiseases == nil || *stored.ChronicDiseases != "asthma" {
		t.Errorf("chronic diseases not saved: %v", stored.ChronicDiseases)
	}
	if stored.Exercise != ExerciseMedium || stored.Sleep != SleepShort {
		t.Errorf("lifestyle not saved: %+v", stored)
	}
	if len(docRepo.items) != 1 {
		t.Fatalf("expected one document, got %d", len(docRepo.items))
	}
	for _, d := range docRepo.items {
		if d.Source != document.SourcePatientForm {
			t.Errorf("expected source patient_form, got %s", d.Source)
		}
		if d.PatientID != p.ID {
			t.Errorf("document bound to wrong patient: %d", d.PatientID)
		}
	}
}

func TestSubmitIntake_OverwritesPreviousValues(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p, _ := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Age: 34, Gender: "female", Phone: "555-0101", Address: "12 Elm St",
	})

	first := Intake{ChronicDiseases: "asthma", Smoking: YesNoYes, Alcohol: YesNoNo, Exercise: ExerciseHigh, Sleep: SleepLong}
	if err := svc.SubmitIntake(context.Background(), p.ID, first, nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := Intake{Smoking: YesNoNo, Alcohol: YesNoNo, Exercise: ExerciseLow, Sleep: SleepNormal}
	if err := svc.SubmitIntake(context.Background(), p.ID, second, nil); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	stored := repo.items[p.ID]
	if stored.ChronicDiseases == nil || *stored.ChronicDiseases != "" {
		t.Errorf("second submission must overwrite, got %v", stored.ChronicDiseases)
	}
	if stored.Smoking != YesNoNo || stored.Exercise != ExerciseLow {
		t.Errorf("lifestyle not overwritten: %+v", stored)
	}
}

func TestSubmitIntake_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.SubmitIntake(context.Background(), 99, Intake{}, nil)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitIntake_SkipsRejectedFiles(t *testing.T) {
	svc, _, docRepo := newTestService(t)
	p, _ := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Age: 34, Gender: "female", Phone: "555-0101", Address: "12 Elm St",
	})

	err := svc.SubmitIntake(context.Background(), p.ID, Intake{
		Smoking: YesNoNo, Alcohol: YesNoNo, Exercise: ExerciseLow, Sleep: SleepNormal,
	}, []IntakeUpload{
		{Filename: "notes.txt", Content: strings.NewReader("txt")},
		{Filename: "scan.pdf", Content: strings.NewReader("%PDF")},
	})
	if err != nil {
		t.Fatalf("submit intake: %v", err)
	}
	if len(docRepo.items) != 1 {
		t.Fatalf("expected the valid file only, got %d documents", len(docRepo.items))
	}
	for _, d := range docRepo.items {
		if d.OriginalFilename != "scan.pdf" {
			t.Errorf("unexpected stored file: %s", d.OriginalFilename)
		}
	}
}
