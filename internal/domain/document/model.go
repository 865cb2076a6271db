package document

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Source is the origin channel of an upload. Flipping an "index" document to
// "patient_form" is how the doctor panel archives it; the backing file never
// moves.
type Source string

const (
	SourceIndex       Source = "index"
	SourcePatientForm Source = "patient_form"
)

// ParseSource validates a source tag. Empty input defaults to "index".
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SourceIndex, nil
	case "index":
		return SourceIndex, nil
	case "patient_form":
		return SourcePatientForm, nil
	}
	return "", fmt.Errorf("invalid source tag: %q", s)
}

// Document maps to the documents table.
type Document struct {
	ID               int64     `db:"id" json:"id"`
	Filename         string    `db:"filename" json:"filename"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	FilePath         string    `db:"file_path" json:"file_path"`
	FileType         string    `db:"file_type" json:"file_type"`
	Tag              *string   `db:"tag" json:"tag,omitempty"`
	Comment          *string   `db:"comment" json:"comment,omitempty"`
	Source           Source    `db:"source" json:"source"`
	PatientID        int64     `db:"patient_id" json:"patient_id"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}
