// Package filestore is the intake pipeline for uploaded medical documents:
// extension validation, filename sanitization, collision-resistant storage
// naming, and writes into the upload directory.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrEmptyFilename       = errors.New("file name is required")
	ErrExtensionNotAllowed = errors.New("file type not allowed")
)

// allowedExtensions lists the accepted upload types, keyed lowercase.
var allowedExtensions = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// mimeTypes maps stored file types to the MIME types handed to the analysis
// collaborator.
var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// StoredFile describes a file accepted by the intake pipeline.
type StoredFile struct {
	Name         string // disk-unique storage name, timestamp-prefixed
	OriginalName string // sanitized user-supplied name
	Path         string // full path under the upload directory
	FileType     string // lowercase extension, one of the allow-list
	Size         int64
}

// Store writes accepted uploads to a fixed directory.
type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Extension returns the lowercase extension of name without the dot, or ""
// when name has none.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Allowed reports whether the file name carries an accepted extension.
func Allowed(name string) bool {
	return allowedExtensions[Extension(name)]
}

// MIMEType returns the MIME type for a stored file type, defaulting to
// application/octet-stream for anything unknown.
func MIMEType(fileType string) string {
	if m, ok := mimeTypes[strings.ToLower(fileType)]; ok {
		return m
	}
	return "application/octet-stream"
}

// Sanitize strips path components and unsafe characters from a user-supplied
// file name. The result contains only [A-Za-z0-9_.-] and never starts with a
// dot, so it cannot escape the upload directory.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// Save validates and stores one upload. The storage name is the sanitized
// original prefixed with a second-resolution timestamp; two uploads of the
// same name in the same second are not disambiguated further (documented
// collision policy).
func (s *Store) Save(name string, r io.Reader) (*StoredFile, error) {
	if name == "" {
		return nil, ErrEmptyFilename
	}
	if !Allowed(name) {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotAllowed, name)
	}

	original := Sanitize(name)
	if original == "" {
		return nil, ErrEmptyFilename
	}

	stored := s.now().Format("20060102_150405") + "_" + original
	path := filepath.Join(s.dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	return &StoredFile{
		Name:         stored,
		OriginalName: original,
		Path:         path,
		FileType:     Extension(original),
		Size:         size,
	}, nil
}

// Remove deletes a stored file by its storage name. A file that is already
// gone is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the full path of a storage name inside the upload directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
