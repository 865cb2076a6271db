package document

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/filestore"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/upload_file", h.Upload)
	e.GET("/get_patient_documents/:id", h.ListByPatient)
	e.DELETE("/delete_document/:id", h.Delete)
	e.POST("/archive-document/:id", h.Archive)
}

// documentJSON is the wire shape shared by the listing and upload responses.
type documentJSON struct {
	ID               int64   `json:"id"`
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"original_filename"`
	FileType         string  `json:"file_type"`
	UploadedAt       string  `json:"uploaded_at"`
	Source           Source  `json:"source"`
	Tag              *string `json:"tag,omitempty"`
	Comment          *string `json:"comment,omitempty"`
}

func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "No file part"})
	}
	patientID, err := strconv.ParseInt(c.FormValue("patient_id"), 10, 64)
	if err != nil || patientID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Patient ID is required"})
	}
	if fh.Filename == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "No selected file"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}
	defer src.Close()

	doc, err := h.svc.Store(c.Request().Context(), StoreInput{
		PatientID: patientID,
		Filename:  fh.Filename,
		Content:   src,
		Tag:       c.FormValue("tag"),
		Comment:   c.FormValue("comment"),
		Source:    SourceIndex,
	})
	if err != nil {
		if errors.Is(err, filestore.ErrExtensionNotAllowed) {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "File type not allowed"})
		}
		if errors.Is(err, filestore.ErrEmptyFilename) {
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "No selected file"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "File uploaded successfully",
		"document": echo.Map{
			"id":                doc.ID,
			"filename":          doc.Filename,
			"original_filename": doc.OriginalFilename,
			"uploaded_at":       doc.UploadedAt.Format("2006-01-02 15:04:05"),
			"tag":               doc.Tag,
			"comment":           doc.Comment,
		},
	})
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid patient id"})
	}
	docs, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	out := make([]documentJSON, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentJSON{
			ID:               d.ID,
			Filename:         d.Filename,
			OriginalFilename: d.OriginalFilename,
			FileType:         d.FileType,
			UploadedAt:       d.UploadedAt.Format("2006-01-02T15:04:05"),
			Source:           d.Source,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "document not found"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Document deleted successfully"})
}

func (h *Handler) Archive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "error": "invalid document id"})
	}
	if err := h.svc.Archive(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
