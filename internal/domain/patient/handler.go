package patient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/document"
	"github.com/clinicdesk/clinicdesk/internal/platform/qr"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc  *Service
	docs *document.Service
	// base returns the externally reachable origin used in QR form links,
	// e.g. "http://192.168.1.20:8080".
	base func() string
}

func NewHandler(svc *Service, docs *document.Service, base func() string) *Handler {
	return &Handler{svc: svc, docs: docs, base: base}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register)
	e.GET("/qr_code/:id", h.QRCode)
	e.GET("/patient_form/:id", h.IntakeForm)
	e.POST("/patient_form/:id", h.SubmitIntake)
	e.GET("/search", h.SearchForm)
	e.POST("/search", h.Search)
	e.GET("/patient/:id", h.View)
	e.GET("/doctor_panel", h.DoctorPanel)
	e.GET("/get_patient_data/:id", h.PatientData)
}

func (h *Handler) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/register")
}

func (h *Handler) RegisterForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"required": []string{"name", "age", "gender", "phone", "address"},
		"optional": []string{"email"},
	})
}

func (h *Handler) formURL(patientID int64) string {
	return fmt.Sprintf("%s/patient_form/%d", h.base(), patientID)
}

func (h *Handler) Register(c echo.Context) error {
	age, _ := strconv.Atoi(c.FormValue("age"))
	p, err := h.svc.Register(c.Request().Context(), RegisterInput{
		Name:    c.FormValue("name"),
		Age:     age,
		Gender:  c.FormValue("gender"),
		Phone:   c.FormValue("phone"),
		Email:   c.FormValue("email"),
		Address: c.FormValue("address"),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  "error",
				"message": "A patient with this email already exists. Please use a different email.",
			})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "success",
		"patient_id": p.ID,
		"qr_url":     h.formURL(p.ID),
	})
}

func (h *Handler) QRCode(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	png, err := qr.PNG(h.formURL(id), qr.DefaultSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *Handler) IntakeForm(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SubmitIntake(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}

	smoking, err := ParseYesNo(c.FormValue("smoking"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	alcohol, err := ParseYesNo(c.FormValue("alcohol"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	exercise, err := ParseExercise(c.FormValue("exercise"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	sleep, err := ParseSleep(c.FormValue("sleep"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	in := Intake{
		ChronicDiseases: c.FormValue("chronic_diseases"),
		Surgeries:       c.FormValue("surgeries"),
		Medications:     c.FormValue("medications"),
		Allergies:       c.FormValue("allergies"),
		Smoking:         smoking,
		Alcohol:         alcohol,
		Exercise:        exercise,
		Sleep:           sleep,
	}

	var uploads []IntakeUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["medical_files"] {
			src, err := fh.Open()
			if err != nil {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			defer src.Close()
			uploads = append(uploads, IntakeUpload{Filename: fh.Filename, Content: src})
		}
	}

	if err := h.svc.SubmitIntake(c.Request().Context(), id, in, uploads); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Information updated successfully!"})
}

func (h *Handler) SearchForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"hint": "POST patient_id to look up a patient"})
}

func (h *Handler) Search(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/patient/"+c.FormValue("patient_id"))
}

func (h *Handler) View(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusNotFound, "Patient not found")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.String(http.StatusNotFound, "Patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DoctorPanel(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		// the front desk flashes the error and lands back on the start page
		return c.Redirect(http.StatusFound, "/")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PatientData(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Patient not found"})
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}
	docs, err := h.docs.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	docList := make([]echo.Map, 0, len(docs))
	for _, d := range docs {
		docList = append(docList, echo.Map{
			"id":          d.ID,
			"filename":    d.OriginalFilename,
			"tag":         d.Tag,
			"comment":     d.Comment,
			"uploaded_at": d.UploadedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"patient": echo.Map{
			"id":      p.ID,
			"name":    p.Name,
			"age":     p.Age,
			"gender":  p.Gender,
			"phone":   p.Phone,
			"email":   p.Email,
			"address": p.Address,
			"disease": p.Disease,
			"medical_history": echo.Map{
				"chronic_diseases": deref(p.ChronicDiseases),
				"surgeries":        deref(p.Surgeries),
				"medications":      deref(p.Medications),
				"allergies":        deref(p.Allergies),
			},
			"lifestyle": echo.Map{
				"smoking":  p.Smoking,
				"alcohol":  p.Alcohol,
				"exercise": p.Exercise,
				"sleep":    p.Sleep,
			},
		},
		"documents": docList,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
