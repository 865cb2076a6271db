package analysis

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/analyze", h.Analyze)
	e.POST("/ai_summary/:id", h.Summarize)
}

func (h *Handler) Analyze(c echo.Context) error {
	var data map[string]any
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	text, err := Analyze(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"analysis": strings.ReplaceAll(text, "\n", "<br>"),
	})
}

func (h *Handler) Summarize(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Patient not found"})
	}
	summary, err := h.svc.Summarize(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "summary": summary})
}
