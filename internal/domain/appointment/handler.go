package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/token"
	"github.com/medbook/medbook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the appointment endpoints. Booking is open to
// unauthenticated callers; cancellation and listing require a session.
func (h *Handler) RegisterRoutes(api, authed *echo.Group) {
	api.POST("/bookAppointment", h.Book)

	authed.POST("/cancelAppointment", h.Cancel)
	authed.GET("/appointments", h.List)
}

type bookRequest struct {
	DoctorID     string `json:"doctorId"`
	PatientID    string `json:"patientId"`
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
	TimeSlot     string `json:"timeSlot"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}

	a, err := h.svc.Book(c.Request().Context(), BookInput{
		DoctorID:  doctorID,
		PatientID: patientID,
		Name:      req.PatientName,
		Email:     req.PatientEmail,
		TimeSlot:  req.TimeSlot,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "Appointment booked successfully",
		"appointment": a,
	})
}

type cancelRequest struct {
	AppointmentID string `json:"appointmentId"`
}

func (h *Handler) Cancel(c echo.Context) error {
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointmentId")
	}

	ident := token.FromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	a, err := h.svc.Cancel(c.Request().Context(), *ident, appointmentID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment cancelled successfully",
		"appointment": a,
	})
}

func (h *Handler) List(c echo.Context) error {
	ident := token.FromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), *ident, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}

	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Appointments fetched successfully",
		"appointments": pagination.NewResponse(items, total, pg.Limit, pg.Offset),
	})
}

// httpError maps domain errors onto HTTP status codes. Conflicts are reported
// as 400 with the exact message clients match on. Internal failures are masked
// with a generic message.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Time slot already booked!")
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Appointment not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You may only cancel your own appointments")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
