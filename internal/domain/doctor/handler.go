package doctor

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

// RegisterRoutes wires the doctor endpoints. api is the public group, authed
// carries the token middleware.
func (h *Handler) RegisterRoutes(api, authed *echo.Group) {
	api.POST("/registerDoctor", h.Register)
	api.POST("/loginDoctor", h.Login)
	api.GET("/searchDoctors", h.Search)

	authed.GET("/doctor/:doctorId", h.GetAvailability)
	authed.POST("/setAvailability", h.SetAvailability, token.RequireRole(token.RoleDoctor))
}

type registerRequest struct {
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Password     string              `json:"password"`
	Specialty    string              `json:"specialty"`
	Experience   int                 `json:"experience"`
	Location     string              `json:"location"`
	Availability []AvailabilityEntry `json:"availability"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	d, err := h.svc.Register(c.Request().Context(), RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Specialty:       req.Specialty,
		ExperienceYears: req.Experience,
		Location:        req.Location,
		Availability:    req.Availability,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Doctor registered successfully",
		"doctor":  d,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	d, signed, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   signed,
		"doctor":  d,
	})
}

func (h *Handler) GetAvailability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}

	entries, err := h.svc.GetAvailability(c.Request().Context(), doctorID)
	if err != nil {
		return httpError(err)
	}

	if entries == nil {
		entries = []AvailabilityEntry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Availability fetched successfully",
		"availability": entries,
	})
}

type setAvailabilityRequest struct {
	DoctorID     string              `json:"doctorId"`
	Availability []AvailabilityEntry `json:"availability"`
}

func (h *Handler) SetAvailability(c echo.Context) error {
	var req setAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}

	ident := token.FromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	entries, err := h.svc.SetAvailability(c.Request().Context(), ident.ID, doctorID, req.Availability)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "Availability updated successfully",
		"availability": entries,
	})
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"specialty", "location", "name"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}

	if items == nil {
		items = []*Doctor{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Doctors fetched successfully",
		"doctors": pagination.NewResponse(items, total, pg.Limit, pg.Offset),
	})
}

// httpError maps domain errors onto HTTP status codes. Internal failures are
// masked with a generic message.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Doctor not found")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You may only modify your own schedule")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
