package appointment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medbook/medbook/internal/platform/token"
)

func postJSON(e *echo.Echo, body string, ident *token.Identity) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ident != nil {
		c.SetRequest(c.Request().WithContext(token.WithIdentity(c.Request().Context(), ident)))
	}
	return c, rec
}

func (f *fixture) bookBody() string {
	return `{"doctorId":"` + f.doctorID.String() + `","patientId":"` + f.patient.String() + `","timeSlot":"2026-09-02T09:00"}`
}

func TestHandler_Book(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, rec := postJSON(e, f.bookBody(), nil)
	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Message     string      `json:"message"`
		Appointment Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Appointment.Status != StatusBooked || resp.Appointment.TimeSlot != "2026-09-02T09:00" {
		t.Errorf("unexpected appointment payload: %+v", resp.Appointment)
	}
}

func TestHandler_Book_SlotTakenMessage(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, _ := postJSON(e, f.bookBody(), nil)
	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ = postJSON(e, f.bookBody(), nil)
	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if httpErr.Message != "Time slot already booked!" {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestHandler_Book_BadIDs(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, _ := postJSON(e, `{"doctorId":"nope","patientId":"`+f.patient.String()+`","timeSlot":"x"}`, nil)
	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Book_UnknownDoctor(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"doctorId":"` + uuid.NewString() + `","patientId":"` + f.patient.String() + `","timeSlot":"2026-09-02T09:00"}`
	c, _ := postJSON(e, body, nil)
	err := h.Book(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Cancel(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, rec := postJSON(e, f.bookBody(), nil)
	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var booked struct {
		Appointment Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &booked); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}

	body := `{"appointmentId":"` + booked.Appointment.ID.String() + `"}`
	c, rec = postJSON(e, body, &token.Identity{ID: f.patient, Role: token.RolePatient})
	if err := h.Cancel(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Appointment cancelled successfully") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_Cancel_Unknown(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"appointmentId":"` + uuid.NewString() + `"}`
	c, _ := postJSON(e, body, &token.Identity{ID: f.patient, Role: token.RolePatient})
	err := h.Cancel(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Cancel_OtherPatient(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, rec := postJSON(e, f.bookBody(), nil)
	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var booked struct {
		Appointment Appointment `json:"appointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &booked); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}

	body := `{"appointmentId":"` + booked.Appointment.ID.String() + `"}`
	c, _ = postJSON(e, body, &token.Identity{ID: uuid.New(), Role: token.RolePatient})
	err := h.Cancel(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestHandler_List(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	c, _ := postJSON(e, f.bookBody(), nil)
	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetRequest(c.Request().WithContext(token.WithIdentity(c.Request().Context(),
		&token.Identity{ID: f.patient, Role: token.RolePatient})))

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Appointments struct {
			Data  []Appointment `json:"data"`
			Total int           `json:"total"`
		} `json:"appointments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Appointments.Total != 1 || len(resp.Appointments.Data) != 1 {
		t.Errorf("unexpected listing: %+v", resp.Appointments)
	}
}
