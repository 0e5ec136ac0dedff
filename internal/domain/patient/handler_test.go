package patient

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

func postJSON(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const registerBody = `{
	"name": "Pat", "email": "pat@x.com", "password": "secretpw",
	"age": 30, "gender": "F", "phone": "555-0100", "address": "1 Main St"
}`

func TestHandler_Register(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	c, rec := postJSON(e, registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	// The response never carries the password or its hash.
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "secretpw") {
		t.Errorf("response leaks credentials: %s", rec.Body.String())
	}

	var resp struct {
		Message string  `json:"message"`
		Patient Patient `json:"patient"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Patient.Email != "pat@x.com" || resp.Patient.Age != 30 {
		t.Errorf("unexpected patient payload: %+v", resp.Patient)
	}
}

func TestHandler_Register_MissingField(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	c, _ := postJSON(e, `{"name":"Pat"}`)
	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	c, _ := postJSON(e, registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ = postJSON(e, registerBody)
	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if httpErr.Message != "Email already registered" {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestHandler_Login(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	c, _ := postJSON(e, registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, rec := postJSON(e, `{"email":"pat@x.com","password":"secretpw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token in the response")
	}
}

func TestHandler_Get_SelfOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	h := NewHandler(svc)
	e := echo.New()

	c, _ := postJSON(e, registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := repo.GetByEmail(c.Request().Context(), "pat@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	get := func(ident *token.Identity) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("patientId")
		c.SetParamValues(p.ID.String())
		c.SetRequest(c.Request().WithContext(token.WithIdentity(c.Request().Context(), ident)))
		return rec, h.Get(c)
	}

	rec, err := get(&token.Identity{ID: p.ID, Role: token.RolePatient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secretpw") {
		t.Errorf("response leaks credentials: %s", rec.Body.String())
	}

	// Another patient's token is rejected.
	_, err = get(&token.Identity{ID: uuid.New(), Role: token.RolePatient})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}
