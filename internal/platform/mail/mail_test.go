package mail

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestTemplateEngine_RenderBuiltIn(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("appointment-booked", map[string]string{
		"patient_name": "Bob",
		"doctor_name":  "A",
		"time_slot":    "Mon-09:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Appointment Confirmation" {
		t.Errorf("unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "Bob") || !strings.Contains(body, "Mon-09:00") {
		t.Errorf("expected placeholders substituted, got %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingDataLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("appointment-booked", map[string]string{"patient_name": "Bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "{{time_slot}}") {
		t.Errorf("expected unresolved placeholder left in place, got %q", body)
	}
}

func TestTemplateEngine_RegisterTemplate(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{ID: "custom", Subject: "Hi {{name}}", Body: "Bye"})
	subject, _, err := e.Render("custom", map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Hi Ada" {
		t.Errorf("unexpected subject: %q", subject)
	}
}

func TestNotifier_SendsInBackground(t *testing.T) {
	sender := &MockEmailSender{}
	n := NewNotifier(sender, NewTemplateEngine(), zerolog.Nop())

	n.Notify("welcome-patient", "b@x.com", map[string]string{"name": "Bob"})
	n.Wait()

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "b@x.com" {
		t.Errorf("unexpected recipient: %s", calls[0].To)
	}
	if !strings.Contains(calls[0].Body, "Bob") {
		t.Errorf("expected rendered body, got %q", calls[0].Body)
	}
}

func TestNotifier_SwallowsSendFailure(t *testing.T) {
	sender := &MockEmailSender{ShouldFail: true}
	n := NewNotifier(sender, NewTemplateEngine(), zerolog.Nop())

	// Must not panic or propagate the failure.
	n.Notify("welcome-patient", "b@x.com", map[string]string{"name": "Bob"})
	n.Wait()

	if len(sender.Calls()) != 1 {
		t.Error("expected send to have been attempted")
	}
}

func TestNotifier_UnknownTemplateDoesNotSend(t *testing.T) {
	sender := &MockEmailSender{}
	n := NewNotifier(sender, NewTemplateEngine(), zerolog.Nop())

	n.Notify("no-such-template", "b@x.com", nil)
	n.Wait()

	if len(sender.Calls()) != 0 {
		t.Error("expected no send for unknown template")
	}
}
