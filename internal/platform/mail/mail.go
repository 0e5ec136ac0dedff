// Package mail delivers booking-related email through an external SMTP relay.
// Delivery is fire-and-forget: a failed send never affects the outcome of the
// operation that triggered it and is only logged.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "appointment-booked",
			Subject: "Appointment Confirmation",
			Body:    "Dear {{patient_name}}, your appointment with Dr. {{doctor_name}} for {{time_slot}} is confirmed.",
		},
		{
			ID:      "appointment-cancelled",
			Subject: "Appointment Cancelled",
			Body:    "Dear {{patient_name}}, your appointment with Dr. {{doctor_name}} for {{time_slot}} has been cancelled.",
		},
		{
			ID:      "welcome-doctor",
			Subject: "Welcome to MedBook",
			Body:    "Dear Dr. {{name}}, your account has been created. Patients can now find you under {{specialty}}.",
		},
		{
			ID:      "welcome-patient",
			Subject: "Welcome to MedBook",
			Body:    "Dear {{name}}, your account has been created. You can now book appointments.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// Notifier renders templates and dispatches them asynchronously. Send errors
// are logged and swallowed.
type Notifier struct {
	sender    EmailSender
	templates *TemplateEngine
	logger    zerolog.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewNotifier(sender EmailSender, templates *TemplateEngine, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender:    sender,
		templates: templates,
		logger:    logger,
		timeout:   15 * time.Second,
	}
}

// Notify renders the template and sends the email in the background. It
// returns immediately; the caller's request is never coupled to delivery.
func (n *Notifier) Notify(templateID, recipient string, data map[string]string) {
	subject, body, err := n.templates.Render(templateID, data)
	if err != nil {
		n.logger.Error().Err(err).Str("template", templateID).Msg("render notification")
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.sender.SendEmail(ctx, recipient, subject, body); err != nil {
			n.logger.Error().Err(err).
				Str("template", templateID).
				Str("recipient", recipient).
				Msg("send notification")
			return
		}
		n.logger.Info().
			Str("template", templateID).
			Str("recipient", recipient).
			Msg("notification sent")
	}()
}

// Wait blocks until all in-flight notifications have been attempted. Used for
// graceful shutdown and in tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New("smtp relay unavailable")
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
