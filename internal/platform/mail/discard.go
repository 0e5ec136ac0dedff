package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// DiscardSender logs outbound email instead of delivering it. Used when no
// SMTP relay is configured, typically in development.
type DiscardSender struct {
	logger zerolog.Logger
}

func NewDiscardSender(logger zerolog.Logger) *DiscardSender {
	return &DiscardSender{logger: logger}
}

func (s *DiscardSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("email delivery disabled; message discarded")
	return nil
}
