package email

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/validator"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Tag     string
}

// Validate checks the recipient and that subject and body are present.
func (m Message) Validate() error {
	err := validator.Apply(
		validator.RequiredString("to", m.To),
		validator.ValidEmail("to", m.To),
		validator.RequiredString("subject", m.Subject),
		validator.RequiredString("html", m.HTML),
	)
	if err != nil {
		return errors.Join(ErrInvalidMessage, err)
	}
	return nil
}

// NewFromConfig returns a Postmark sender when both tokens are set and a
// LogSender otherwise.
func NewFromConfig(cfg Config, log *slog.Logger) (Sender, error) {
	if strings.TrimSpace(cfg.PostmarkServerToken) == "" && strings.TrimSpace(cfg.PostmarkAccountToken) == "" {
		return NewLogSender(log), nil
	}
	return NewPostmarkSender(cfg)
}

// LogSender logs messages instead of sending them. Used in development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger discards output.
func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = logger.Discard()
	}
	return &LogSender{logger: log.With(logger.Component("email"))}
}

// Send validates msg and logs its envelope.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email not sent, no provider configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
	)
	return nil
}
