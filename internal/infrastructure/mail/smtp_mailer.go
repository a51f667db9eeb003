// Package mail sends outbound email over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/florexport/backend/internal/application/delivery"
	"github.com/florexport/backend/internal/infrastructure/config"
)

// SMTPMailer sends invoice emails through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg *config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}, nil
}

// Send delivers the message, honouring context cancellation. gomail dials
// synchronously, so the send runs in a goroutine and the result is collected
// through a channel.
func (m *SMTPMailer) Send(ctx context.Context, msg delivery.Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if msg.AttachmentName != "" && len(msg.Attachment) > 0 {
		gm.Attach(msg.AttachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(msg.Attachment))
			return err
		}))
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
		}
	}

	m.logger.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachment_bytes", len(msg.Attachment)))
	return nil
}

var _ delivery.Mailer = (*SMTPMailer)(nil)
