// Package mail delivers rendered HTML emails over SMTP or Amazon SES.
package mail

import (
	"context"
	"errors"
	"fmt"

	awsclients "founders-circle/internal/common/aws"
	"founders-circle/internal/common/config"
	"founders-circle/internal/common/logger"
)

// ErrNotConfigured is returned by every send when no transport is configured.
var ErrNotConfigured = errors.New("email transport not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one message. Implementations honour ctx deadlines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Enabled() bool
}

// Disabled is used when neither SMTP credentials nor SES are configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrNotConfigured }
func (Disabled) Enabled() bool                       { return false }

// New picks SES when mail.provider is ses, SMTP when credentials are present, and Disabled otherwise.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Sender, error) {
	log = log.WithFields(map[string]interface{}{"component": "mail"})

	switch {
	case cfg.Mail.Provider == "ses":
		client, err := awsclients.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("init ses: %w", err)
		}
		log.Info("mail transport ready", map[string]interface{}{"provider": "ses", "region": cfg.AWS.Region})
		return NewSESSender(client, cfg.Mail), nil

	case cfg.Mail.SMTP.Username != "" && cfg.Mail.SMTP.Password != "":
		log.Info("mail transport ready", map[string]interface{}{
			"provider": "smtp",
			"host":     cfg.Mail.SMTP.Host,
			"port":     cfg.Mail.SMTP.Port,
		})
		return NewSMTPSender(cfg.Mail), nil

	default:
		log.Warn("no mail transport configured; notifications will be logged as failed", nil)
		return Disabled{}, nil
	}
}
