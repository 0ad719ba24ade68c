// Package notification decides which emails an application event triggers, sends them and logs every attempt.
package notification

import (
	"context"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/common/observability"
	"founders-circle/internal/mail"
	"founders-circle/internal/models"
	"founders-circle/internal/templates"
)

// LogStore receives one entry per send attempt.
type LogStore interface {
	AppendLog(ctx context.Context, entry models.EmailLogEntry) error
}

type Renderer interface {
	Render(kind templates.Kind, app models.Application, transition templates.Transition) (templates.Rendered, error)
}

type Config struct {
	AdminEmail  string
	SendTimeout time.Duration
}

type Dispatcher struct {
	renderer Renderer
	sender   mail.Sender
	logs     LogStore
	cfg      Config
	logger   logger.Logger
	obs      *observability.Observability
}

func NewDispatcher(renderer Renderer, sender mail.Sender, logs LogStore, cfg Config, log logger.Logger, obs *observability.Observability) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Dispatcher{
		renderer: renderer,
		sender:   sender,
		logs:     logs,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "notification"}),
		obs:      obs,
	}
}

// MailConfigured reports whether previews can be sent at all.
func (d *Dispatcher) MailConfigured() bool {
	return d.sender.Enabled() && d.cfg.AdminEmail != ""
}

// NotifyOnSubmission emails the admin and the applicant. Neither failure stops the other.
func (d *Dispatcher) NotifyOnSubmission(ctx context.Context, app models.Application) Result {
	p, _ := planFor(EventSubmission, models.StatusPending)
	return d.run(ctx, app, p, templates.Transition{New: models.StatusPending})
}

// NotifyOnStatusChange is a no-op unless newStatus has an entry in the status table
// and differs from oldStatus.
func (d *Dispatcher) NotifyOnStatusChange(ctx context.Context, app models.Application, oldStatus, newStatus models.Status) Result {
	p, ok := planFor(EventStatusChange, newStatus)
	if !ok || oldStatus == newStatus {
		d.logger.Debug("status change without notification", map[string]interface{}{
			"applicationId": app.ID,
			"oldStatus":     string(oldStatus),
			"newStatus":     string(newStatus),
		})
		return Result{Summary: SummarySkipped}
	}
	return d.run(ctx, app, p, templates.Transition{Old: oldStatus, New: newStatus})
}

// SendPreview renders kind with sample data and sends it to the admin as a test.
// A nil sample uses synthetic applicant data. Application storage is never touched.
func (d *Dispatcher) SendPreview(ctx context.Context, kind templates.Kind, sample *models.Application) (Delivery, error) {
	if !d.MailConfigured() {
		return Delivery{}, apperrors.NewValidationError(apperrors.PublicEmailNotConfigured, "mail transport or admin recipient missing")
	}
	transition, ok := previewTransitions[kind]
	if !ok {
		return Delivery{}, apperrors.NewValidationError(apperrors.PublicInvalidTemplateType, string(kind))
	}

	app := SampleApplication()
	if sample != nil {
		app = *sample
	}

	delivery := d.send(ctx, attempt{
		kind:       kind,
		audience:   AudienceAdmin,
		to:         d.cfg.AdminEmail,
		name:       adminName,
		app:        app,
		transition: transition,
		preview:    true,
		metadata:   map[string]interface{}{"test_email": true, "template_type": string(kind)},
	})
	if delivery.Status != models.DeliverySent {
		return delivery, apperrors.NewNotificationError(string(kind), delivery.err)
	}
	return delivery, nil
}

func (d *Dispatcher) run(ctx context.Context, app models.Application, p plan, transition templates.Transition) Result {
	var deliveries []Delivery
	for _, st := range p.steps() {
		a := attempt{
			kind:          st.kind,
			audience:      st.audience,
			app:           app,
			transition:    transition,
			applicationID: optionalID(app.ID),
			metadata:      metadataFor(st.kind, transition),
		}
		if st.audience == AudienceAdmin {
			a.to, a.name = d.cfg.AdminEmail, adminName
		} else {
			a.to, a.name = app.Email, app.FullName()
		}
		deliveries = append(deliveries, d.send(ctx, a))
	}

	res := summarize(deliveries)
	d.logger.Info("notifications dispatched", map[string]interface{}{
		"applicationId": app.ID,
		"summary":       string(res.Summary),
		"errors":        res.Errors,
	})
	return res
}

type attempt struct {
	kind          templates.Kind
	audience      Audience
	to            string
	name          string
	app           models.Application
	transition    templates.Transition
	applicationID *string
	preview       bool
	metadata      map[string]interface{}
}

// send performs one attempt and appends exactly one log entry for it.
func (d *Dispatcher) send(ctx context.Context, a attempt) Delivery {
	start := time.Now()
	delivery := Delivery{Kind: a.kind, Audience: a.audience, Recipient: a.to}

	subject := templates.DefaultSubject(a.kind)
	rendered, err := d.renderer.Render(a.kind, a.app, a.transition)
	if err == nil {
		if a.preview {
			rendered = templates.Preview(rendered)
		}
		subject = rendered.Subject
		err = d.deliver(ctx, a.to, rendered)
	} else if a.preview {
		subject = templates.Preview(templates.Rendered{Subject: subject}).Subject
	}

	entry := models.EmailLogEntry{
		TemplateType:   string(a.kind),
		RecipientEmail: a.to,
		RecipientName:  a.name,
		Subject:        subject,
		Status:         models.DeliverySent,
		ApplicationID:  a.applicationID,
		Metadata:       a.metadata,
		SentAt:         time.Now().UTC(),
	}
	delivery.Subject = subject
	delivery.Status = models.DeliverySent

	if err != nil {
		msg := err.Error()
		entry.Status = models.DeliveryFailed
		entry.ErrorMessage = &msg
		delivery.Status = models.DeliveryFailed
		delivery.Error = msg
		delivery.err = err
		d.logger.Error("email send failed", map[string]interface{}{
			"template":  string(a.kind),
			"recipient": a.to,
			"error":     err,
		})
	}

	if logErr := d.logs.AppendLog(ctx, entry); logErr != nil {
		metrics.EmailLogFailures.Inc()
		d.logger.Warn("email log append failed", map[string]interface{}{
			"template": string(a.kind),
			"error":    logErr,
		})
	}

	metrics.NotificationsTotal.WithLabelValues(string(a.kind), string(delivery.Status)).Inc()
	d.obs.RecordNotification(ctx, string(a.kind), string(delivery.Status))
	d.obs.RecordNotificationDuration(ctx, time.Since(start), string(a.kind))

	return delivery
}

func (d *Dispatcher) deliver(ctx context.Context, to string, r templates.Rendered) error {
	if to == "" {
		return errNoRecipient
	}
	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()
	return d.sender.Send(ctx, mail.Message{To: to, Subject: r.Subject, HTML: r.HTML})
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
