// internal/models/notification.go
package models

import "time"

// DeliveryStatus is the outcome of one send attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// EmailLogEntry records one attempted send. Entries are append-only.
type EmailLogEntry struct {
	ID             string                 `json:"id,omitempty"`
	TemplateType   string                 `json:"template_type"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name"`
	Subject        string                 `json:"subject"`
	Status         DeliveryStatus         `json:"status"`
	ApplicationID  *string                `json:"application_id"`
	ErrorMessage   *string                `json:"error_message"`
	Metadata       map[string]interface{} `json:"metadata"`
	SentAt         time.Time              `json:"sent_at"`
}

// EmailTemplate is an HTML override saved from the admin dashboard, keyed by template type.
type EmailTemplate struct {
	TemplateType string    `json:"template_type"`
	TemplateHTML string    `json:"template_html"`
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}
