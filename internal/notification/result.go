package notification

import (
	"founders-circle/internal/models"
	"founders-circle/internal/templates"
)

type Summary string

const (
	SummarySuccess Summary = "success"
	SummaryPartial Summary = "partial"
	SummaryFailed  Summary = "failed"
	// SummarySkipped means the event triggers no email.
	SummarySkipped Summary = "skipped"
)

// Error tags reported to API clients.
const (
	ErrTagAdmin     = "admin_email_failed"
	ErrTagApplicant = "user_email_failed"
)

// Delivery is the outcome of one send attempt.
type Delivery struct {
	Kind      templates.Kind        `json:"template_type"`
	Audience  Audience              `json:"audience"`
	Recipient string                `json:"recipient"`
	Subject   string                `json:"subject"`
	Status    models.DeliveryStatus `json:"status"`
	Error     string                `json:"error,omitempty"`

	err error
}

type Result struct {
	Deliveries []Delivery `json:"deliveries"`
	Errors     []string   `json:"errors"`
	Summary    Summary    `json:"summary"`
}

// EmailStatus collapses the summary to what the submission endpoint reports.
func (r Result) EmailStatus() string {
	if len(r.Errors) == 0 {
		return string(SummarySuccess)
	}
	return string(SummaryPartial)
}

func summarize(deliveries []Delivery) Result {
	res := Result{Deliveries: deliveries, Errors: []string{}}
	if len(deliveries) == 0 {
		res.Summary = SummarySkipped
		return res
	}

	sent := 0
	for _, d := range deliveries {
		if d.Status == models.DeliverySent {
			sent++
			continue
		}
		if d.Audience == AudienceAdmin {
			res.Errors = append(res.Errors, ErrTagAdmin)
		} else {
			res.Errors = append(res.Errors, ErrTagApplicant)
		}
	}

	switch sent {
	case len(deliveries):
		res.Summary = SummarySuccess
	case 0:
		res.Summary = SummaryFailed
	default:
		res.Summary = SummaryPartial
	}
	return res
}
