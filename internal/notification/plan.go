package notification

import (
	"errors"

	"founders-circle/internal/models"
	"founders-circle/internal/templates"
)

type Event int

const (
	EventSubmission Event = iota
	EventStatusChange
)

type Audience string

const (
	AudienceAdmin     Audience = "admin"
	AudienceApplicant Audience = "applicant"
)

const adminName = "Admin"

var errNoRecipient = errors.New("admin recipient not configured")

// plan is one row of the selection table. An empty kind means no email for that audience.
type plan struct {
	applicant  templates.Kind
	admin      templates.Kind
	adminFirst bool
}

type step struct {
	kind     templates.Kind
	audience Audience
}

func (p plan) steps() []step {
	applicant := step{kind: p.applicant, audience: AudienceApplicant}
	admin := step{kind: p.admin, audience: AudienceAdmin}

	ordered := []step{applicant, admin}
	if p.adminFirst {
		ordered = []step{admin, applicant}
	}

	out := make([]step, 0, 2)
	for _, s := range ordered {
		if s.kind != "" {
			out = append(out, s)
		}
	}
	return out
}

var submissionPlan = plan{
	applicant:  templates.KindConfirmation,
	admin:      templates.KindNewApplication,
	adminFirst: true,
}

var statusPlans = map[models.Status]plan{
	models.StatusApproved: {applicant: templates.KindApproved, admin: templates.KindStatusUpdate},
	models.StatusRejected: {applicant: templates.KindRejected, admin: templates.KindStatusUpdate},
}

// planFor looks up the selection table. Statuses without a row send nothing.
func planFor(event Event, status models.Status) (plan, bool) {
	switch event {
	case EventSubmission:
		return submissionPlan, true
	case EventStatusChange:
		p, ok := statusPlans[status]
		return p, ok
	default:
		return plan{}, false
	}
}

// previewTransitions lists the kinds an admin may preview and the transition each one shows.
var previewTransitions = map[templates.Kind]templates.Transition{
	templates.KindNewApplication: {New: models.StatusPending},
	templates.KindApproved:       {Old: models.StatusPending, New: models.StatusApproved},
	templates.KindRejected:       {Old: models.StatusPending, New: models.StatusRejected},
	templates.KindStatusUpdate:   {Old: models.StatusPending, New: models.StatusApproved},
}

func metadataFor(kind templates.Kind, t templates.Transition) map[string]interface{} {
	switch kind {
	case templates.KindNewApplication:
		return map[string]interface{}{"admin_notification": true}
	case templates.KindConfirmation:
		return map[string]interface{}{"user_confirmation": true}
	case templates.KindApproved, templates.KindRejected:
		return map[string]interface{}{"status_change": string(t.New)}
	case templates.KindStatusUpdate:
		return map[string]interface{}{"old_status": string(t.Old), "new_status": string(t.New)}
	default:
		return map[string]interface{}{}
	}
}

// SampleApplication is the applicant shown in template previews.
func SampleApplication() models.Application {
	company := "Test Company"
	return models.Application{
		Email:      "test@example.com",
		FirstName:  "Test",
		LastName:   "User",
		Company:    &company,
		Role:       "entrepreneur",
		Motivation: "This is a test application for template preview.",
		Status:     models.StatusPending,
	}
}
