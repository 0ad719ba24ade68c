// Package templates renders the German notification emails of the Founders Circle.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/models"
)

// Kind names a notification template. The values double as the template_type in email logs.
type Kind string

const (
	KindConfirmation   Kind = "user_confirmation"
	KindApproved       Kind = "approved"
	KindRejected       Kind = "rejected"
	KindNewApplication Kind = "new_application"
	KindStatusUpdate   Kind = "status_update"
)

const (
	// NoCompany is shown when the applicant left the company empty.
	NoCompany = "Nicht angegeben"

	DefaultDashboardURL = "http://localhost:5173/admin"
	DefaultContactEmail = "assero@assero.io"

	previewPrefix = "[TEST] "

	// germanTimestamp mirrors the de-DE locale string, e.g. 2.1.2006, 15:04:05.
	germanTimestamp = "2.1.2006, 15:04:05"
)

var subjects = map[Kind]string{
	KindConfirmation:   "✅ Bewerbung erfolgreich eingereicht - Assero Founders Circle",
	KindApproved:       "🎉 Willkommen im Assero Founders Circle!",
	KindRejected:       "📝 Update zu Ihrer Founders Circle Bewerbung",
	KindNewApplication: "🚀 Neue Founders Circle Bewerbung eingegangen!",
	KindStatusUpdate:   "📝 Status-Update",
}

//go:embed html/*.html
var bodies embed.FS

// Transition is the status change a status_update mail describes.
type Transition struct {
	Old models.Status
	New models.Status
}

type Rendered struct {
	Kind    Kind
	Subject string
	HTML    string
}

type bodyData struct {
	FirstName    string
	LastName     string
	Email        string
	Company      string
	Role         string
	Motivation   string
	OldStatus    string
	NewStatus    string
	Timestamp    string
	DashboardURL string
	ContactEmail string
}

// Renderer is safe for concurrent use once constructed.
type Renderer struct {
	tmpl         *template.Template
	now          func() time.Time
	loc          *time.Location
	dashboardURL string
	contactEmail string
}

type Option func(*Renderer)

// WithClock replaces time.Now for the timestamp embedded in bodies.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) { r.loc = loc }
}

func WithDashboardURL(url string) Option {
	return func(r *Renderer) {
		if url != "" {
			r.dashboardURL = url
		}
	}
}

func WithContactEmail(email string) Option {
	return func(r *Renderer) {
		if email != "" {
			r.contactEmail = email
		}
	}
}

// New parses the embedded bodies.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.ParseFS(bodies, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := &Renderer{
		tmpl:         tmpl,
		now:          time.Now,
		loc:          time.Local,
		dashboardURL: DefaultDashboardURL,
		contactEmail: DefaultContactEmail,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustNew panics if the embedded templates do not parse.
func MustNew(opts ...Option) *Renderer {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Render produces subject and HTML body for kind. The transition is only read by KindStatusUpdate.
func (r *Renderer) Render(kind Kind, app models.Application, transition Transition) (Rendered, error) {
	if !kind.Valid() {
		return Rendered{}, apperrors.NewTemplateRenderError(string(kind), fmt.Errorf("unknown template kind %q", kind))
	}

	data := bodyData{
		FirstName:    app.FirstName,
		LastName:     app.LastName,
		Email:        app.Email,
		Company:      app.CompanyOr(NoCompany),
		Role:         app.Role,
		Motivation:   app.Motivation,
		OldStatus:    string(transition.Old),
		NewStatus:    string(transition.New),
		Timestamp:    r.now().In(r.loc).Format(germanTimestamp),
		DashboardURL: r.dashboardURL,
		ContactEmail: r.contactEmail,
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(kind)+".html", data); err != nil {
		return Rendered{}, apperrors.NewTemplateRenderError(string(kind), err)
	}

	return Rendered{
		Kind:    kind,
		Subject: Subject(kind, app, transition),
		HTML:    buf.String(),
	}, nil
}

// Subject is deterministic for a given kind, applicant and transition.
func Subject(kind Kind, app models.Application, transition Transition) string {
	if kind == KindStatusUpdate {
		return fmt.Sprintf("📝 Status-Update: %s %s - %s", app.FirstName, app.LastName, transition.New)
	}
	return subjects[kind]
}

// DefaultSubject is the static subject used when rendering failed.
func DefaultSubject(kind Kind) string {
	if s, ok := subjects[kind]; ok {
		return s
	}
	return string(kind)
}

// Preview marks a rendered mail as a test send.
func Preview(r Rendered) Rendered {
	r.Subject = previewPrefix + r.Subject
	return r
}

func (k Kind) Valid() bool {
	_, ok := subjects[k]
	return ok
}
