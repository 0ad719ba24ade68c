// internal/models/application.go
package models

import (
	"strings"
	"time"
)

// Status is the review state of an application. Values outside the known set are stored as given.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// DefaultApplicationSource tags applications that did not say where they came from.
const DefaultApplicationSource = "founders-circle"

type Application struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Company    *string    `json:"company"`
	Role       string     `json:"role"`
	Motivation string     `json:"motivation"`
	Source     string     `json:"source"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

// FullName is "first last".
func (a Application) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CompanyOr returns the company or fallback when none was given.
func (a Application) CompanyOr(fallback string) string {
	if a.Company == nil || *a.Company == "" {
		return fallback
	}
	return *a.Company
}

// NewApplication is a validated submission that has not been stored yet.
type NewApplication struct {
	Email      string
	FirstName  string
	LastName   string
	Company    *string
	Role       string
	Motivation string
	Source     string
}

// WithDefaults fills the source tag and drops an empty company.
func (n NewApplication) WithDefaults() NewApplication {
	if n.Source == "" {
		n.Source = DefaultApplicationSource
	}
	if n.Company != nil && *n.Company == "" {
		n.Company = nil
	}
	return n
}

// RequestMeta is the client information recorded next to flat-file records.
type RequestMeta struct {
	IP        string
	UserAgent string
}
