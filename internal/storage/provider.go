// Package storage persists applications and email logs on the best backend reachable at startup.
package storage

import (
	"context"
	"fmt"
	"strings"

	"founders-circle/internal/common/logger"
	"founders-circle/internal/models"
)

// Tier identifies a persistence backend. Admin capabilities depend on it.
type Tier string

const (
	TierPrivileged Tier = "privileged"
	TierRestricted Tier = "restricted"
	TierFile       Tier = "file"
)

// AdminLogLimit is the number of email log entries shown in the admin view.
const AdminLogLimit = 100

// Provider is implemented identically by every tier.
type Provider interface {
	Tier() Tier
	CreateApplication(ctx context.Context, app models.NewApplication, meta models.RequestMeta) (*models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	// UpdateApplicationStatus returns the updated record and the status it had before.
	UpdateApplicationStatus(ctx context.Context, id string, status models.Status) (*models.Application, models.Status, error)
	AppendLog(ctx context.Context, entry models.EmailLogEntry) error
	ListEmailLogs(ctx context.Context, limit int) ([]models.EmailLogEntry, error)
}

// TemplateStore is offered by database tiers only.
type TemplateStore interface {
	SaveTemplate(ctx context.Context, templateType, html string) (*models.EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]models.EmailTemplate, error)
}

// CatalogStore is offered by database tiers only.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.AssetCategory, error)
	RecordAnalytics(ctx context.Context, event models.AnalyticsEvent) error
}

// Candidate is one ranked backend. Open should fail fast when the backend is unusable.
type Candidate struct {
	Tier Tier
	Open func(ctx context.Context) (Provider, error)
}

// Select opens candidates in order and returns the first that succeeds.
// The choice is fixed for the life of the returned gateway.
func Select(ctx context.Context, log logger.Logger, candidates ...Candidate) (*Gateway, error) {
	var failures []string
	for _, c := range candidates {
		if c.Open == nil {
			continue
		}
		p, err := c.Open(ctx)
		if err != nil {
			log.Warn("storage tier unavailable", map[string]interface{}{
				"tier":  string(c.Tier),
				"error": err,
			})
			failures = append(failures, fmt.Sprintf("%s: %v", c.Tier, err))
			continue
		}
		log.Info("storage tier selected", map[string]interface{}{"tier": string(p.Tier())})
		return NewGateway(p, log), nil
	}
	return nil, fmt.Errorf("no storage tier available: %s", strings.Join(failures, "; "))
}
