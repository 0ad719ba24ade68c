package storage

import (
	"context"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/models"
)

// Gateway instruments the selected provider and normalizes its errors.
type Gateway struct {
	provider Provider
	logger   logger.Logger
}

func NewGateway(p Provider, log logger.Logger) *Gateway {
	for _, t := range []Tier{TierPrivileged, TierRestricted, TierFile} {
		v := 0.0
		if t == p.Tier() {
			v = 1
		}
		metrics.StorageTier.WithLabelValues(string(t)).Set(v)
	}
	return &Gateway{
		provider: p,
		logger:   log.WithFields(map[string]interface{}{"component": "storage", "tier": string(p.Tier())}),
	}
}

func (g *Gateway) Tier() Tier {
	return g.provider.Tier()
}

// Privileged reports whether admin operations are available.
func (g *Gateway) Privileged() bool {
	return g.provider.Tier() == TierPrivileged
}

// Database reports whether a Postgres tier is active.
func (g *Gateway) Database() bool {
	return g.provider.Tier() != TierFile
}

func (g *Gateway) CreateApplication(ctx context.Context, app models.NewApplication, meta models.RequestMeta) (*models.Application, error) {
	start := time.Now()
	created, err := g.provider.CreateApplication(ctx, app, meta)
	return created, g.observe("create_application", start, err)
}

func (g *Gateway) ListApplications(ctx context.Context) ([]models.Application, error) {
	start := time.Now()
	apps, err := g.provider.ListApplications(ctx)
	return apps, g.observe("list_applications", start, err)
}

func (g *Gateway) UpdateApplicationStatus(ctx context.Context, id string, status models.Status) (*models.Application, models.Status, error) {
	start := time.Now()
	app, prev, err := g.provider.UpdateApplicationStatus(ctx, id, status)
	return app, prev, g.observe("update_application_status", start, err)
}

func (g *Gateway) AppendLog(ctx context.Context, entry models.EmailLogEntry) error {
	start := time.Now()
	return g.observe("append_log", start, g.provider.AppendLog(ctx, entry))
}

func (g *Gateway) ListEmailLogs(ctx context.Context, limit int) ([]models.EmailLogEntry, error) {
	start := time.Now()
	logs, err := g.provider.ListEmailLogs(ctx, limit)
	return logs, g.observe("list_email_logs", start, err)
}

// Templates returns the template store when the tier has one.
func (g *Gateway) Templates() (TemplateStore, bool) {
	ts, ok := g.provider.(TemplateStore)
	if !ok {
		return nil, false
	}
	return &instrumentedTemplates{g: g, inner: ts}, true
}

// Catalog returns the category/analytics store when the tier has one.
func (g *Gateway) Catalog() (CatalogStore, bool) {
	cs, ok := g.provider.(CatalogStore)
	if !ok {
		return nil, false
	}
	return &instrumentedCatalog{g: g, inner: cs}, true
}

func (g *Gateway) observe(op string, start time.Time, err error) error {
	tier := string(g.provider.Tier())
	metrics.StorageOperationDuration.WithLabelValues(tier, op).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.StorageOperations.WithLabelValues(tier, op, metrics.StatusSuccess).Inc()
		return nil
	}

	if apperrors.IsNotFound(err) {
		metrics.StorageOperations.WithLabelValues(tier, op, "not_found").Inc()
		return err
	}

	metrics.StorageOperations.WithLabelValues(tier, op, metrics.StatusError).Inc()
	g.logger.Debug("storage operation failed", map[string]interface{}{"operation": op, "error": err})

	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewStorageError(op, err)
}

type instrumentedTemplates struct {
	g     *Gateway
	inner TemplateStore
}

func (t *instrumentedTemplates) SaveTemplate(ctx context.Context, templateType, html string) (*models.EmailTemplate, error) {
	start := time.Now()
	tpl, err := t.inner.SaveTemplate(ctx, templateType, html)
	return tpl, t.g.observe("save_template", start, err)
}

func (t *instrumentedTemplates) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	start := time.Now()
	tpls, err := t.inner.ListTemplates(ctx)
	return tpls, t.g.observe("list_templates", start, err)
}

type instrumentedCatalog struct {
	g     *Gateway
	inner CatalogStore
}

func (c *instrumentedCatalog) ListCategories(ctx context.Context) ([]models.AssetCategory, error) {
	start := time.Now()
	cats, err := c.inner.ListCategories(ctx)
	return cats, c.g.observe("list_categories", start, err)
}

func (c *instrumentedCatalog) RecordAnalytics(ctx context.Context, event models.AnalyticsEvent) error {
	start := time.Now()
	return c.g.observe("record_analytics", start, c.inner.RecordAnalytics(ctx, event))
}
