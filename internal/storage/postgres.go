package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/models"

	"github.com/google/uuid"
)

const applicationColumns = `id, email, first_name, last_name, company, role, motivation, source, status, created_at, reviewed_at`

// PostgresStore serves both database tiers; the tier only decides what the HTTP surface exposes.
type PostgresStore struct {
	db   *sql.DB
	tier Tier
	now  func() time.Time
}

func NewPostgresStore(db *sql.DB, tier Tier) *PostgresStore {
	return &PostgresStore{db: db, tier: tier, now: time.Now}
}

func (s *PostgresStore) Tier() Tier { return s.tier }

func (s *PostgresStore) CreateApplication(ctx context.Context, in models.NewApplication, _ models.RequestMeta) (*models.Application, error) {
	in = in.WithDefaults()
	app := &models.Application{
		ID:         uuid.New().String(),
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Company:    in.Company,
		Role:       in.Role,
		Motivation: in.Motivation,
		Source:     in.Source,
		Status:     models.StatusPending,
		CreatedAt:  s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO founders_applications (
			id, email, first_name, last_name, company, role, motivation, source, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		app.ID, app.Email, app.FirstName, app.LastName, app.Company,
		app.Role, app.Motivation, app.Source, string(app.Status), app.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewStorageError("create_application", err)
	}
	return app, nil
}

func (s *PostgresStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM founders_applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.NewStorageError("list_applications", err)
	}
	defer rows.Close()

	apps := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("list_applications", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list_applications", err)
	}
	return apps, nil
}

func (s *PostgresStore) UpdateApplicationStatus(ctx context.Context, id string, status models.Status) (*models.Application, models.Status, error) {
	// ids are uuids; anything else cannot exist and would only trip a cast error
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", apperrors.NewNotFoundError("application", id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", apperrors.NewStorageError("update_application_status", err)
	}
	defer tx.Rollback()

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT status FROM founders_applications WHERE id = $1 FOR UPDATE`, id).Scan(&prev)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, "", apperrors.NewNotFoundError("application", id)
	}
	if err != nil {
		return nil, "", apperrors.NewStorageError("update_application_status", err)
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE founders_applications
		SET status = $1, reviewed_at = $2
		WHERE id = $3
		RETURNING `+applicationColumns,
		string(status), s.now().UTC(), id,
	)
	app, err := scanApplication(row)
	if err != nil {
		return nil, "", apperrors.NewStorageError("update_application_status", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", apperrors.NewStorageError("update_application_status", err)
	}
	return app, models.Status(prev), nil
}

func (s *PostgresStore) AppendLog(ctx context.Context, entry models.EmailLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = s.now().UTC()
	}

	metadata, err := json.Marshal(metadataOrEmpty(entry.Metadata))
	if err != nil {
		return apperrors.NewStorageError("append_log", fmt.Errorf("marshal metadata: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO email_logs (
			id, template_type, recipient_email, recipient_name, subject,
			status, application_id, error_message, metadata, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.TemplateType, entry.RecipientEmail, entry.RecipientName, entry.Subject,
		string(entry.Status), entry.ApplicationID, entry.ErrorMessage, metadata, entry.SentAt,
	)
	if err != nil {
		return apperrors.NewStorageError("append_log", err)
	}
	return nil
}

func (s *PostgresStore) ListEmailLogs(ctx context.Context, limit int) ([]models.EmailLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_type, recipient_email, recipient_name, subject,
		       status, application_id, error_message, metadata, sent_at
		FROM email_logs
		ORDER BY sent_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("list_email_logs", err)
	}
	defer rows.Close()

	logs := make([]models.EmailLogEntry, 0)
	for rows.Next() {
		var (
			entry         models.EmailLogEntry
			status        string
			applicationID sql.NullString
			errorMessage  sql.NullString
			metadata      []byte
		)
		if err := rows.Scan(
			&entry.ID, &entry.TemplateType, &entry.RecipientEmail, &entry.RecipientName, &entry.Subject,
			&status, &applicationID, &errorMessage, &metadata, &entry.SentAt,
		); err != nil {
			return nil, apperrors.NewStorageError("list_email_logs", err)
		}
		entry.Status = models.DeliveryStatus(status)
		entry.ApplicationID = nullableString(applicationID)
		entry.ErrorMessage = nullableString(errorMessage)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, apperrors.NewStorageError("list_email_logs", fmt.Errorf("decode metadata: %w", err))
			}
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list_email_logs", err)
	}
	return logs, nil
}

// SaveTemplate upserts on template_type; the version is the save time.
func (s *PostgresStore) SaveTemplate(ctx context.Context, templateType, html string) (*models.EmailTemplate, error) {
	now := s.now().UTC()
	tpl := &models.EmailTemplate{
		TemplateType: templateType,
		TemplateHTML: html,
		Version:      now.Format(time.RFC3339Nano),
		CreatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_templates (template_type, template_html, version, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (template_type) DO UPDATE
		SET template_html = EXCLUDED.template_html,
		    version = EXCLUDED.version,
		    created_at = EXCLUDED.created_at`,
		tpl.TemplateType, tpl.TemplateHTML, tpl.Version, tpl.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewStorageError("save_template", err)
	}
	return tpl, nil
}

func (s *PostgresStore) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_type, template_html, version, created_at
		FROM email_templates
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.NewStorageError("list_templates", err)
	}
	defer rows.Close()

	tpls := make([]models.EmailTemplate, 0)
	for rows.Next() {
		var tpl models.EmailTemplate
		if err := rows.Scan(&tpl.TemplateType, &tpl.TemplateHTML, &tpl.Version, &tpl.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("list_templates", err)
		}
		tpls = append(tpls, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list_templates", err)
	}
	return tpls, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]models.AssetCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, description, icon, sort_order, is_active, created_at
		FROM asset_categories
		WHERE is_active = true
		ORDER BY sort_order`)
	if err != nil {
		return nil, apperrors.NewStorageError("list_categories", err)
	}
	defer rows.Close()

	cats := make([]models.AssetCategory, 0)
	for rows.Next() {
		var (
			cat         models.AssetCategory
			description sql.NullString
			icon        sql.NullString
		)
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &description, &icon, &cat.SortOrder, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("list_categories", err)
		}
		cat.Description = nullableString(description)
		cat.Icon = nullableString(icon)
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list_categories", err)
	}
	return cats, nil
}

func (s *PostgresStore) RecordAnalytics(ctx context.Context, event models.AnalyticsEvent) error {
	metadata, err := json.Marshal(metadataOrEmpty(event.Metadata))
	if err != nil {
		return apperrors.NewStorageError("record_analytics", fmt.Errorf("marshal metadata: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics (event_type, user_id, asset_id, metadata, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.EventType, event.UserID, event.AssetID, metadata, event.IPAddress, event.UserAgent,
	)
	if err != nil {
		return apperrors.NewStorageError("record_analytics", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app        models.Application
		company    sql.NullString
		status     string
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&app.ID, &app.Email, &app.FirstName, &app.LastName, &company,
		&app.Role, &app.Motivation, &app.Source, &status, &app.CreatedAt, &reviewedAt,
	); err != nil {
		return nil, err
	}
	app.Company = nullableString(company)
	app.Status = models.Status(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}
	return &app, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func metadataOrEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
