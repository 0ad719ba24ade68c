package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/common/logger"
	"founders-circle/internal/mail"
	"founders-circle/internal/models"
	"founders-circle/internal/notification"
	"founders-circle/internal/storage"
	"founders-circle/internal/templates"
	"founders-circle/internal/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// memoryStore is an in-memory provider with a configurable tier.
type memoryStore struct {
	mu        sync.Mutex
	tier      storage.Tier
	apps      map[string]*models.Application
	order     []string
	logs      []models.EmailLogEntry
	createErr error
	templates []models.EmailTemplate
	cats      []models.AssetCategory
	analytics []models.AnalyticsEvent
}

func newMemoryStore(tier storage.Tier) *memoryStore {
	return &memoryStore{tier: tier, apps: map[string]*models.Application{}}
}

func (m *memoryStore) Tier() storage.Tier { return m.tier }

func (m *memoryStore) CreateApplication(_ context.Context, in models.NewApplication, _ models.RequestMeta) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	in = in.WithDefaults()
	app := &models.Application{
		ID:         "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f",
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Company:    in.Company,
		Role:       in.Role,
		Motivation: in.Motivation,
		Source:     in.Source,
		Status:     models.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	m.apps[app.ID] = app
	m.order = append(m.order, app.ID)
	cp := *app
	return &cp, nil
}

func (m *memoryStore) ListApplications(context.Context) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, *m.apps[m.order[i]])
	}
	return out, nil
}

func (m *memoryStore) UpdateApplicationStatus(_ context.Context, id string, status models.Status) (*models.Application, models.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, "", apperrors.NewNotFoundError("application", id)
	}
	prev := app.Status
	now := time.Now().UTC()
	app.Status = status
	app.ReviewedAt = &now
	cp := *app
	return &cp, prev, nil
}

func (m *memoryStore) AppendLog(_ context.Context, entry models.EmailLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, entry)
	return nil
}

func (m *memoryStore) ListEmailLogs(_ context.Context, limit int) ([]models.EmailLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.EmailLogEntry(nil), m.logs...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) SaveTemplate(_ context.Context, templateType, html string) (*models.EmailTemplate, error) {
	t := models.EmailTemplate{TemplateType: templateType, TemplateHTML: html, Version: "v1"}
	m.templates = append(m.templates, t)
	return &t, nil
}

func (m *memoryStore) ListTemplates(context.Context) ([]models.EmailTemplate, error) {
	return m.templates, nil
}

func (m *memoryStore) ListCategories(context.Context) ([]models.AssetCategory, error) {
	return m.cats, nil
}

func (m *memoryStore) RecordAnalytics(_ context.Context, e models.AnalyticsEvent) error {
	m.analytics = append(m.analytics, e)
	return nil
}

func (m *memoryStore) logCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

type stubSender struct {
	enabled bool
	sent    []mail.Message
}

func (s *stubSender) Enabled() bool { return s.enabled }

func (s *stubSender) Send(_ context.Context, msg mail.Message) error {
	if !s.enabled {
		return mail.ErrNotConfigured
	}
	s.sent = append(s.sent, msg)
	return nil
}

type recordingEvents struct {
	submitted []string
	changed   []string
}

func (e *recordingEvents) ApplicationSubmitted(_ context.Context, app models.Application) {
	e.submitted = append(e.submitted, app.ID)
}

func (e *recordingEvents) ApplicationStatusChanged(_ context.Context, app models.Application, old models.Status) {
	e.changed = append(e.changed, string(old)+"->"+string(app.Status))
}

type testEnv struct {
	router  http.Handler
	store   *memoryStore
	sender  *stubSender
	events  *recordingEvents
	dataDir string
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, tier storage.Tier, mailEnabled bool, opts ...envOption) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := newMemoryStore(tier)
	sender := &stubSender{enabled: mailEnabled}
	dir := t.TempDir()

	recorder, err := tracking.NewRecorder(dir, nil, log)
	require.NoError(t, err)

	dispatcher := notification.NewDispatcher(templates.MustNew(), sender, store,
		notification.Config{AdminEmail: "admin@assero.io", SendTimeout: time.Second}, log, nil)
	evts := &recordingEvents{}

	deps := Deps{
		Store:    store,
		Notifier: dispatcher,
		Tracker:  recorder,
		Events:   evts,
		Logger:   log,
	}
	if tier != storage.TierFile {
		deps.Templates = store
		deps.Catalog = store
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{router: NewRouter(deps), store: store, sender: sender, events: evts, dataDir: dir}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func annaBody() map[string]interface{} {
	return map[string]interface{}{
		"firstName":  "Anna",
		"lastName":   "Muster",
		"email":      "anna@example.com",
		"role":       "investor",
		"motivation": "Ich möchte investieren.",
	}
}

// ==========================
// Health & Metrics
// ==========================

func TestHealth(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false)
	rec, body := env.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Assero Backend API is running", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
	_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false)
	env.do(t, http.MethodGet, "/", nil)

	rec, _ := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

// ==========================
// Founders Application
// ==========================

func TestSubmitApplication_AnnaMuster(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)

	rec, body := env.do(t, http.MethodPost, "/api/founders-application", annaBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f", body["applicationId"])
	assert.Equal(t, "success", body["emailStatus"])
	assert.Equal(t, []interface{}{}, body["emailErrors"])

	apps, _ := env.store.ListApplications(context.Background())
	require.Len(t, apps, 1)
	assert.Equal(t, models.StatusPending, apps[0].Status)
	assert.Equal(t, "founders-circle", apps[0].Source)
	assert.Nil(t, apps[0].Company)

	require.Len(t, env.sender.sent, 2)
	assert.Equal(t, "admin@assero.io", env.sender.sent[0].To)
	assert.Equal(t, "anna@example.com", env.sender.sent[1].To)
	assert.Equal(t, 2, env.store.logCount())
	assert.Equal(t, []string{"6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"}, env.events.submitted)
}

func TestSubmitApplication_MailUnreachableStillOK(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, false)

	rec, body := env.do(t, http.MethodPost, "/api/founders-application", annaBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "partial", body["emailStatus"])
	assert.Equal(t, []interface{}{"admin_email_failed", "user_email_failed"}, body["emailErrors"])
	assert.Equal(t, 2, env.store.logCount())
}

func TestSubmitApplication_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[string]interface{})
		wantCode string
	}{
		{"missing first name", func(b map[string]interface{}) { delete(b, "firstName") }, "missing_required_fields"},
		{"empty motivation", func(b map[string]interface{}) { b["motivation"] = "" }, "missing_required_fields"},
		{"non-string role", func(b map[string]interface{}) { b["role"] = 7 }, "missing_required_fields"},
		{"no tld", func(b map[string]interface{}) { b["email"] = "anna@example" }, "invalid_email"},
		{"short tld", func(b map[string]interface{}) { b["email"] = "anna@example.c" }, "invalid_email"},
		{"whitespace", func(b map[string]interface{}) { b["email"] = "an na@example.com" }, "invalid_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, storage.TierPrivileged, true)
			b := annaBody()
			tt.mutate(b)

			rec, body := env.do(t, http.MethodPost, "/api/founders-application", b)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, tt.wantCode, body["error"])

			apps, _ := env.store.ListApplications(context.Background())
			assert.Empty(t, apps)
			assert.Zero(t, env.store.logCount())
			assert.Empty(t, env.sender.sent)
		})
	}
}

func TestSubmitApplication_StorageFailure(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)
	env.store.createErr = apperrors.NewStorageError("create_application", errors.New("connection reset"))

	rec, body := env.do(t, http.MethodPost, "/api/founders-application", annaBody())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]interface{}{"ok": false, "error": "server_error"}, body)
	assert.Zero(t, env.store.logCount())
	assert.Empty(t, env.sender.sent)
	assert.Empty(t, env.events.submitted)
}

func TestSubmitApplication_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)

	rec, body := env.do(t, http.MethodPost, "/api/founders-application", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", body["error"])
}

func TestSubmitApplication_NonObjectBody(t *testing.T) {
	for _, raw := range []string{`[]`, `["anna@example.com"]`, `"anna"`, `42`, `null`} {
		t.Run(raw, func(t *testing.T) {
			env := newTestEnv(t, storage.TierPrivileged, true)

			rec, body := env.do(t, http.MethodPost, "/api/founders-application", raw)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "missing_required_fields", body["error"])
			apps, _ := env.store.ListApplications(context.Background())
			assert.Empty(t, apps)
		})
	}
}

func TestTrack_NonObjectBodyRejected(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false)

	rec, body := env.do(t, http.MethodPost, "/api/track", `["cta_click"]`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", body["error"])
	_, err := os.Stat(filepath.Join(env.dataDir, tracking.AnalyticsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestSubmitApplication_FileTierEndToEnd(t *testing.T) {
	log := logger.NewTestLogger(t)
	dir := t.TempDir()
	fs, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	gw := storage.NewGateway(fs, log)
	recorder, err := tracking.NewRecorder(dir, nil, log)
	require.NoError(t, err)

	router := NewRouter(Deps{
		Store:    gw,
		Notifier: notification.NewDispatcher(templates.MustNew(), mail.Disabled{}, gw, notification.Config{}, log, nil),
		Tracker:  recorder,
		Logger:   log,
	})

	b, _ := json.Marshal(annaBody())
	req := httptest.NewRequest(http.MethodPost, "/api/founders-application", bytes.NewReader(b))
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Regexp(t, `^founder_\d+_[0-9a-z]{9}$`, body["applicationId"])

	raw, err := os.ReadFile(filepath.Join(dir, storage.ApplicationsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ip":"198.51.100.4"`)
	assert.Contains(t, string(raw), `"ua":"test-agent"`)

	logs, err := gw.ListEmailLogs(context.Background(), storage.AdminLogLimit)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	adminReq := httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil)
	adminRec := httptest.NewRecorder()
	router.ServeHTTP(adminRec, adminReq)
	assert.Equal(t, http.StatusNotFound, adminRec.Code)
}

// ==========================
// Admin
// ==========================

func TestUpdateStatus_PendingToApproved(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)
	_, created := env.do(t, http.MethodPost, "/api/founders-application", annaBody())
	id := created["applicationId"].(string)
	before := env.store.logCount()

	rec, body := env.do(t, http.MethodPut, "/api/admin/applications/"+id+"/status", map[string]string{"status": "approved"})

	require.Equal(t, http.StatusOK, rec.Code)
	app := body["application"].(map[string]interface{})
	assert.Equal(t, "approved", app["status"])
	assert.NotNil(t, app["reviewed_at"])

	assert.Equal(t, before+2, env.store.logCount())
	logs, _ := env.store.ListEmailLogs(context.Background(), 100)
	assert.Equal(t, "approved", logs[before].TemplateType)
	assert.Equal(t, "status_update", logs[before+1].TemplateType)
	assert.Equal(t, []string{"pending->approved"}, env.events.changed)
}

func TestUpdateStatus_NoMailCases(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		second string
	}{
		{"back to pending", "approved", "pending"},
		{"same status", "approved", "approved"},
		{"custom status", "on_hold", "waitlisted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, storage.TierPrivileged, true)
			_, created := env.do(t, http.MethodPost, "/api/founders-application", annaBody())
			id := created["applicationId"].(string)
			env.do(t, http.MethodPut, "/api/admin/applications/"+id+"/status", map[string]string{"status": tt.first})
			before := env.store.logCount()

			rec, body := env.do(t, http.MethodPut, "/api/admin/applications/"+id+"/status", map[string]string{"status": tt.second})

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.second, body["application"].(map[string]interface{})["status"])
			assert.Equal(t, before, env.store.logCount())
		})
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)

	rec, body := env.do(t, http.MethodPut, "/api/admin/applications/unknown/status", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])

	rec, body = env.do(t, http.MethodPut, "/api/admin/applications/unknown/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_status", body["error"])
}

func TestAdminLists(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)
	env.do(t, http.MethodPost, "/api/founders-application", annaBody())

	rec, body := env.do(t, http.MethodGet, "/api/admin/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["applications"], 1)

	rec, body = env.do(t, http.MethodGet, "/api/admin/email-logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["emailLogs"], 2)

	rec, body = env.do(t, http.MethodGet, "/api/admin/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["templates"])
}

func TestTestTemplate(t *testing.T) {
	t.Run("sends preview", func(t *testing.T) {
		env := newTestEnv(t, storage.TierPrivileged, true)
		rec, body := env.do(t, http.MethodPost, "/api/admin/test-template", map[string]string{"templateType": "approved"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Test email sent successfully", body["message"])
		require.Len(t, env.sender.sent, 1)
		assert.True(t, strings.HasPrefix(env.sender.sent[0].Subject, "[TEST] "))
		assert.Zero(t, len(env.store.order))
	})

	t.Run("invalid type", func(t *testing.T) {
		env := newTestEnv(t, storage.TierPrivileged, true)
		rec, body := env.do(t, http.MethodPost, "/api/admin/test-template", map[string]string{"templateType": "user_confirmation"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_template_type", body["error"])
	})

	t.Run("mail not configured wins", func(t *testing.T) {
		env := newTestEnv(t, storage.TierPrivileged, false)
		rec, body := env.do(t, http.MethodPost, "/api/admin/test-template", map[string]string{"templateType": "bogus"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email_not_configured", body["error"])
	})
}

func TestSaveTemplate(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true)

	rec, body := env.do(t, http.MethodPost, "/api/admin/save-template", map[string]string{"templateType": "approved"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_parameters", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/admin/save-template", map[string]string{"templateType": "approved", "templateHtml": "<p>Hallo</p>"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Template saved successfully", body["message"])
	require.Len(t, env.store.templates, 1)
	assert.Equal(t, "<p>Hallo</p>", env.store.templates[0].TemplateHTML)
}

func TestAdminRoutes_TierGating(t *testing.T) {
	env := newTestEnv(t, storage.TierRestricted, true)

	rec, _ := env.do(t, http.MethodGet, "/api/admin/applications", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["categories"])
}

func TestAdminToken(t *testing.T) {
	env := newTestEnv(t, storage.TierPrivileged, true, func(d *Deps) { d.AdminToken = "s3cret" })

	rec, body := env.do(t, http.MethodGet, "/api/admin/applications", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", body["error"])

	rec, _ = env.do(t, http.MethodGet, "/api/admin/applications", nil, "X-Admin-Token", "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Landing page
// ==========================

func TestWaitlist(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false)

	rec, body := env.do(t, http.MethodPost, "/api/waitlist", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_email", body["error"])

	rec, body = env.do(t, http.MethodPost, "/api/waitlist", map[string]string{"email": "max@example.com"}, "User-Agent", "Mozilla/5.0 (X11, Linux)")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"ok": true}, body)

	raw, err := os.ReadFile(filepath.Join(env.dataDir, tracking.WaitlistFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), ",max@example.com,lp,Mozilla/5.0 (X11  Linux)\n")
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false)

	rec, body := env.do(t, http.MethodPost, "/api/track", map[string]string{"event": "cta_click"}, "X-Forwarded-For", "203.0.113.9")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"ok": true}, body)

	raw, err := os.ReadFile(filepath.Join(env.dataDir, tracking.AnalyticsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event":"cta_click"`)
	assert.Contains(t, string(raw), `"ip":"203.0.113.9"`)
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t, storage.TierRestricted, false)

	rec, body := env.do(t, http.MethodPost, "/api/analytics", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_parameters", body["error"])

	rec, _ = env.do(t, http.MethodPost, "/api/analytics", map[string]interface{}{
		"event_type": "asset_view",
		"asset_id":   "a-1",
	}, "User-Agent", "curl/8.0")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.store.analytics, 1)

	got := env.store.analytics[0]
	assert.Equal(t, "asset_view", got.EventType)
	assert.Nil(t, got.UserID)
	assert.Equal(t, "a-1", *got.AssetID)
	assert.Equal(t, map[string]interface{}{}, got.Metadata)
	assert.Equal(t, "curl/8.0", got.UserAgent)
}

func TestCatalogRoutes_AbsentOnFileTier(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false)

	rec, _ := env.do(t, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, storage.TierFile, false, func(d *Deps) { d.CORSOrigins = []string{"https://assero.io"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/waitlist", nil)
	req.Header.Set("Origin", "https://assero.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "https://assero.io", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
