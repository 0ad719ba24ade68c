// Package httpapi exposes the landing page, application and admin endpoints as JSON over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/common/logger"
	"founders-circle/internal/events"
	"founders-circle/internal/models"
	"founders-circle/internal/notification"
	"founders-circle/internal/storage"
	"founders-circle/internal/templates"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultVersion      = "1.0.0"
	DefaultMaxBodyBytes = 1 << 20
)

// Applications is the part of the persistence gateway the handlers use.
type Applications interface {
	Tier() storage.Tier
	CreateApplication(ctx context.Context, app models.NewApplication, meta models.RequestMeta) (*models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status models.Status) (*models.Application, models.Status, error)
	ListEmailLogs(ctx context.Context, limit int) ([]models.EmailLogEntry, error)
}

type Notifier interface {
	NotifyOnSubmission(ctx context.Context, app models.Application) notification.Result
	NotifyOnStatusChange(ctx context.Context, app models.Application, oldStatus, newStatus models.Status) notification.Result
	SendPreview(ctx context.Context, kind templates.Kind, sample *models.Application) (notification.Delivery, error)
}

type Tracker interface {
	JoinWaitlist(ctx context.Context, email, source, userAgent string) (*models.WaitlistEntry, error)
	Track(ctx context.Context, event map[string]interface{}, meta models.RequestMeta) error
}

// Deps wires the router. Templates and Catalog are nil on tiers without them.
type Deps struct {
	Store     Applications
	Templates storage.TemplateStore
	Catalog   storage.CatalogStore
	Notifier  Notifier
	Tracker   Tracker
	Events    events.Publisher

	AdminToken   string
	CORSOrigins  []string
	MaxBodyBytes int64
	Version      string
	Logger       logger.Logger

	// Metrics serves /metrics; promhttp.Handler() when nil.
	Metrics http.Handler
}

type Server struct {
	deps   Deps
	logger logger.Logger
	errors *apperrors.ErrorHandler
	now    func() time.Time
}

// NewRouter builds the chi router. Admin routes exist only on the privileged tier,
// catalog routes only when the tier provides a catalog.
func NewRouter(deps Deps) http.Handler {
	if deps.Version == "" {
		deps.Version = DefaultVersion
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = promhttp.Handler()
	}
	log := deps.Logger.WithFields(map[string]interface{}{"component": "http"})

	s := &Server{
		deps:   deps,
		logger: log,
		errors: apperrors.NewErrorHandler(log),
		now:    time.Now,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.logger))
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Admin-Token", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(s.deps.MaxBodyBytes))

		r.Post("/waitlist", s.handleWaitlist)
		r.Post("/track", s.handleTrack)
		r.Post("/founders-application", s.handleSubmitApplication)

		if s.deps.Store.Tier() == storage.TierPrivileged {
			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdminToken(s.deps.AdminToken, s.logger))
				r.Get("/applications", s.handleListApplications)
				r.Put("/applications/{id}/status", s.handleUpdateStatus)
				r.Get("/email-logs", s.handleEmailLogs)
				r.Post("/test-template", s.handleTestTemplate)
				if s.deps.Templates != nil {
					r.Post("/save-template", s.handleSaveTemplate)
					r.Get("/templates", s.handleListTemplates)
				}
			})
		}

		if s.deps.Catalog != nil {
			r.Get("/categories", s.handleCategories)
			r.Post("/analytics", s.handleAnalytics)
		}
	})

	return r
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Message:   "Assero Backend API is running",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		Version:   s.deps.Version,
	})
}
