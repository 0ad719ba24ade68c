package httpapi

import (
	"net/http"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/models"
	"founders-circle/internal/storage"
	"founders-circle/internal/templates"

	"github.com/go-chi/chi/v5"
)

type okMessage struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.deps.Store.ListApplications(r.Context())
	if err != nil {
		s.fail(w, r, err, "list_applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "applications": nonNil(apps)})
}

// handleUpdateStatus accepts any non-empty status; only approved and rejected send mail.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := decodeObject(r)
	if err != nil {
		s.fail(w, r, err, "update_status")
		return
	}

	status := models.Status(str(body, "status"))
	if status == "" {
		writeError(w, http.StatusBadRequest, apperrors.PublicMissingStatus)
		return
	}

	app, oldStatus, err := s.deps.Store.UpdateApplicationStatus(r.Context(), id, status)
	if err != nil {
		s.fail(w, r, err, "update_status")
		return
	}

	s.logger.Info("application status updated", map[string]interface{}{
		"applicationId": app.ID,
		"oldStatus":     string(oldStatus),
		"newStatus":     string(status),
	})

	s.deps.Notifier.NotifyOnStatusChange(r.Context(), *app, oldStatus, status)
	if oldStatus != status {
		s.deps.Events.ApplicationStatusChanged(r.Context(), *app, oldStatus)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "application": app})
}

func (s *Server) handleEmailLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.deps.Store.ListEmailLogs(r.Context(), storage.AdminLogLimit)
	if err != nil {
		s.fail(w, r, err, "list_email_logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "emailLogs": nonNil(logs)})
}

func (s *Server) handleTestTemplate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		s.fail(w, r, err, "test_template")
		return
	}

	kind := templates.Kind(str(body, "templateType"))
	if _, err := s.deps.Notifier.SendPreview(r.Context(), kind, nil); err != nil {
		s.fail(w, r, err, "test_template")
		return
	}
	writeJSON(w, http.StatusOK, okMessage{OK: true, Message: "Test email sent successfully"})
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		s.fail(w, r, err, "save_template")
		return
	}

	templateType, html := str(body, "templateType"), str(body, "templateHtml")
	if templateType == "" || html == "" {
		writeError(w, http.StatusBadRequest, apperrors.PublicMissingParameters)
		return
	}

	if _, err := s.deps.Templates.SaveTemplate(r.Context(), templateType, html); err != nil {
		s.fail(w, r, err, "save_template")
		return
	}
	s.logger.Info("template saved", map[string]interface{}{"templateType": templateType})
	writeJSON(w, http.StatusOK, okMessage{OK: true, Message: "Template saved successfully"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Templates.ListTemplates(r.Context())
	if err != nil {
		s.fail(w, r, err, "list_templates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "templates": nonNil(list)})
}
