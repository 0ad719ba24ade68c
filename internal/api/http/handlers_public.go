package httpapi

import (
	"net/http"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/common/validation"
	"founders-circle/internal/models"
)

var applicationSchema = validation.MustCompile(validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"firstName":  {Type: "string", MinLength: validation.IntPtr(1)},
		"lastName":   {Type: "string", MinLength: validation.IntPtr(1)},
		"email":      {Type: "string", MinLength: validation.IntPtr(1)},
		"role":       {Type: "string", MinLength: validation.IntPtr(1)},
		"motivation": {Type: "string", MinLength: validation.IntPtr(1)},
	},
	Required: []string{"firstName", "lastName", "email", "role", "motivation"},
})

func (s *Server) handleWaitlist(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		s.fail(w, r, err, "waitlist")
		return
	}

	email := str(body, "email")
	if !validation.ValidateEmail(email) {
		writeError(w, http.StatusBadRequest, apperrors.PublicInvalidEmail)
		return
	}

	if _, err := s.deps.Tracker.JoinWaitlist(r.Context(), email, str(body, "source"), r.Header.Get("User-Agent")); err != nil {
		s.fail(w, r, err, "waitlist")
		return
	}
	writeJSON(w, http.StatusOK, errorBody{OK: true})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		s.fail(w, r, err, "track")
		return
	}

	if err := s.deps.Tracker.Track(r.Context(), body, requestMeta(r)); err != nil {
		s.logger.Error("track append failed", map[string]interface{}{"error": err, "requestId": requestID(r)})
		writeJSON(w, http.StatusInternalServerError, errorBody{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, errorBody{OK: true})
}

type submissionResponse struct {
	OK            bool     `json:"ok"`
	ApplicationID string   `json:"applicationId"`
	EmailStatus   string   `json:"emailStatus"`
	EmailErrors   []string `json:"emailErrors"`
}

// handleSubmitApplication stores the application first; mail problems never fail the request.
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeJSON(r)
	if err != nil {
		s.fail(w, r, err, "submit_application")
		return
	}

	body, ok := asObject(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, apperrors.PublicMissingRequiredFields)
		return
	}
	if result := applicationSchema.Validate(body); !result.Valid {
		writeError(w, http.StatusBadRequest, apperrors.PublicMissingRequiredFields)
		return
	}
	if !validation.ValidateEmail(str(body, "email")) {
		writeError(w, http.StatusBadRequest, apperrors.PublicInvalidEmail)
		return
	}

	in := models.NewApplication{
		Email:      str(body, "email"),
		FirstName:  str(body, "firstName"),
		LastName:   str(body, "lastName"),
		Company:    optionalStr(body, "company"),
		Role:       str(body, "role"),
		Motivation: str(body, "motivation"),
		Source:     str(body, "source"),
	}.WithDefaults()

	app, err := s.deps.Store.CreateApplication(r.Context(), in, requestMeta(r))
	if err != nil {
		s.fail(w, r, err, "submit_application")
		return
	}

	s.logger.Info("application received", map[string]interface{}{
		"applicationId": app.ID,
		"role":          app.Role,
		"tier":          string(s.deps.Store.Tier()),
	})

	res := s.deps.Notifier.NotifyOnSubmission(r.Context(), *app)
	s.deps.Events.ApplicationSubmitted(r.Context(), *app)

	writeJSON(w, http.StatusOK, submissionResponse{
		OK:            true,
		ApplicationID: app.ID,
		EmailStatus:   res.EmailStatus(),
		EmailErrors:   nonNil(res.Errors),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
