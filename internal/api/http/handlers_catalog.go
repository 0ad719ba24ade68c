package httpapi

import (
	"net/http"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/models"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Catalog.ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, err, "list_categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "categories": nonNil(categories)})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(r)
	if err != nil {
		s.fail(w, r, err, "record_analytics")
		return
	}

	eventType := str(body, "event_type")
	if eventType == "" {
		writeError(w, http.StatusBadRequest, apperrors.PublicMissingParameters)
		return
	}

	metadata, _ := body["metadata"].(map[string]interface{})
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	meta := requestMeta(r)

	event := models.AnalyticsEvent{
		EventType: eventType,
		UserID:    optionalStr(body, "user_id"),
		AssetID:   optionalStr(body, "asset_id"),
		Metadata:  metadata,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.deps.Catalog.RecordAnalytics(r.Context(), event); err != nil {
		s.fail(w, r, err, "record_analytics")
		return
	}
	writeJSON(w, http.StatusOK, errorBody{OK: true})
}
