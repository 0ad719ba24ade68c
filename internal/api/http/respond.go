package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	apperrors "founders-circle/internal/common/errors"
	"founders-circle/internal/models"
)

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorBody{OK: false, Error: code})
}

// fail resolves err through the error handler so internals never reach the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status, code := s.errors.Resolve(err, map[string]interface{}{
		"operation": op,
		"path":      r.URL.Path,
		"requestId": requestID(r),
	})
	writeError(w, status, code)
}

// decodeJSON reads any JSON value. An empty body decodes to nil.
func decodeJSON(r *http.Request) (interface{}, error) {
	if r.Body == nil {
		return nil, nil
	}
	var v interface{}
	err := json.NewDecoder(r.Body).Decode(&v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, io.EOF):
		return nil, nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewValidationError(apperrors.PublicInvalidJSON, "request body too large")
		}
		return nil, apperrors.NewValidationError(apperrors.PublicInvalidJSON, err.Error())
	}
}

// decodeObject reads a JSON object body. An empty body or null decodes to an empty map.
func decodeObject(r *http.Request) (map[string]interface{}, error) {
	v, err := decodeJSON(r)
	if err != nil {
		return nil, err
	}
	body, ok := asObject(v)
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.PublicInvalidJSON, "body must be a JSON object")
	}
	return body, nil
}

// asObject reports whether v is a JSON object; nil counts as an empty one.
func asObject(v interface{}) (map[string]interface{}, bool) {
	if v == nil {
		return map[string]interface{}{}, true
	}
	body, ok := v.(map[string]interface{})
	return body, ok
}

// str returns body[key] when it is a string.
func str(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

func optionalStr(body map[string]interface{}, key string) *string {
	s, ok := body[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// requestMeta reads the client address set by the RealIP middleware.
func requestMeta(r *http.Request) models.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return models.RequestMeta{IP: ip, UserAgent: r.Header.Get("User-Agent")}
}
