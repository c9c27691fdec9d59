package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"demowallet/internal/log"
	"demowallet/internal/wallet"
)

// viewResponse is the body of every wallet endpoint: the session view plus
// the error that rejected the request, if any.
type viewResponse struct {
	wallet.View
	Error string `json:"error,omitempty"`
}

// statusFor maps wallet errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, wallet.ErrInvalidCredentials), errors.Is(err, wallet.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, wallet.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, wallet.ErrInvalidTransition),
		errors.Is(err, wallet.ErrNoActiveAccount),
		errors.Is(err, wallet.ErrInsightInFlight),
		errors.Is(err, wallet.ErrNoInputScreen):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		// unknown screens, malformed and oversized bodies, failed validation
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(),
			"Failed to encode response", log.FieldError, err.Error())
	}
}

// writeView responds with the session's current view. A non-nil err selects
// the status code and is echoed in the error field.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request, sess *wallet.Session, err error) {
	s.writeViewStatus(w, r, sess, statusFor(err), err)
}

func (s *Server) writeViewStatus(w http.ResponseWriter, r *http.Request, sess *wallet.Session, status int, err error) {
	resp := viewResponse{View: s.wallet.View(sess)}
	if err != nil {
		resp.Error = err.Error()
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).DebugContext(r.Context(),
			"Request rejected",
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, status,
			log.FieldError, err.Error())
	}
	writeJSON(w, r, status, resp)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, map[string]string{
		"error": "Rate limit exceeded. Please try again later.",
	})
}
