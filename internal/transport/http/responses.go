package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"schemeportal/internal/platform/middleware"
	dErrors "schemeportal/pkg/domain-errors"
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeValidation, "invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain errors into the JSON error envelope. Plain
// errors map to 500; their text is exposed, which is acceptable for an
// internal tool but would need masking on a hardened public API.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
	writeJSON(w, status, map[string]string{
		"error":             string(code),
		"error_description": dErrors.MessageOf(err),
	})
}
