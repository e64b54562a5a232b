package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"schemeportal/internal/scheme/models"
	dErrors "schemeportal/pkg/domain-errors"
)

func (h *Handler) handleCreateScheme(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSchemeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	scheme, err := h.schemes.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, scheme)
}

func (h *Handler) handleListSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.schemes.ListActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schemes)
}

type eligibilityRequest struct {
	Answers map[int]bool `json:"answers"`
}

func (h *Handler) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	schemeID, err := pathUUID(r, "schemeID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req eligibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	eligible, err := h.schemes.CheckEligibility(r.Context(), schemeID, req.Answers)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"eligible": eligible})
}

// pathUUID parses a uuid route parameter, mapping garbage to a 404 so
// malformed ids read the same as missing resources.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeNotFound, "%s is not a valid id", param)
	}
	return id, nil
}
