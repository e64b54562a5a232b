package httptransport

import (
	"net/http"

	"github.com/google/uuid"

	"schemeportal/internal/identity/models"
	"schemeportal/internal/platform/middleware"
	dErrors "schemeportal/pkg/domain-errors"
)

func (h *Handler) handleCitizenSignup(w http.ResponseWriter, r *http.Request) {
	h.handleSignup(w, r, models.RoleCitizen)
}

func (h *Handler) handleAdminSignup(w http.ResponseWriter, r *http.Request) {
	h.handleSignup(w, r, models.RoleAdmin)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request, role models.Role) {
	var req models.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.Role = role

	result, err := h.identity.SignUp(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if role == models.RoleAdmin {
		writeJSON(w, http.StatusCreated, map[string]string{"token": result.Token})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (h *Handler) handleCitizenLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, models.RoleCitizen)
}

func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, models.RoleAdmin)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request, role models.Role) {
	var req models.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.Role = role

	token, err := h.identity.SignIn(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	h.handleProfile(w, r)
}

func (h *Handler) handleAdminProfile(w http.ResponseWriter, r *http.Request) {
	h.handleProfile(w, r)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	accountID, err := callerAccountID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	profile, err := h.identity.GetProfile(r.Context(), accountID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// callerAccountID parses the authenticated account id set by RequireAuth.
func callerAccountID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.GetAccountID(r.Context()))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return id, nil
}
