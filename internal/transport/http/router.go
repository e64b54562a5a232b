package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationservice "schemeportal/internal/application/service"
	identitymodels "schemeportal/internal/identity/models"
	identityservice "schemeportal/internal/identity/service"
	"schemeportal/internal/identity/token"
	"schemeportal/internal/platform/middleware"
	schemeservice "schemeportal/internal/scheme/service"
)

// Handler is the thin HTTP layer. It delegates to domain services without
// embedding business logic so transport concerns remain isolated.
type Handler struct {
	identity     *identityservice.Service
	schemes      *schemeservice.Service
	applications *applicationservice.Service
	tokens       *token.Service
	logger       *slog.Logger
}

func NewHandler(
	identity *identityservice.Service,
	schemes *schemeservice.Service,
	applications *applicationservice.Service,
	tokens *token.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		identity:     identity,
		schemes:      schemes,
		applications: applications,
		tokens:       tokens,
		logger:       logger,
	}
}

// tokenVerifier adapts the JWT service to the middleware contract.
type tokenVerifier struct {
	tokens *token.Service
}

func (v *tokenVerifier) VerifyToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		AccountID: claims.Subject,
		Role:      claims.Role,
	}, nil
}

// NewRouter wires all endpoints. Public routes come first; the citizen and
// admin groups layer RequireAuth and the role gate.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	requireAuth := middleware.RequireAuth(&tokenVerifier{tokens: h.tokens}, h.logger)
	citizenOnly := middleware.RequireRole(string(identitymodels.RoleCitizen), h.logger)
	adminOnly := middleware.RequireRole(string(identitymodels.RoleAdmin), h.logger)

	r.Get("/api/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/citizen/signup", h.handleCitizenSignup)
	r.Post("/api/auth/citizen/login", h.handleCitizenLogin)
	r.Post("/api/auth/admin/signup", h.handleAdminSignup)
	r.Post("/api/auth/admin/login", h.handleAdminLogin)

	r.Get("/api/schemes", h.handleListSchemes)
	r.Post("/api/schemes/{schemeID}/eligibility", h.handleCheckEligibility)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, citizenOnly)
		r.Post("/api/applications", h.handleSubmitApplication)
		r.Get("/api/me/profile", h.handleMyProfile)
		r.Get("/api/me/applications", h.handleMyApplications)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, adminOnly)
		r.Post("/api/schemes", h.handleCreateScheme)
		r.Get("/api/admin/profile", h.handleAdminProfile)
		r.Get("/api/admin/applications", h.handleAllApplications)
		r.Post("/api/admin/applications/{appID}/approve", h.handleApproveApplication)
		r.Post("/api/admin/applications/{appID}/reject", h.handleRejectApplication)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
