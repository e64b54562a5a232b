package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appmodels "schemeportal/internal/application/models"
	identity "schemeportal/internal/identity/models"
	"schemeportal/internal/platform/metrics"
	scheme "schemeportal/internal/scheme/models"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/sentinel"
)

type ApplicationStore interface {
	Create(ctx context.Context, app *appmodels.Application) error
	ListByCitizen(ctx context.Context, citizenProfileID uuid.UUID) ([]appmodels.Application, error)
	ListAll(ctx context.Context) ([]appmodels.Application, error)
	FindByID(ctx context.Context, id uuid.UUID) (*appmodels.Application, error)
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status appmodels.Status, reviewedAt time.Time, notes string) (*appmodels.Application, error)
}

// SchemeDirectory resolves schemes for validation and display joins.
type SchemeDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*scheme.Scheme, error)
}

// ProfileDirectory resolves citizen profiles for ownership and display joins.
type ProfileDirectory interface {
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*identity.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error)
}

// Service drives the application lifecycle: submission by citizens,
// review by admins.
type Service struct {
	applications ApplicationStore
	schemes      SchemeDirectory
	profiles     ProfileDirectory
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(applications ApplicationStore, schemes SchemeDirectory, profiles ProfileDirectory, opts ...Option) *Service {
	s := &Service{applications: applications, schemes: schemes, profiles: profiles}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitRequest carries a citizen's application.
type SubmitRequest struct {
	SchemeID uuid.UUID         `json:"scheme_id"`
	Data     map[string]string `json:"application_data"`
}

// Submit creates a pending application for the calling citizen. Eligibility
// self-assessment is deliberately not consulted here: the check is a citizen
// aid, the decision authority is the reviewing admin.
func (s *Service) Submit(ctx context.Context, accountID uuid.UUID, req *SubmitRequest) (*appmodels.Application, error) {
	profile, err := s.profiles.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	sch, err := s.schemes.FindByID(ctx, req.SchemeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "scheme not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme")
	}
	if !sch.IsActive {
		return nil, dErrors.New(dErrors.CodeValidation, "scheme is not accepting applications")
	}
	if err := validateDataKeys(req.Data, sch.ApplicationFields); err != nil {
		return nil, err
	}

	app := &appmodels.Application{
		ID:               uuid.New(),
		CitizenProfileID: profile.ID,
		SchemeID:         sch.ID,
		Status:           appmodels.StatusPending,
		Data:             req.Data,
		AppliedAt:        time.Now(),
	}
	if app.Data == nil {
		app.Data = map[string]string{}
	}

	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "you have already applied for this scheme")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "application submitted",
			"application_id", app.ID,
			"scheme_id", sch.ID,
			"citizen_profile_id", profile.ID,
		)
	}
	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Inc()
	}
	return app, nil
}

// validateDataKeys rejects submitted keys outside the scheme's declared
// application fields. Values are free-form; missing fields are allowed.
func validateDataKeys(data map[string]string, fields []string) error {
	if len(data) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		allowed[f] = struct{}{}
	}
	for key := range data {
		if _, ok := allowed[key]; !ok {
			return dErrors.Newf(dErrors.CodeValidation, "unknown application field %q", key)
		}
	}
	return nil
}

// ListMine returns the caller's applications, newest first, joined with
// scheme name and category for display.
func (s *Service) ListMine(ctx context.Context, accountID uuid.UUID) ([]appmodels.ApplicationWithScheme, error) {
	profile, err := s.profiles.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	apps, err := s.applications.ListByCitizen(ctx, profile.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}

	results := make([]appmodels.ApplicationWithScheme, 0, len(apps))
	summaries := map[uuid.UUID]appmodels.SchemeSummary{}
	for _, app := range apps {
		summary, err := s.schemeSummary(ctx, summaries, app.SchemeID)
		if err != nil {
			return nil, err
		}
		results = append(results, appmodels.ApplicationWithScheme{Application: app, Scheme: summary})
	}
	return results, nil
}

// ListAll returns every application for the admin review queue, newest
// first, joined with scheme and citizen summaries.
func (s *Service) ListAll(ctx context.Context) ([]appmodels.ApplicationDetails, error) {
	apps, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}

	results := make([]appmodels.ApplicationDetails, 0, len(apps))
	schemeSummaries := map[uuid.UUID]appmodels.SchemeSummary{}
	citizenSummaries := map[uuid.UUID]appmodels.CitizenSummary{}
	for _, app := range apps {
		schemeSummary, err := s.schemeSummary(ctx, schemeSummaries, app.SchemeID)
		if err != nil {
			return nil, err
		}
		citizenSummary, err := s.citizenSummary(ctx, citizenSummaries, app.CitizenProfileID)
		if err != nil {
			return nil, err
		}
		results = append(results, appmodels.ApplicationDetails{
			Application: app,
			Scheme:      schemeSummary,
			Citizen:     citizenSummary,
		})
	}
	return results, nil
}

func (s *Service) schemeSummary(ctx context.Context, cache map[uuid.UUID]appmodels.SchemeSummary, id uuid.UUID) (appmodels.SchemeSummary, error) {
	if summary, ok := cache[id]; ok {
		return summary, nil
	}
	sch, err := s.schemes.FindByID(ctx, id)
	if err != nil {
		return appmodels.SchemeSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme for application")
	}
	summary := appmodels.SchemeSummary{Name: sch.Name, Category: sch.Category}
	cache[id] = summary
	return summary, nil
}

func (s *Service) citizenSummary(ctx context.Context, cache map[uuid.UUID]appmodels.CitizenSummary, id uuid.UUID) (appmodels.CitizenSummary, error) {
	if summary, ok := cache[id]; ok {
		return summary, nil
	}
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return appmodels.CitizenSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load citizen for application")
	}
	summary := appmodels.CitizenSummary{DisplayName: p.DisplayName, PhoneNumber: p.PhoneNumber}
	cache[id] = summary
	return summary, nil
}

// Approve moves a pending application to approved. Notes default to
// "Approved" when empty.
func (s *Service) Approve(ctx context.Context, appID uuid.UUID, notes string) (*appmodels.Application, error) {
	if notes == "" {
		notes = "Approved"
	}
	return s.review(ctx, appID, appmodels.StatusApproved, notes)
}

// Reject moves a pending application to rejected. Notes are required so the
// citizen always learns why.
func (s *Service) Reject(ctx context.Context, appID uuid.UUID, notes string) (*appmodels.Application, error) {
	if notes == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection notes are required")
	}
	return s.review(ctx, appID, appmodels.StatusRejected, notes)
}

func (s *Service) review(ctx context.Context, appID uuid.UUID, status appmodels.Status, notes string) (*appmodels.Application, error) {
	app, err := s.applications.UpdateStatusIfPending(ctx, appID, status, time.Now(), notes)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeInvalidState, "application has already been reviewed")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "application reviewed",
			"application_id", app.ID,
			"decision", status,
		)
	}
	if s.metrics != nil {
		s.metrics.ApplicationsReviewed.WithLabelValues(string(status)).Inc()
	}
	return app, nil
}
