package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"schemeportal/internal/platform/metrics"
	"schemeportal/internal/scheme/eligibility"
	"schemeportal/internal/scheme/models"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/sentinel"
)

type SchemeStore interface {
	Create(ctx context.Context, scheme *models.Scheme) error
	ListActive(ctx context.Context) ([]models.Scheme, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Scheme, error)
}

// Service owns the scheme catalog and the eligibility check.
type Service struct {
	schemes SchemeStore
	logger  *slog.Logger
	metrics *metrics.Metrics
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

func New(schemes SchemeStore, opts ...Option) *Service {
	s := &Service{schemes: schemes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a scheme to the catalog. Role enforcement happens at the
// transport layer; the store's unique index arbitrates duplicate names.
func (s *Service) Create(ctx context.Context, req *models.CreateSchemeRequest) (*models.Scheme, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	scheme := &models.Scheme{
		ID:                  uuid.New(),
		Name:                req.Name,
		Category:            req.Category,
		Description:         req.Description,
		Benefits:            req.Benefits,
		RequiredDocuments:   req.RequiredDocuments,
		ImportantNotes:      req.ImportantNotes,
		ApplicationFields:   req.ApplicationFields,
		EligibilityCriteria: req.EligibilityCriteria,
		IsActive:            true,
		CreatedAt:           time.Now(),
	}
	if scheme.RequiredDocuments == nil {
		scheme.RequiredDocuments = []string{}
	}
	if scheme.ApplicationFields == nil {
		scheme.ApplicationFields = []string{}
	}
	if scheme.EligibilityCriteria == nil {
		scheme.EligibilityCriteria = []models.Criterion{}
	}

	if err := s.schemes.Create(ctx, scheme); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a scheme with this name already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create scheme")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "scheme created", "scheme_id", scheme.ID, "name", scheme.Name)
	}
	if s.metrics != nil {
		s.metrics.SchemesCreated.Inc()
	}
	return scheme, nil
}

// ListActive returns all active schemes, newest first.
func (s *Service) ListActive(ctx context.Context) ([]models.Scheme, error) {
	schemes, err := s.schemes.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schemes")
	}
	if schemes == nil {
		schemes = []models.Scheme{}
	}
	return schemes, nil
}

// Get returns one scheme by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	scheme, err := s.schemes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "scheme not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheme")
	}
	return scheme, nil
}

// CheckEligibility evaluates a citizen's answers against a scheme's
// criteria. The verdict is advisory and never gates application submission.
func (s *Service) CheckEligibility(ctx context.Context, schemeID uuid.UUID, answers map[int]bool) (bool, error) {
	scheme, err := s.Get(ctx, schemeID)
	if err != nil {
		return false, err
	}
	return eligibility.Evaluate(scheme.EligibilityCriteria, answers)
}
