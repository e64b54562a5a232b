package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"schemeportal/internal/identity/lockout"
	"schemeportal/internal/identity/models"
	"schemeportal/internal/identity/token"
	"schemeportal/internal/platform/metrics"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/secrets"
	"schemeportal/pkg/sentinel"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByLoginIdentity(ctx context.Context, identity string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// TxRunner wraps account+profile creation so a profile failure rolls the
// account back instead of leaving it orphaned.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns signup, sign-in, and profile reads.
type Service struct {
	accounts       AccountStore
	profiles       ProfileStore
	txRunner       TxRunner
	tokens         *token.Service
	adminSignupKey string
	throttle       *lockout.Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
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

func WithLoginThrottle(throttle *lockout.Service) Option {
	return func(s *Service) {
		s.throttle = throttle
	}
}

// New constructs a Service. adminSignupKey gates admin registration and is
// injected here rather than read from ambient state.
func New(accounts AccountStore, profiles ProfileStore, txRunner TxRunner, tokens *token.Service, adminSignupKey string, opts ...Option) *Service {
	s := &Service{
		accounts:       accounts,
		profiles:       profiles,
		txRunner:       txRunner,
		tokens:         tokens,
		adminSignupKey: adminSignupKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUpResult carries the created profile and, for admin signups, a signed
// token so the new admin is logged in immediately.
type SignUpResult struct {
	Profile *models.Profile
	Token   string
}

func (s *Service) SignUp(ctx context.Context, req *models.SignUpRequest) (*SignUpResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Role == models.RoleAdmin {
		if subtle.ConstantTimeCompare([]byte(req.SecretKey), []byte(s.adminSignupKey)) != 1 {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid admin secret key")
		}
	}

	passwordHash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &models.Account{
		ID:            uuid.New(),
		LoginIdentity: models.LoginIdentity(req.Role, req.PhoneNumber),
		PhoneNumber:   req.PhoneNumber,
		PasswordHash:  passwordHash,
		Role:          req.Role,
		CreatedAt:     now,
	}
	profile := &models.Profile{
		ID:          uuid.New(),
		AccountID:   account.ID,
		Role:        req.Role,
		DisplayName: req.DisplayName,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   now,
	}

	err = s.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		return s.profiles.Create(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if req.Role == models.RoleAdmin {
				return nil, dErrors.New(dErrors.CodeConflict, "this admin phone number is already registered")
			}
			return nil, dErrors.New(dErrors.CodeConflict, "this phone number is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account created", "role", req.Role, "account_id", account.ID)
	}
	if s.metrics != nil {
		s.metrics.Signups.WithLabelValues(string(req.Role)).Inc()
	}

	result := &SignUpResult{Profile: profile}
	if req.Role == models.RoleAdmin {
		signed, err := s.tokens.Generate(account.ID, account.Role)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
		}
		result.Token = signed
	}
	return result, nil
}

// SignIn verifies credentials and issues a bearer token. The error is the
// same whether the identity is unknown or the password mismatched.
func (s *Service) SignIn(ctx context.Context, req *models.SignInRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	identity := models.LoginIdentity(req.Role, req.PhoneNumber)
	if err := s.throttle.Check(ctx, identity); err != nil {
		return "", err
	}

	account, err := s.accounts.FindByLoginIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", s.failSignIn(ctx, identity)
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	if account.Role != req.Role {
		return "", s.failSignIn(ctx, identity)
	}

	if err := secrets.Verify(req.Password, account.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return "", s.failSignIn(ctx, identity)
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credentials")
	}

	s.throttle.Clear(ctx, identity)
	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}

	signed, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return signed, nil
}

func (s *Service) failSignIn(ctx context.Context, identity string) error {
	s.throttle.RecordFailure(ctx, identity)
	if s.metrics != nil {
		s.metrics.LoginFailures.Inc()
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// GetProfile returns the caller's own profile.
func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	p, err := s.profiles.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}
