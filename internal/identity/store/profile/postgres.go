package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"schemeportal/internal/identity/models"
	"schemeportal/pkg/sentinel"
	txcontext "schemeportal/pkg/tx"
)

// PostgresStore persists profiles. Create participates in the signup
// transaction when one is present in the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, account_id, role, display_name, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		p.ID,
		p.AccountID,
		string(p.Role),
		p.DisplayName,
		p.PhoneNumber,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, account_id, role, display_name, phone_number, created_at
		FROM profiles
		WHERE account_id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, accountID))
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, account_id, role, display_name, phone_number, created_at
		FROM profiles
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Profile, error) {
	var (
		p    models.Profile
		role string
	)
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&role,
		&p.DisplayName,
		&p.PhoneNumber,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.Role = models.Role(role)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
