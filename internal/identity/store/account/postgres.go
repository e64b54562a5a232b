package account

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

// PostgresStore persists accounts. The unique index on login_identity is the
// single arbiter of concurrent signups for the same identity.
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

func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, login_identity, phone_number, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		account.ID,
		account.LoginIdentity,
		account.PhoneNumber,
		account.PasswordHash,
		string(account.Role),
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByLoginIdentity(ctx context.Context, identity string) (*models.Account, error) {
	query := `
		SELECT id, login_identity, phone_number, password_hash, role, created_at
		FROM accounts
		WHERE login_identity = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, identity))
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, login_identity, phone_number, password_hash, role, created_at
		FROM accounts
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		account models.Account
		role    string
	)
	err := row.Scan(
		&account.ID,
		&account.LoginIdentity,
		&account.PhoneNumber,
		&account.PasswordHash,
		&role,
		&account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.Role = models.Role(role)
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
