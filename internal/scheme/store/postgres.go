package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"schemeportal/internal/scheme/models"
	"schemeportal/pkg/sentinel"
)

// PostgresStore persists schemes. Criteria are stored as JSONB, the string
// lists as text[]; the lower(name) unique index arbitrates duplicate names.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, scheme *models.Scheme) error {
	criteria, err := json.Marshal(scheme.EligibilityCriteria)
	if err != nil {
		return fmt.Errorf("marshal eligibility criteria: %w", err)
	}

	query := `
		INSERT INTO schemes (
			id, name, category, description, benefits,
			required_documents, important_notes, application_fields,
			eligibility_criteria, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		scheme.ID,
		scheme.Name,
		scheme.Category,
		scheme.Description,
		scheme.Benefits,
		pq.Array(scheme.RequiredDocuments),
		scheme.ImportantNotes,
		pq.Array(scheme.ApplicationFields),
		criteria,
		scheme.IsActive,
		scheme.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert scheme: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]models.Scheme, error) {
	query := `
		SELECT id, name, category, description, benefits,
		       required_documents, important_notes, application_fields,
		       eligibility_criteria, is_active, created_at
		FROM schemes
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	var schemes []models.Scheme
	for rows.Next() {
		scheme, err := scanScheme(rows.Scan)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, *scheme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemes: %w", err)
	}
	return schemes, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Scheme, error) {
	query := `
		SELECT id, name, category, description, benefits,
		       required_documents, important_notes, application_fields,
		       eligibility_criteria, is_active, created_at
		FROM schemes
		WHERE id = $1
	`
	scheme, err := scanScheme(s.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return scheme, err
}

func scanScheme(scan func(dest ...any) error) (*models.Scheme, error) {
	var (
		scheme   models.Scheme
		criteria []byte
	)
	err := scan(
		&scheme.ID,
		&scheme.Name,
		&scheme.Category,
		&scheme.Description,
		&scheme.Benefits,
		pq.Array(&scheme.RequiredDocuments),
		&scheme.ImportantNotes,
		pq.Array(&scheme.ApplicationFields),
		&criteria,
		&scheme.IsActive,
		&scheme.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan scheme: %w", err)
	}
	if err := json.Unmarshal(criteria, &scheme.EligibilityCriteria); err != nil {
		return nil, fmt.Errorf("unmarshal eligibility criteria: %w", err)
	}
	return &scheme, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
