package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"schemeportal/internal/application/models"
	"schemeportal/pkg/sentinel"
)

// PostgresStore persists applications. The (citizen_profile_id, scheme_id)
// unique index decides concurrent duplicate submissions; review decisions
// use a conditional update so two concurrent reviews cannot both win.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const applicationColumns = `id, citizen_profile_id, scheme_id, status, application_data, applied_at, reviewed_at, admin_notes`

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	data, err := json.Marshal(app.Data)
	if err != nil {
		return fmt.Errorf("marshal application data: %w", err)
	}

	query := `
		INSERT INTO applications (id, citizen_profile_id, scheme_id, status, application_data, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		app.ID,
		app.CitizenProfileID,
		app.SchemeID,
		string(app.Status),
		data,
		app.AppliedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCitizen(ctx context.Context, citizenProfileID uuid.UUID) ([]models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE citizen_profile_id = $1
		ORDER BY applied_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, citizenProfileID)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY applied_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = $1
	`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return app, err
}

// UpdateStatusIfPending atomically applies a review decision. The WHERE
// clause on status makes the pending check and the update one statement, so
// a concurrent reviewer loses with ErrInvalidState instead of overwriting.
func (s *PostgresStore) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status models.Status, reviewedAt time.Time, notes string) (*models.Application, error) {
	query := `
		UPDATE applications
		SET status = $2, reviewed_at = $3, admin_notes = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + applicationColumns + `
	`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, id, string(status), reviewedAt, notes).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing application from an already-reviewed one.
		var existing string
		checkErr := s.db.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = $1`, id).Scan(&existing)
		if errors.Is(checkErr, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		if checkErr != nil {
			return nil, fmt.Errorf("check application status: %w", checkErr)
		}
		return nil, sentinel.ErrInvalidState
	}
	return app, err
}

func scanApplications(rows *sql.Rows) ([]models.Application, error) {
	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func scanApplication(scan func(dest ...any) error) (*models.Application, error) {
	var (
		app    models.Application
		status string
		data   []byte
	)
	err := scan(
		&app.ID,
		&app.CitizenProfileID,
		&app.SchemeID,
		&status,
		&data,
		&app.AppliedAt,
		&app.ReviewedAt,
		&app.AdminNotes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	app.Status = models.Status(status)
	if err := json.Unmarshal(data, &app.Data); err != nil {
		return nil, fmt.Errorf("unmarshal application data: %w", err)
	}
	return &app, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
