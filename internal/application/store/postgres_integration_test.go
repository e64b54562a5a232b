//go:build integration

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/application/models"
	"schemeportal/pkg/sentinel"
	"schemeportal/pkg/testutil/containers"
)

type pgFixture struct {
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func newPGFixture(t *testing.T) *pgFixture {
	pg := containers.NewPostgresContainer(t)
	return &pgFixture{pg: pg, store: NewPostgres(pg.DB)}
}

// seedCitizenAndScheme inserts the rows the application foreign keys need.
func (f *pgFixture) seedCitizenAndScheme(t *testing.T, phone, schemeName string) (citizenProfileID, schemeID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	accountID := uuid.New()
	_, err := f.pg.DB.ExecContext(ctx, `
		INSERT INTO accounts (id, login_identity, phone_number, password_hash, role)
		VALUES ($1, $2, $3, 'x', 'citizen')
	`, accountID, phone+"@scheme.gov.in", phone)
	require.NoError(t, err)

	citizenProfileID = uuid.New()
	_, err = f.pg.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, account_id, role, display_name, phone_number)
		VALUES ($1, $2, 'citizen', 'Asha', $3)
	`, citizenProfileID, accountID, phone)
	require.NoError(t, err)

	schemeID = uuid.New()
	_, err = f.pg.DB.ExecContext(ctx, `
		INSERT INTO schemes (id, name, category, description, benefits)
		VALUES ($1, $2, 'Education', 'd', 'b')
	`, schemeID, schemeName)
	require.NoError(t, err)
	return citizenProfileID, schemeID
}

func newApplication(citizenProfileID, schemeID uuid.UUID) *models.Application {
	return &models.Application{
		ID:               uuid.New(),
		CitizenProfileID: citizenProfileID,
		SchemeID:         schemeID,
		Status:           models.StatusPending,
		Data:             map[string]string{"school_name": "Govt High School"},
		AppliedAt:        time.Now(),
	}
}

func TestPostgresStore_CreateAndFind(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	citizenID, schemeID := f.seedCitizenAndScheme(t, "1234567890", "Scholarship")

	app := newApplication(citizenID, schemeID)
	require.NoError(t, f.store.Create(ctx, app))

	got, err := f.store.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, app.Data, got.Data)
	assert.Nil(t, got.ReviewedAt)
	assert.Nil(t, got.AdminNotes)

	_, err = f.store.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_DuplicatePairConflicts(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	citizenID, schemeID := f.seedCitizenAndScheme(t, "1234567890", "Scholarship")

	require.NoError(t, f.store.Create(ctx, newApplication(citizenID, schemeID)))
	err := f.store.Create(ctx, newApplication(citizenID, schemeID))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

// TestPostgresStore_ConcurrentDuplicateSubmissions races two inserts for the
// same pair; the unique index must let exactly one through.
func TestPostgresStore_ConcurrentDuplicateSubmissions(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	citizenID, schemeID := f.seedCitizenAndScheme(t, "1234567890", "Scholarship")

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.store.Create(ctx, newApplication(citizenID, schemeID))
		}()
	}
	wg.Wait()

	var created, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, sentinel.ErrConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, racers-1, conflicted)
}

func TestPostgresStore_UpdateStatusIfPending(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	citizenID, schemeID := f.seedCitizenAndScheme(t, "1234567890", "Scholarship")

	app := newApplication(citizenID, schemeID)
	require.NoError(t, f.store.Create(ctx, app))

	reviewed, err := f.store.UpdateStatusIfPending(ctx, app.ID, models.StatusApproved, time.Now(), "Verified")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.AdminNotes)
	assert.Equal(t, "Verified", *reviewed.AdminNotes)
	require.NotNil(t, reviewed.ReviewedAt)

	_, err = f.store.UpdateStatusIfPending(ctx, app.ID, models.StatusRejected, time.Now(), "nope")
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	_, err = f.store.UpdateStatusIfPending(ctx, uuid.New(), models.StatusApproved, time.Now(), "")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

// TestPostgresStore_ConcurrentReviews races approve against reject; exactly
// one decision may land.
func TestPostgresStore_ConcurrentReviews(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	citizenID, schemeID := f.seedCitizenAndScheme(t, "1234567890", "Scholarship")

	app := newApplication(citizenID, schemeID)
	require.NoError(t, f.store.Create(ctx, app))

	var wg sync.WaitGroup
	results := make([]error, 2)
	decisions := []models.Status{models.StatusApproved, models.StatusRejected}
	for i, status := range decisions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.store.UpdateStatusIfPending(ctx, app.ID, status, time.Now(), "notes")
		}()
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, sentinel.ErrInvalidState):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestPostgresStore_ListOrdering(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	citizenID, schemeA := f.seedCitizenAndScheme(t, "1234567890", "Scholarship")

	schemeB := uuid.New()
	_, err := f.pg.DB.ExecContext(ctx, `
		INSERT INTO schemes (id, name, category, description, benefits)
		VALUES ($1, 'Housing Aid', 'Housing', 'd', 'b')
	`, schemeB)
	require.NoError(t, err)

	older := newApplication(citizenID, schemeA)
	older.AppliedAt = time.Now().Add(-time.Hour)
	newer := newApplication(citizenID, schemeB)
	require.NoError(t, f.store.Create(ctx, older))
	require.NoError(t, f.store.Create(ctx, newer))

	mine, err := f.store.ListByCitizen(ctx, citizenID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	all, err := f.store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
