//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/identity/models"
	accountstore "schemeportal/internal/identity/store/account"
	profilestore "schemeportal/internal/identity/store/profile"
	"schemeportal/internal/identity/token"
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/testutil/containers"
	"schemeportal/pkg/tx"
)

func newPGService(t *testing.T) (*Service, *containers.PostgresContainer) {
	t.Helper()
	pg := containers.NewPostgresContainer(t)
	tokens := token.NewService("test-signing-key", time.Hour)
	svc := New(
		accountstore.NewPostgres(pg.DB),
		profilestore.NewPostgres(pg.DB),
		tx.NewRunner(pg.DB),
		tokens,
		adminKey,
	)
	return svc, pg
}

func TestSignUp_Postgres_RoundTrip(t *testing.T) {
	svc, _ := newPGService(t)
	ctx := context.Background()

	result, err := svc.SignUp(ctx, citizenSignUp("1234567890"))
	require.NoError(t, err)

	signed, err := svc.SignIn(ctx, &models.SignInRequest{
		Role:        models.RoleCitizen,
		PhoneNumber: "1234567890",
		Password:    "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, signed)

	p, err := svc.GetProfile(ctx, result.Profile.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.DisplayName)
}

// TestSignUp_Postgres_NoOrphanOnProfileConflict forces the profile insert to
// fail after the account insert succeeded and verifies the transaction rolled
// both back.
func TestSignUp_Postgres_NoOrphanOnProfileConflict(t *testing.T) {
	svc, pg := newPGService(t)
	ctx := context.Background()

	// Pre-seed a profile row that will collide on (role, phone_number) with
	// the signup below, while the account's login_identity stays unique.
	_, err := pg.DB.ExecContext(ctx, `
		INSERT INTO accounts (id, login_identity, phone_number, password_hash, role)
		VALUES (gen_random_uuid(), 'seed@scheme.gov.in', '1234567890', 'x', 'citizen')
	`)
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, account_id, role, display_name, phone_number)
		SELECT gen_random_uuid(), id, 'citizen', 'Seed', '1234567890'
		FROM accounts WHERE login_identity = 'seed@scheme.gov.in'
	`)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, citizenSignUp("1234567890"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	var count int
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM accounts WHERE login_identity = '1234567890@scheme.gov.in'`).Scan(&count))
	assert.Zero(t, count, "failed signup must not leave an account behind")
}

func TestSignUp_Postgres_DuplicateIdentity(t *testing.T) {
	svc, _ := newPGService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, citizenSignUp("1234567890"))
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, citizenSignUp("1234567890"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}
