package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "schemeportal/pkg/domain-errors"
)

func TestNilServiceIsNoop(t *testing.T) {
	var s *Service
	ctx := context.Background()

	assert.NoError(t, s.Check(ctx, "someone"))
	s.RecordFailure(ctx, "someone")
	s.Clear(ctx, "someone")
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestLockoutAfterMaxFailures(t *testing.T) {
	svc, err := New(NewMemoryStore(), WithConfig(Config{MaxFailures: 3, Window: time.Minute}))
	require.NoError(t, err)

	ctx := context.Background()
	const identity = "1234567890@scheme.gov.in"

	for range 2 {
		svc.RecordFailure(ctx, identity)
		assert.NoError(t, svc.Check(ctx, identity))
	}

	svc.RecordFailure(ctx, identity)
	err = svc.Check(ctx, identity)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// Another identity is unaffected.
	assert.NoError(t, svc.Check(ctx, "other@scheme.gov.in"))
}

func TestClearResetsCount(t *testing.T) {
	svc, err := New(NewMemoryStore(), WithConfig(Config{MaxFailures: 1, Window: time.Minute}))
	require.NoError(t, err)

	ctx := context.Background()
	const identity = "1234567890@scheme.gov.in"

	svc.RecordFailure(ctx, identity)
	require.Error(t, svc.Check(ctx, identity))

	svc.Clear(ctx, identity)
	assert.NoError(t, svc.Check(ctx, identity))
}

func TestWindowExpiryResetsCount(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	svc, err := New(store, WithConfig(Config{MaxFailures: 1, Window: time.Minute}))
	require.NoError(t, err)

	ctx := context.Background()
	const identity = "1234567890@scheme.gov.in"

	svc.RecordFailure(ctx, identity)
	require.Error(t, svc.Check(ctx, identity))

	current = current.Add(2 * time.Minute)
	assert.NoError(t, svc.Check(ctx, identity))
}
