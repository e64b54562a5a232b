package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "schemeportal/internal/application/models"
	"schemeportal/internal/application/store"
	identity "schemeportal/internal/identity/models"
	profilestore "schemeportal/internal/identity/store/profile"
	scheme "schemeportal/internal/scheme/models"
	schemestore "schemeportal/internal/scheme/store"
	dErrors "schemeportal/pkg/domain-errors"
)

type fixture struct {
	svc      *Service
	profiles *profilestore.MemoryStore
	schemes  *schemestore.MemoryStore
}

func newFixture() *fixture {
	profiles := profilestore.NewMemoryStore()
	schemes := schemestore.NewMemoryStore()
	return &fixture{
		svc:      New(store.NewMemoryStore(), schemes, profiles),
		profiles: profiles,
		schemes:  schemes,
	}
}

func (f *fixture) addCitizen(t *testing.T, name, phone string) *identity.Profile {
	t.Helper()
	p := &identity.Profile{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		Role:        identity.RoleCitizen,
		DisplayName: name,
		PhoneNumber: phone,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.profiles.Create(context.Background(), p))
	return p
}

func (f *fixture) addScheme(t *testing.T, name string, fields []string, active bool) *scheme.Scheme {
	t.Helper()
	s := &scheme.Scheme{
		ID:                  uuid.New(),
		Name:                name,
		Category:            "Education",
		Description:         "d",
		Benefits:            "b",
		RequiredDocuments:   []string{},
		ApplicationFields:   fields,
		EligibilityCriteria: []scheme.Criterion{},
		IsActive:            active,
		CreatedAt:           time.Now(),
	}
	require.NoError(t, f.schemes.Create(context.Background(), s))
	return s
}

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", []string{"school_name"}, true)

	app, err := f.svc.Submit(ctx, citizen.AccountID, &SubmitRequest{
		SchemeID: sch.ID,
		Data:     map[string]string{"school_name": "Govt High School"},
	})
	require.NoError(t, err)
	assert.Equal(t, appmodels.StatusPending, app.Status)
	assert.Equal(t, citizen.ID, app.CitizenProfileID)
	assert.Nil(t, app.ReviewedAt)
	assert.Nil(t, app.AdminNotes)
}

func TestSubmit_NilDataBecomesEmptyMap(t *testing.T) {
	f := newFixture()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", nil, true)

	app, err := f.svc.Submit(context.Background(), citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)
	assert.NotNil(t, app.Data)
	assert.Empty(t, app.Data)
}

func TestSubmit_UnknownField(t *testing.T) {
	f := newFixture()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", []string{"school_name"}, true)

	_, err := f.svc.Submit(context.Background(), citizen.AccountID, &SubmitRequest{
		SchemeID: sch.ID,
		Data:     map[string]string{"bank_account": "123"},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, `unknown application field "bank_account"`, dErrors.MessageOf(err))
}

func TestSubmit_MissingFieldsAllowed(t *testing.T) {
	f := newFixture()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", []string{"school_name", "grade"}, true)

	_, err := f.svc.Submit(context.Background(), citizen.AccountID, &SubmitRequest{
		SchemeID: sch.ID,
		Data:     map[string]string{"grade": "10"},
	})
	require.NoError(t, err)
}

func TestSubmit_InactiveScheme(t *testing.T) {
	f := newFixture()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Closed", nil, false)

	_, err := f.svc.Submit(context.Background(), citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "scheme is not accepting applications", dErrors.MessageOf(err))
}

func TestSubmit_UnknownScheme(t *testing.T) {
	f := newFixture()
	citizen := f.addCitizen(t, "Asha", "1234567890")

	_, err := f.svc.Submit(context.Background(), citizen.AccountID, &SubmitRequest{SchemeID: uuid.New()})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSubmit_DuplicateApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", nil, true)

	_, err := f.svc.Submit(ctx, citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "you have already applied for this scheme", dErrors.MessageOf(err))
}

func TestListMine_JoinsSchemeAndIsolatesCitizens(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asha := f.addCitizen(t, "Asha", "1234567890")
	ravi := f.addCitizen(t, "Ravi", "9876543210")
	sch := f.addScheme(t, "Scholarship", nil, true)

	_, err := f.svc.Submit(ctx, asha.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, asha.AccountID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Scholarship", mine[0].Scheme.Name)
	assert.Equal(t, "Education", mine[0].Scheme.Category)

	theirs, err := f.svc.ListMine(ctx, ravi.AccountID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestListAll_JoinsCitizenAndScheme(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asha := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", nil, true)

	_, err := f.svc.Submit(ctx, asha.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Scholarship", all[0].Scheme.Name)
	assert.Equal(t, "Asha", all[0].Citizen.DisplayName)
	assert.Equal(t, "1234567890", all[0].Citizen.PhoneNumber)
}

func TestApprove_DefaultsNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", nil, true)

	app, err := f.svc.Submit(ctx, citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)

	reviewed, err := f.svc.Approve(ctx, app.ID, "")
	require.NoError(t, err)
	assert.Equal(t, appmodels.StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.AdminNotes)
	assert.Equal(t, "Approved", *reviewed.AdminNotes)
	assert.NotNil(t, reviewed.ReviewedAt)
}

func TestReject_RequiresNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", nil, true)

	app, err := f.svc.Submit(ctx, citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, app.ID, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "rejection notes are required", dErrors.MessageOf(err))

	reviewed, err := f.svc.Reject(ctx, app.ID, "Missing income certificate")
	require.NoError(t, err)
	assert.Equal(t, appmodels.StatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.AdminNotes)
	assert.Equal(t, "Missing income certificate", *reviewed.AdminNotes)
}

func TestReview_OnlyOncePerApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen(t, "Asha", "1234567890")
	sch := f.addScheme(t, "Scholarship", nil, true)

	app, err := f.svc.Submit(ctx, citizen.AccountID, &SubmitRequest{SchemeID: sch.ID})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, app.ID, "Verified")
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, app.ID, "Changed my mind")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.Equal(t, "application has already been reviewed", dErrors.MessageOf(err))

	_, err = f.svc.Approve(ctx, app.ID, "Again")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestReview_UnknownApplication(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Approve(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Equal(t, "application not found", dErrors.MessageOf(err))
}
