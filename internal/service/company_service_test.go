package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/entitlement"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestCompanyService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCompanyService(env.store, env.cfg, env.clock)
	company := testutil.TestCompany(t, env.db)

	name := "  Renamed Inc  "
	size := 42
	updated, err := svc.UpdateProfile(company.UserID, &dto.UpdateCompanyRequest{Name: &name, EmployeeCount: &size})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Inc", updated.Name)
	assert.Equal(t, 42, updated.EmployeeCount)

	_, err = svc.UpdateProfile(99999, &dto.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyService_GetSubscription(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCompanyService(env.store, env.cfg, env.clock)

	t.Run("trial warning", func(t *testing.T) {
		company := testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 2))
		status, err := svc.GetSubscription(company.UserID)
		require.NoError(t, err)
		assert.Equal(t, entitlement.TrialActive, status.Trial.Status)
		assert.True(t, status.Trial.Warning)
		assert.True(t, status.CanAccessPaidFeatures)
		assert.Contains(t, status.WarningMessage, "2")
	})

	t.Run("expired trial", func(t *testing.T) {
		company := testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 1))
		env.clock.Set(testNow.Add(48 * time.Hour))
		defer env.clock.Set(testNow)

		status, err := svc.GetSubscription(company.UserID)
		require.NoError(t, err)
		assert.Equal(t, entitlement.TrialExpired, status.Trial.Status)
		assert.False(t, status.CanAccessPaidFeatures)
		assert.NotEmpty(t, status.WarningMessage)
	})

	t.Run("paid plan has no warning", func(t *testing.T) {
		company := testutil.TestCompany(t, env.db,
			testutil.WithActiveTrial(testNow, 1),
			testutil.WithSubscription(model.PlanPremium, testNow.AddDate(0, 1, 0)),
			testutil.WithScoutAccess(testNow.AddDate(0, 0, 30)))
		status, err := svc.GetSubscription(company.UserID)
		require.NoError(t, err)
		assert.True(t, status.HasActiveSubscription)
		assert.True(t, status.CanSendScout)
		assert.Empty(t, status.WarningMessage)
	})
}

func TestCompanyService_StartTrial(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCompanyService(env.store, env.cfg, env.clock)
	company := testutil.TestCompany(t, env.db)

	status, err := svc.StartTrial(company.UserID)
	require.NoError(t, err)
	assert.True(t, status.Trial.IsActive)
	assert.Equal(t, 14, status.Trial.DaysRemaining)

	_, err = svc.StartTrial(company.UserID)
	assert.ErrorIs(t, err, ErrTrialAlreadyUsed)
}

func TestCompanyService_CancelSubscription(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCompanyService(env.store, env.cfg, env.clock)
	company := testutil.TestCompany(t, env.db,
		testutil.WithSubscription(model.PlanBasic, testNow.AddDate(0, 1, 0)),
		testutil.WithScoutAccess(testNow.AddDate(0, 0, 30)))

	status, err := svc.CancelSubscription(company.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, status.Plan)
	assert.Nil(t, status.ExpiresAt)
	assert.False(t, status.HasActiveSubscription)
	assert.True(t, status.HasScoutAccess)
}
