package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestCompanyRepository_StartTrialIfUnused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCompanyRepository(db)
	company := testutil.TestCompany(t, db)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	started, err := repo.StartTrialIfUnused(company.ID, now, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.True(t, started)

	started, err = repo.StartTrialIfUnused(company.ID, now, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.False(t, started)

	got, err := repo.GetByID(company.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTrialActive)
	assert.True(t, got.HasUsedTrial)
	assert.True(t, got.TrialEndDate.Equal(now.AddDate(0, 0, 30)))
}

func TestCompanyRepository_Expiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCompanyRepository(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	expired := testutil.TestCompany(t, db, testutil.WithActiveTrial(now, -1), testutil.WithScoutAccess(now.Add(-time.Hour)))
	active := testutil.TestCompany(t, db, testutil.WithActiveTrial(now, 5), testutil.WithScoutAccess(now.Add(time.Hour)))

	count, err := repo.CountExpiredTrials(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := repo.DeactivateExpiredTrials(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.RevokeExpiredScoutAccess(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := repo.GetByID(expired.ID)
	assert.False(t, got.IsTrialActive)
	assert.True(t, got.HasUsedTrial)
	assert.False(t, got.HasScoutAccess)

	got, _ = repo.GetByID(active.ID)
	assert.True(t, got.IsTrialActive)
	assert.True(t, got.HasScoutAccess)
}

func TestCompanyRepository_ListTrialsEndingBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCompanyRepository(db)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	ending := testutil.TestCompany(t, db, testutil.WithActiveTrial(now, 3))
	testutil.TestCompany(t, db, testutil.WithActiveTrial(now, 10))

	companies, err := repo.ListTrialsEndingBetween(now.AddDate(0, 0, 2), now.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, ending.ID, companies[0].ID)
	require.NotNil(t, companies[0].User)
	assert.NotEmpty(t, companies[0].User.Email)
}
