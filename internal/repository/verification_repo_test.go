package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestVerificationRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewVerificationRepository(db)
	user := testutil.TestUser(t, db, testutil.Unverified())
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	valid := &model.EmailVerification{UserID: user.ID, Email: user.Email, Code: "123456", ExpiresAt: now.Add(10 * time.Minute)}
	expired := &model.EmailVerification{UserID: user.ID, Email: user.Email, Code: "654321", ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(valid))
	require.NoError(t, repo.Create(expired))

	_, err := repo.FindValid(user.Email, "654321", now)
	assert.Error(t, err)

	found, err := repo.FindValid(user.Email, "123456", now)
	require.NoError(t, err)
	assert.Equal(t, valid.ID, found.ID)

	ok, err := repo.MarkUsed(found.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkUsed(found.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	stale, err := repo.CountStale(now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stale)

	purged, err := repo.PurgeStale(now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}
