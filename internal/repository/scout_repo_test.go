package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestScoutRepository_ScoutedEngineerIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewScoutRepository(db)
	company := testutil.TestCompany(t, db)
	job := testutil.TestJob(t, db, company.ID)
	e1 := testutil.TestEngineer(t, db)
	e2 := testutil.TestEngineer(t, db)
	e3 := testutil.TestEngineer(t, db)

	require.NoError(t, repo.CreateBatch([]*model.ScoutEmail{
		{CompanyID: company.ID, EngineerID: e1.ID, JobID: &job.ID, Subject: "s", Content: "c"},
		{CompanyID: company.ID, EngineerID: e1.ID, JobID: &job.ID, Subject: "s", Content: "c"},
		{CompanyID: company.ID, EngineerID: e2.ID, JobID: &job.ID, Subject: "s", Content: "c"},
		{CompanyID: company.ID, EngineerID: e3.ID, Subject: "s", Content: "c"},
	}))

	ids, err := repo.ScoutedEngineerIDs(company.ID, &job.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, e1.ID)
	assert.Contains(t, ids, e2.ID)

	ids, err = repo.ScoutedEngineerIDs(company.ID, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Contains(t, ids, e3.ID)
}

func TestScoutRepository_ReadAndReply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewScoutRepository(db)
	company := testutil.TestCompany(t, db)
	engineer := testutil.TestEngineer(t, db)
	scout := &model.ScoutEmail{CompanyID: company.ID, EngineerID: engineer.ID, Subject: "Hi", Content: "Join us"}
	require.NoError(t, repo.Create(scout))

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkReplied(scout.ID, now))

	got, err := repo.GetByID(scout.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	assert.True(t, got.IsReplied)
	require.NotNil(t, got.ReadAt)
	require.NotNil(t, got.Company)

	list, total, err := repo.ListByEngineer(engineer.ID, Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, scout.ID, list[0].ID)
}
