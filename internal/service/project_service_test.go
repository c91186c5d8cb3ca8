package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func TestProjectService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store, env.quota(), env.clock)

	company := testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 10))
	engineer := testutil.TestEngineer(t, env.db)

	project, err := svc.Create(company.UserID, &dto.CreateProjectRequest{
		Title:          "Payment Gateway Migration",
		Description:    "move to new provider",
		BudgetMin:      intPtr(100),
		BudgetMax:      intPtr(200),
		DurationMonths: 3,
		Skills:         []string{"Go", "GO", "gRPC"},
	})
	require.NoError(t, err)
	assert.Equal(t, "payment-gateway-migration", project.Slug)
	assert.Equal(t, []string{"Go", "gRPC"}, []string(project.Skills))

	_, err = svc.Create(company.UserID, &dto.CreateProjectRequest{Title: "payment gateway migration"})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	found, total, err := svc.Search(&dto.ProjectListQuery{Keyword: "gateway"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)

	app, err := svc.Apply(engineer.UserID, project.ID, &dto.ApplyProjectRequest{Proposal: "I can do it"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, app.ProjectID)

	_, err = svc.Apply(engineer.UserID, project.ID, &dto.ApplyProjectRequest{Proposal: "again"})
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	apps, total, err := svc.ListApplications(company.UserID, project.ID, repository.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, apps, 1)

	other := testutil.TestCompany(t, env.db)
	assert.ErrorIs(t, svc.Close(other.UserID, project.ID), ErrForbidden)
	require.NoError(t, svc.Close(company.UserID, project.ID))

	late := testutil.TestEngineer(t, env.db)
	_, err = svc.Apply(late.UserID, project.ID, &dto.ApplyProjectRequest{Proposal: "late"})
	assert.ErrorIs(t, err, ErrProjectClosed)
}

func TestProjectService_DailyLimit(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.store, env.quota(), env.clock)
	company := testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 10))

	for i := 0; i < env.cfg.Posting.DailyProjectLimit; i++ {
		_, err := svc.Create(company.UserID, &dto.CreateProjectRequest{Title: "Project " + string(rune('A'+i))})
		require.NoError(t, err)
	}
	_, err := svc.Create(company.UserID, &dto.CreateProjectRequest{Title: "One too many"})
	assert.ErrorIs(t, err, ErrDailyLimitExceeded)

	free := testutil.TestCompany(t, env.db)
	_, err = svc.Create(free.UserID, &dto.CreateProjectRequest{Title: "Nope"})
	assert.ErrorIs(t, err, ErrSubscriptionRequired)
}
