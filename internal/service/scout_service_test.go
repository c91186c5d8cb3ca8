package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/pubsub"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

type scoutFixture struct {
	env     *testEnv
	svc     *ScoutService
	company *model.Company
	job     *model.Job
	strong  *model.Engineer
	medium  *model.Engineer
	weak    *model.Engineer
	closed  *model.Engineer
}

func setupScoutService(t *testing.T) *scoutFixture {
	t.Helper()
	env := newTestEnv(t)
	svc := NewScoutService(env.store, env.quota(), env.cfg, env.clock, env.mailer, env.realtime, nil, zaptest.NewLogger(t))

	company := testutil.TestCompany(t, env.db,
		testutil.WithActiveTrial(testNow, 10),
		testutil.WithScoutAccess(testNow.AddDate(0, 0, 30)))
	job := testutil.TestJob(t, env.db, company.ID,
		testutil.WithJobSkills("Go", "PostgreSQL"),
		testutil.WithSalaryMin(8000000))

	return &scoutFixture{
		env:     env,
		svc:     svc,
		company: company,
		job:     job,
		// 50 + 20 + 15 + 15 = 100
		strong: testutil.TestEngineer(t, env.db,
			testutil.WithSkills("go", "postgresql"),
			testutil.WithExperience(6, "Tokyo, Japan"),
			testutil.WithDesiredSalary(7000000)),
		// 25 + 15 + 0 + 15 = 55
		medium: testutil.TestEngineer(t, env.db,
			testutil.WithSkills("Go"),
			testutil.WithExperience(3, "Tokyo")),
		// 0 + 0 + 0 + 0
		weak: testutil.TestEngineer(t, env.db, testutil.WithExperience(0, "Osaka")),
		closed: testutil.TestEngineer(t, env.db,
			testutil.WithSkills("Go", "PostgreSQL"),
			testutil.WithExperience(10, "Tokyo"),
			testutil.ClosedToScout()),
	}
}

func TestScoutService_Candidates(t *testing.T) {
	f := setupScoutService(t)

	candidates, err := f.svc.Candidates(f.company.UserID, f.job.ID, 50)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, f.strong.ID, candidates[0].Engineer.ID)
	assert.Equal(t, 100, candidates[0].Score)
	assert.Equal(t, f.medium.ID, candidates[1].Engineer.ID)
	assert.Equal(t, 55, candidates[1].Score)

	candidates, err = f.svc.Candidates(f.company.UserID, f.job.ID, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1, "default threshold applies")
}

func TestScoutService_CandidatesRequireScoutAccess(t *testing.T) {
	f := setupScoutService(t)
	other := testutil.TestCompany(t, f.env.db, testutil.WithActiveTrial(testNow, 10))
	job := testutil.TestJob(t, f.env.db, other.ID)

	_, err := f.svc.Candidates(other.UserID, job.ID, 0)
	assert.ErrorIs(t, err, ErrScoutAccessRequired)

	_, err = f.svc.Candidates(other.UserID, f.job.ID, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestScoutService_Send(t *testing.T) {
	f := setupScoutService(t)
	ctx := context.Background()

	scout, err := f.svc.Send(ctx, f.company.UserID, &dto.SendScoutRequest{
		EngineerID: f.strong.ID,
		JobID:      &f.job.ID,
		Subject:    "Join us",
		Content:    "We like your Go work",
	})
	require.NoError(t, err)
	require.NotNil(t, scout.MatchScore)
	assert.Equal(t, 100, *scout.MatchScore)

	mails := f.env.mailer.byKind(email.KindScout)
	require.Len(t, mails, 1)
	assert.Equal(t, f.strong.User.Email, mails[0].To)
	require.Len(t, f.env.realtime.events, 1)
	assert.Equal(t, pubsub.EventNewScout, f.env.realtime.events[0].Type)
	assert.Equal(t, f.strong.UserID, f.env.realtime.events[0].UserID)

	_, err = f.svc.Send(ctx, f.company.UserID, &dto.SendScoutRequest{
		EngineerID: f.strong.ID, JobID: &f.job.ID, Subject: "again", Content: "again",
	})
	assert.ErrorIs(t, err, ErrAlreadyScouted)

	_, err = f.svc.Send(ctx, f.company.UserID, &dto.SendScoutRequest{
		EngineerID: f.closed.ID, Subject: "s", Content: "c",
	})
	assert.ErrorIs(t, err, ErrEngineerClosedToScout)

	// 不关联职位时不计算匹配分
	general, err := f.svc.Send(ctx, f.company.UserID, &dto.SendScoutRequest{
		EngineerID: f.weak.ID, Subject: "s", Content: "c",
	})
	require.NoError(t, err)
	assert.Nil(t, general.MatchScore)
}

func TestScoutService_BulkSend(t *testing.T) {
	f := setupScoutService(t)
	ctx := context.Background()

	resp, err := f.svc.BulkSend(ctx, f.company.UserID, f.job.ID, &dto.BulkScoutRequest{
		Subject:  "Opportunity",
		Content:  "Let's talk",
		MinScore: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Sent)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, f.strong.ID, resp.Items[0].EngineerID)
	assert.Len(t, f.env.mailer.byKind(email.KindScout), 2)

	// 已 scout 过的工程师被排除
	_, err = f.svc.BulkSend(ctx, f.company.UserID, f.job.ID, &dto.BulkScoutRequest{
		Subject: "Again", Content: "Again", MinScore: 50,
	})
	assert.ErrorIs(t, err, ErrNoCandidates)

	sent, total, err := f.svc.ListSent(f.company.UserID, repository.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, sent, 2)
}

func TestScoutService_BulkSendTruncatedByDailyLimit(t *testing.T) {
	f := setupScoutService(t)
	f.env.cfg.Scout.DailyLimit = 1

	resp, err := f.svc.BulkSend(context.Background(), f.company.UserID, f.job.ID, &dto.BulkScoutRequest{
		Subject: "s", Content: "c", MinScore: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Sent)
	assert.Equal(t, f.strong.ID, resp.Items[0].EngineerID)

	_, err = f.svc.BulkSend(context.Background(), f.company.UserID, f.job.ID, &dto.BulkScoutRequest{
		Subject: "s", Content: "c", MinScore: 50,
	})
	assert.ErrorIs(t, err, ErrScoutLimitExceeded)
}

func TestScoutService_ReadAndReply(t *testing.T) {
	f := setupScoutService(t)
	ctx := context.Background()

	scout, err := f.svc.Send(ctx, f.company.UserID, &dto.SendScoutRequest{
		EngineerID: f.strong.ID, JobID: &f.job.ID, Subject: "Hi", Content: "Hello",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.MarkRead(f.medium.UserID, scout.ID), ErrForbidden)
	require.NoError(t, f.svc.MarkRead(f.strong.UserID, scout.ID))
	require.NoError(t, f.svc.MarkRead(f.strong.UserID, scout.ID))

	msg, err := f.svc.Reply(ctx, f.strong.UserID, scout.ID, "Interested!")
	require.NoError(t, err)
	assert.Equal(t, f.company.UserID, msg.ReceiverID)
	require.NotNil(t, msg.ScoutEmailID)
	assert.Equal(t, scout.ID, *msg.ScoutEmailID)

	received, _, err := f.svc.ListReceived(f.strong.UserID, repository.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.True(t, received[0].IsRead)
	assert.True(t, received[0].IsReplied)

	_, err = f.svc.Reply(ctx, f.medium.UserID, scout.ID, "not mine")
	assert.ErrorIs(t, err, ErrForbidden)
}
