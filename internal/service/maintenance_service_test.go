package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/pkg/cache"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

type maintenanceFixture struct {
	env          *testEnv
	svc          *MaintenanceService
	memory       *cache.Memory
	expiredTrial *model.Company
	endingSoon   *model.Company
	expiredScout *model.Company
}

func setupMaintenance(t *testing.T) *maintenanceFixture {
	t.Helper()
	env := newTestEnv(t)
	memory := cache.NewMemory(env.clock)

	f := &maintenanceFixture{
		env:    env,
		memory: memory,
		svc:    NewMaintenanceService(env.store, env.cfg, env.clock, env.mailer, memory, zaptest.NewLogger(t)),
		// 试用昨天结束但标记仍为激活
		expiredTrial: testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, -1)),
		// 剩余 3 天，正好落在提醒窗口
		endingSoon:   testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 3)),
		expiredScout: testutil.TestCompany(t, env.db, testutil.WithScoutAccess(testNow.Add(-time.Hour))),
	}
	testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 10))
	testutil.TestCompany(t, env.db, testutil.WithActiveTrial(testNow, 2))
	testutil.TestCompany(t, env.db, testutil.WithScoutAccess(testNow.AddDate(0, 0, 5)))

	user := testutil.TestUser(t, env.db)
	used := testNow.Add(-time.Hour)
	require.NoError(t, env.db.Create([]*model.EmailVerification{
		{UserID: user.ID, Email: user.Email, Code: "111111", ExpiresAt: testNow.Add(-time.Minute)},
		{UserID: user.ID, Email: user.Email, Code: "222222", ExpiresAt: testNow.Add(time.Hour), UsedAt: &used},
		{UserID: user.ID, Email: user.Email, Code: "333333", ExpiresAt: testNow.Add(time.Hour)},
	}).Error)

	ctx := context.Background()
	require.NoError(t, memory.Set(ctx, "stale", 1, time.Minute))
	require.NoError(t, memory.Set(ctx, "fresh", 1, time.Hour))
	return f
}

func TestMaintenanceService_DryRun(t *testing.T) {
	f := setupMaintenance(t)

	report, err := f.svc.RunAll(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, int64(1), report.TrialsDeactivated)
	assert.Equal(t, int64(1), report.ScoutAccessRevoked)
	assert.Equal(t, 1, report.TrialRemindersSent)
	assert.Equal(t, int64(2), report.VerificationsPurged)
	assert.Zero(t, report.CacheEntriesSwept)

	assert.Empty(t, f.env.mailer.sent)
	company, err := f.env.store.Companies.GetByID(f.expiredTrial.ID)
	require.NoError(t, err)
	assert.True(t, company.IsTrialActive)
	assert.Equal(t, 2, f.memory.Len())
}

func TestMaintenanceService_RunAll(t *testing.T) {
	f := setupMaintenance(t)
	ctx := context.Background()

	f.env.clock.Advance(5 * time.Minute)
	report, err := f.svc.RunAll(ctx, false)
	require.NoError(t, err)
	assert.False(t, report.DryRun)
	assert.Equal(t, int64(1), report.TrialsDeactivated)
	assert.Equal(t, int64(1), report.ScoutAccessRevoked)
	assert.Equal(t, 1, report.TrialRemindersSent)
	assert.Equal(t, int64(2), report.VerificationsPurged)
	assert.Equal(t, 1, report.CacheEntriesSwept)

	reminders := f.env.mailer.byKind(email.KindTrialEnding)
	require.Len(t, reminders, 1)
	assert.Equal(t, f.endingSoon.User.Email, reminders[0].To)

	trial, err := f.env.store.Companies.GetByID(f.expiredTrial.ID)
	require.NoError(t, err)
	assert.False(t, trial.IsTrialActive)
	scout, err := f.env.store.Companies.GetByID(f.expiredScout.ID)
	require.NoError(t, err)
	assert.False(t, scout.HasScoutAccess)

	var remaining int64
	require.NoError(t, f.env.db.Model(&model.EmailVerification{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	// 第二次运行无事可做
	again, err := f.svc.RunAll(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, again.TrialsDeactivated)
	assert.Zero(t, again.ScoutAccessRevoked)
	assert.Zero(t, again.VerificationsPurged)
}

func TestMaintenanceService_NoSweeper(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.cfg, env.clock, nil, nil, zaptest.NewLogger(t))
	assert.Zero(t, svc.SweepCache(false))
}
