package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

// recordingMailer 记录所有待发送邮件
type recordingMailer struct {
	mu   sync.Mutex
	sent []*email.Message
}

func (m *recordingMailer) Notify(msg *email.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *recordingMailer) byKind(kind string) []*email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*email.Message
	for _, msg := range m.sent {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

type pushed struct {
	UserID int64
	Type   string
	Data   interface{}
}

type recordingRealtime struct {
	mu     sync.Mutex
	events []pushed
}

func (r *recordingRealtime) Publish(_ context.Context, userID int64, eventType string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, pushed{UserID: userID, Type: eventType, Data: data})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
		Email: config.EmailConfig{
			AdminEmail: "admin@devmatch.test",
			BaseURL:    "https://devmatch.test",
		},
		Subscription: config.SubscriptionConfig{
			TrialDays:       14,
			WarningDays:     3,
			ScoutAccessDays: 30,
		},
		Posting: config.PostingConfig{
			DailyJobLimit:     3,
			DailyProjectLimit: 2,
		},
		Scout: config.ScoutConfig{
			MinScore:      0,
			MaxCandidates: 50,
			DailyLimit:    100,
		},
		Payment: config.PaymentConfig{
			ApprovalTTLHours: 24,
			Prices: map[string]config.MethodPrice{
				"wechat": {Currency: "CNY", Subscription: 168, Scout: 150},
				"alipay": {Currency: "CNY", Subscription: 168, Scout: 150},
				"paypay": {Currency: "JPY", Subscription: 3680, Scout: 3000},
			},
			PlanPrices: map[string]float64{
				"BASIC":      9800,
				"PREMIUM":    29800,
				"ENTERPRISE": 98000,
			},
			ScoutPrice: 3000,
			Providers: map[string]config.ProviderConfig{
				"paypay": {Secret: "paypay-secret"},
			},
		},
	}
}

type testEnv struct {
	db       *gorm.DB
	store    *repository.Store
	cfg      *config.Config
	clock    *clock.Fake
	mailer   *recordingMailer
	realtime *recordingRealtime
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return &testEnv{
		db:       db,
		store:    repository.NewStore(db),
		cfg:      testConfig(),
		clock:    clock.NewFake(testNow),
		mailer:   &recordingMailer{},
		realtime: &recordingRealtime{},
	}
}

func (e *testEnv) quota() *QuotaService {
	return NewQuotaService(e.store, e.cfg, e.clock)
}
