package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/api/middleware"
	"github.com/qs3c/devmatch_server/internal/pkg/cache"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/jwt"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/pkg/session"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/service"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

const testSecret = "test-secret-key-for-testing"

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db       *gorm.DB
	store    *repository.Store
	cfg      *config.Config
	clock    *clock.Fake
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: testSecret, ExpireHours: 24},
		Email: config.EmailConfig{
			AdminEmail: "admin@devmatch.test",
			BaseURL:    "https://devmatch.test",
		},
		Subscription: config.SubscriptionConfig{TrialDays: 14, WarningDays: 3, ScoutAccessDays: 30},
		Posting:      config.PostingConfig{DailyJobLimit: 3, DailyProjectLimit: 2},
		Scout:        config.ScoutConfig{MaxCandidates: 50, DailyLimit: 100},
		Payment: config.PaymentConfig{
			ApprovalTTLHours: 24,
			Prices: map[string]config.MethodPrice{
				"paypay": {Currency: "JPY", Subscription: 3680, Scout: 3000},
			},
			Providers: map[string]config.ProviderConfig{
				"paypay": {Secret: "paypay-secret"},
			},
		},
	}

	return &testEnv{
		db:       db,
		store:    repository.NewStore(db),
		cfg:      cfg,
		clock:    clock.NewFake(testNow),
		sessions: session.NewManager(config.SessionConfig{}, 24*time.Hour),
	}
}

func (e *testEnv) authService(t *testing.T) *service.AuthService {
	return service.NewAuthService(e.store, e.cfg, e.clock, nil, nil, zaptest.NewLogger(t))
}

func (e *testEnv) quotaService() *service.QuotaService {
	return service.NewQuotaService(e.store, e.cfg, e.clock)
}

func (e *testEnv) jobService(t *testing.T) *service.JobService {
	return service.NewJobService(e.store, e.quotaService(), cache.NewMemory(e.clock), e.clock, e.cfg, zaptest.NewLogger(t))
}

func (e *testEnv) paymentService(t *testing.T) *service.PaymentService {
	registry := payprovider.NewRegistry(e.cfg.Payment.Providers)
	return service.NewPaymentService(e.store, e.cfg, e.clock, nil, nil, nil, registry, nil, zaptest.NewLogger(t))
}

// auth 已登录用户的中间件
func (e *testEnv) auth() gin.HandlerFunc {
	return middleware.Auth(testSecret, e.sessions)
}

func bearer(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, role, testSecret, 1)
	require.NoError(t, err)
	return "Bearer " + token
}

func performRequest(r http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
