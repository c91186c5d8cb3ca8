package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/pkg/jwt"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key-for-middleware"

var testSessions = session.NewManager(config.SessionConfig{}, 0)

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := jwt.GenerateToken(userID, role, testJWTSecret, 24)
	require.NoError(t, err)
	return tok
}

func authRouter(t *testing.T, mws ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mws...)
	router.GET("/test", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": GetRole(c)})
	})
	return router
}

func TestAuth(t *testing.T) {
	router := authRouter(t, Auth(testJWTSecret, testSessions))
	valid := token(t, 123, model.RoleEngineer)
	forged, err := jwt.GenerateToken(123, model.RoleAdmin, "other-secret", 24)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantCode int
	}{
		{"bearer header", "Bearer " + valid, "", response.CodeSuccess},
		{"session cookie", "", valid, response.CodeSuccess},
		{"missing", "", "", response.CodeAuthFailed},
		{"no bearer prefix", valid, "", response.CodeAuthFailed},
		{"empty bearer", "Bearer ", "", response.CodeAuthFailed},
		{"wrong secret", "Bearer " + forged, "", response.CodeAuthFailed},
		{"garbage cookie", "", "not-a-jwt", response.CodeAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if tt.wantCode == response.CodeSuccess {
				assert.Equal(t, http.StatusOK, w.Code)
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, float64(123), body["user_id"])
				assert.Equal(t, model.RoleEngineer, body["role"])
				return
			}
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantCode, parseResponse(t, w).Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := authRouter(t, OptionalAuth(testJWTSecret, testSessions))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"role":""}`, w.Body.String())

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"role":""}`, w.Body.String())

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 7, model.RoleCompany))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":7,"role":"company"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	router := authRouter(t, Auth(testJWTSecret, testSessions), RequireRole(model.RoleCompany, model.RoleAdmin))

	tests := []struct {
		role       string
		wantStatus int
	}{
		{model.RoleCompany, http.StatusOK},
		{model.RoleAdmin, http.StatusOK},
		{model.RoleEngineer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, 1, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetUserID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(UserIDKey, "not-an-int")
	_, ok = GetUserID(c)
	assert.False(t, ok)
}
