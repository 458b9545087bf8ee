package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"bca-portal/config"
	"bca-portal/internal/api/handler"
	"bca-portal/internal/service"
	"bca-portal/pkg/jwt"
	"bca-portal/pkg/metrics"
)

func newTestEngine(t *testing.T) (*jwt.Manager, http.Handler) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, BodyLimitBytes: 1 << 20},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 168 * time.Hour,
		},
	}
	mgr := jwt.NewManager(&cfg.Auth)
	h := handler.NewHandler(&service.Service{})
	return mgr, Setup(cfg, h, mgr, nil, metrics.New(), zap.NewNop())
}

func do(engine http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSetup_Health(t *testing.T) {
	_, engine := newTestEngine(t)
	w := do(engine, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("全局中间件应写入 X-Request-ID")
	}
}

func TestSetup_Metrics(t *testing.T) {
	_, engine := newTestEngine(t)
	do(engine, http.MethodGet, "/health", "")

	w := do(engine, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "bca_http_requests_total") {
		t.Errorf("指标输出缺少请求计数")
	}
}

func TestSetup_RequiresAuth(t *testing.T) {
	_, engine := newTestEngine(t)
	for _, path := range []string{"/api/v1/auth/me", "/api/v1/fees/overview", "/api/v1/dashboard/student"} {
		if w := do(engine, http.MethodGet, path, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("%s 期望 401，实际 %d", path, w.Code)
		}
	}
}

func TestSetup_RoleGuards(t *testing.T) {
	mgr, engine := newTestEngine(t)
	token, _ := mgr.GenerateAccessToken("u-1", "student", "s-1")

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/fees/overview"},
		{http.MethodPost, "/api/v1/fees/payments"},
		{http.MethodPost, "/api/v1/salaries/generate"},
		{http.MethodGet, "/api/v1/attendance/review"},
		{http.MethodPost, "/api/v1/submissions/x/approve"},
		{http.MethodGet, "/api/v1/dashboard/admin"},
		{http.MethodGet, "/api/v1/teachers"},
	}
	for _, tc := range cases {
		if w := do(engine, tc.method, tc.path, token); w.Code != http.StatusForbidden {
			t.Errorf("学生访问 %s %s 期望 403，实际 %d", tc.method, tc.path, w.Code)
		}
	}
}
