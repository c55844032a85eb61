package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/serviprohq/servipro-backend/pkg/config"
)

func testDeps() Deps {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	cfg.AuthRateLimit = config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginIPLimit:    20,
		LoginEmailLimit: 5,
		RegisterWindow:  5 * time.Minute,
	}
	cfg.Storage = config.StorageConfig{Root: "./uploads", PublicPath: "/uploads", MaxUploadMB: 2}
	return Deps{Config: cfg}
}

func TestRouterRouteTable(t *testing.T) {
	router := NewRouter(testDeps())
	mux, ok := router.(chi.Routes)
	if !ok {
		t.Fatal("router does not expose its route table")
	}

	got := map[string]bool{}
	err := chi.Walk(mux, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		got[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}

	for _, want := range []string{
		"GET /healthz",
		"GET /readyz",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/logout",
		"POST /api/v1/auth/refresh",
		"GET /api/v1/home",
		"POST /api/v1/contact",
		"GET /api/v1/services",
		"GET /api/v1/services/{serviceID}",
		"POST /api/v1/services",
		"PUT /api/v1/services/{serviceID}",
		"DELETE /api/v1/services/{serviceID}",
		"GET /api/v1/my/services",
		"GET /api/v1/my/dashboard",
		"GET /api/v1/profile/",
		"PUT /api/v1/profile/",
		"PUT /api/v1/profile/password",
		"POST /api/v1/profile/avatar",
		"DELETE /api/v1/profile/avatar",
	} {
		if !got[want] {
			t.Fatalf("missing route %q in %v", want, got)
		}
	}
}

func TestRouterSkipsMetricsWithoutRegistry(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound && resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("metrics endpoint must be absent without a registry, got %d", resp.Code)
	}
}

func TestRouterHealthLive(t *testing.T) {
	router := NewRouter(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if env := resp.Header().Get("X-ServiPro-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router := NewRouter(testDeps())

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/services"},
		{http.MethodGet, "/api/v1/my/services"},
		{http.MethodGet, "/api/v1/my/dashboard"},
		{http.MethodGet, "/api/v1/profile/"},
		{http.MethodPut, "/api/v1/profile/password"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s should demand credentials, got %d", tc.method, tc.path, resp.Code)
		}
	}
}
