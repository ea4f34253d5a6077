package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/benvon/fake-api/internal/models"
)

type stubCorsRepo struct {
	mu  sync.Mutex
	cfg *models.CorsConfig
	err error
}

func (s *stubCorsRepo) Get(ctx context.Context) (*models.CorsConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, s.err
}

func (s *stubCorsRepo) set(cfg *models.CorsConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/test-api/users", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-api-key")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORSReloader_FallbackAndReload(t *testing.T) {
	t.Parallel()

	repo := &stubCorsRepo{}
	reloader := NewCORSReloader(repo, "http://demo.local", nil, 0)
	h := reloader.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := preflight(h, "http://demo.local")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://demo.local" {
		t.Fatalf("fallback origin not allowed, got %q", got)
	}
	if got := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")); !strings.Contains(got, "x-api-key") {
		t.Errorf("x-api-key not allowed in preflight, got %q", got)
	}

	repo.set(&models.CorsConfig{AllowedOrigins: "https://app.example.com", MaxAge: 60})
	reloader.load(context.Background())

	if got := preflight(h, "http://demo.local").Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("old origin still allowed after reload: %q", got)
	}
	if got := preflight(h, "https://app.example.com").Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("new origin not allowed after reload: %q", got)
	}
}

func TestCORSReloader_RepoErrorUsesDefault(t *testing.T) {
	t.Parallel()

	repo := &stubCorsRepo{err: errors.New("db down")}
	h := NewCORSReloader(repo, "", nil, 0).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	if got := preflight(h, defaultCORSOrigin).Header().Get("Access-Control-Allow-Origin"); got != defaultCORSOrigin {
		t.Errorf("default origin not allowed, got %q", got)
	}
}

func TestCORSReloader_WrapsEachHandlerIndependently(t *testing.T) {
	t.Parallel()

	mw := NewCORSReloader(&stubCorsRepo{}, "http://demo.local", nil, 0).Middleware()
	a := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) }))
	b := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }))

	for name, tc := range map[string]struct {
		h    http.Handler
		want int
	}{
		"first":  {h: a, want: http.StatusAccepted},
		"second": {h: b, want: http.StatusTeapot},
	} {
		w := httptest.NewRecorder()
		tc.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != tc.want {
			t.Errorf("%s handler status = %d, want %d", name, w.Code, tc.want)
		}
	}
}
