package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/fake-api/internal/middleware"
	"github.com/benvon/fake-api/internal/models"
	"github.com/benvon/fake-api/internal/services/admintoken"
	"github.com/benvon/fake-api/internal/services/apikeys"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type memLogStore struct {
	logs []*models.RequestLog
}

func (m *memLogStore) Create(ctx context.Context, entry *models.RequestLog) error {
	m.logs = append(m.logs, entry)
	return nil
}

func (m *memLogStore) ListByAPIKey(ctx context.Context, apiKeyID uuid.UUID, limit int) ([]*models.RequestLog, error) {
	var out []*models.RequestLog
	for _, l := range m.logs {
		if l.APIKeyID == apiKeyID && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLogStore) CountByEndpoint(ctx context.Context, apiKeyID uuid.UUID) ([]models.EndpointCount, error) {
	counts := map[string]int64{}
	for _, l := range m.logs {
		if l.APIKeyID == apiKeyID {
			counts[l.Endpoint]++
		}
	}
	var out []models.EndpointCount
	for ep, n := range counts {
		out = append(out, models.EndpointCount{Endpoint: ep, Method: http.MethodGet, Count: n})
	}
	return out, nil
}

func (m *memLogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type adminFixture struct {
	router *mux.Router
	svc    *apikeys.Service
	token  string
	keyID  uuid.UUID
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	svc := apikeys.NewService(newMemKeyStore())
	issued, err := svc.Generate(context.Background(), "admin-fixture")
	if err != nil {
		t.Fatal(err)
	}
	logs := &memLogStore{}
	for i := 0; i < 3; i++ {
		_ = logs.Create(context.Background(), &models.RequestLog{APIKeyID: issued.ID, Endpoint: "users", Method: http.MethodGet})
	}

	mgr, err := admintoken.NewManager("test-secret-0123456789", "fake-api", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, err := mgr.Issue("tester")
	if err != nil {
		t.Fatal(err)
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	NewAdminHandler(svc, logs, nil).RegisterRoutes(r, middleware.AdminAuth(mgr, nil))
	return &adminFixture{router: r, svc: svc, token: token, keyID: issued.ID}
}

func (f *adminFixture) do(method, target string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestAdminHandler_RequiresToken(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	if rr := f.do(http.MethodGet, "/api/admin/keys", false); rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestAdminHandler_ListKeys(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)

	rr := f.do(http.MethodGet, "/api/admin/keys?limit=10", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("keys = %d, want 1", len(body.Data))
	}
	if _, leaked := body.Data[0]["key_hash"]; leaked {
		t.Error("key hash must not be serialized")
	}

	for _, q := range []string{"limit=0", "limit=501", "limit=abc", "offset=-1"} {
		if rr := f.do(http.MethodGet, "/api/admin/keys?"+q, true); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, rr.Code)
		}
	}
}

func TestAdminHandler_RevokeAndActivate(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	ctx := context.Background()

	rr := f.do(http.MethodPost, "/api/admin/keys/"+f.keyID.String()+"/revoke", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("revoke status = %d, want 200", rr.Code)
	}
	if k, _ := f.svc.Get(ctx, f.keyID); k.IsActive {
		t.Error("key still active after revoke")
	}

	rr = f.do(http.MethodPost, "/api/admin/keys/"+f.keyID.String()+"/activate", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("activate status = %d, want 200", rr.Code)
	}
	if k, _ := f.svc.Get(ctx, f.keyID); !k.IsActive {
		t.Error("key inactive after activate")
	}

	if rr := f.do(http.MethodPost, "/api/admin/keys/"+uuid.NewString()+"/revoke", true); rr.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", rr.Code)
	}
	if rr := f.do(http.MethodPost, "/api/admin/keys/not-a-uuid/revoke", true); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rr.Code)
	}
}

func TestAdminHandler_KeyLogs(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)

	rr := f.do(http.MethodGet, "/api/admin/keys/"+f.keyID.String()+"/logs?limit=2", true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body struct {
		Data KeyLogsResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data.Logs) != 2 {
		t.Errorf("logs = %d, want 2", len(body.Data.Logs))
	}
	if len(body.Data.EndpointCounts) != 1 || body.Data.EndpointCounts[0].Count != 3 {
		t.Errorf("endpoint counts = %+v", body.Data.EndpointCounts)
	}
	if body.Data.Key == nil || body.Data.Key.ID != f.keyID {
		t.Errorf("key = %+v", body.Data.Key)
	}

	if rr := f.do(http.MethodGet, "/api/admin/keys/"+uuid.NewString()+"/logs", true); rr.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", rr.Code)
	}
	if rr := f.do(http.MethodGet, "/api/admin/keys/"+f.keyID.String()+"/logs?limit=1000", true); rr.Code != http.StatusBadRequest {
		t.Errorf("oversized limit status = %d, want 400", rr.Code)
	}
}
