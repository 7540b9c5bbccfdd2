package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mywealth/wealth-backend/internal/assets"
	"github.com/mywealth/wealth-backend/internal/market"
	"github.com/mywealth/wealth-backend/internal/transactions"
	"github.com/mywealth/wealth-backend/internal/users"
	pkgAuth "github.com/mywealth/wealth-backend/pkg/auth"
	"github.com/mywealth/wealth-backend/pkg/config"
	"github.com/mywealth/wealth-backend/pkg/enums"
	"github.com/mywealth/wealth-backend/pkg/logger"
	"github.com/mywealth/wealth-backend/pkg/metrics"
	"github.com/mywealth/wealth-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// stubUsers derives the role from the uid prefix.
type stubUsers struct{}

func roleFor(uid string) enums.UserRole {
	switch {
	case strings.HasPrefix(uid, "owner"):
		return enums.UserRoleOwner
	case strings.HasPrefix(uid, "admin"):
		return enums.UserRoleAdmin
	}
	return enums.UserRoleUser
}

func (stubUsers) EnsureUser(_ context.Context, uid, _ string) (*users.UserDTO, error) {
	return &users.UserDTO{UID: uid, Role: roleFor(uid)}, nil
}

func (stubUsers) Get(_ context.Context, uid string) (*users.UserDTO, error) {
	return &users.UserDTO{UID: uid, Role: roleFor(uid)}, nil
}

func (stubUsers) List(context.Context, users.Actor, users.ListParams) ([]users.UserDTO, error) {
	return []users.UserDTO{}, nil
}

func (stubUsers) UpdateRole(_ context.Context, _ users.Actor, uid string, role enums.UserRole) (*users.UserDTO, error) {
	return &users.UserDTO{UID: uid, Role: role}, nil
}

func (stubUsers) Delete(context.Context, users.Actor, string) error {
	return nil
}

type stubAssets struct{}

func (stubAssets) Create(_ context.Context, _ string, in assets.CreateAssetInput) (*assets.AssetDTO, error) {
	return &assets.AssetDTO{ID: 1, Name: in.Name}, nil
}

func (stubAssets) Update(_ context.Context, _ string, id int64, _ assets.UpdateAssetInput) (*assets.AssetDTO, error) {
	return &assets.AssetDTO{ID: id}, nil
}

func (stubAssets) Delete(context.Context, string, int64) error {
	return nil
}

func (stubAssets) List(context.Context, string) ([]assets.AssetDTO, error) {
	return []assets.AssetDTO{}, nil
}

func (stubAssets) Get(_ context.Context, _ string, id int64) (*assets.AssetDTO, error) {
	return &assets.AssetDTO{ID: id}, nil
}

type stubTransactions struct{}

func (stubTransactions) Create(_ context.Context, _ string, in transactions.CreateTransactionInput) (*transactions.TransactionDTO, error) {
	return &transactions.TransactionDTO{ID: 1, AssetID: in.AssetID}, nil
}

func (stubTransactions) Delete(context.Context, string, int64) error {
	return nil
}

func (stubTransactions) ListByAsset(context.Context, string, int64, pagination.Params) (*transactions.ListResult, error) {
	return &transactions.ListResult{Items: []transactions.TransactionDTO{}}, nil
}

type stubMarket struct{}

func (stubMarket) Price(_ context.Context, symbol, _ string) (*market.QuoteDTO, error) {
	return &market.QuoteDTO{Symbol: symbol, Price: 10, Currency: "USD"}, nil
}

func (stubMarket) Rate(_ context.Context, from, to string) (*market.RateDTO, error) {
	return &market.RateDTO{From: from, To: to, Rate: 1}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSAllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "wealth-test", ExpirationMinutes: 30},
		Market: config.MarketConfig{
			RateLimitWindow: time.Minute,
			RateLimit:       10,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewLedgerMetrics(reg).IncApplied("costed", "BUY")
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, reg, stubUsers{}, stubAssets{}, stubTransactions{}, stubMarket{}), cfg
}

func bearer(t *testing.T, cfg *config.Config, uid string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UID: uid})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func do(router http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/health/live", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestHealthReady(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ledger_transactions_applied_total") {
		t.Fatalf("expected ledger counters in exposition")
	}
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, path := range []string{"/api/v1/assets", "/api/v1/users/me", "/api/v1/market/rate?from=USD&to=TWD"} {
		rec := do(router, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
	}
}

func TestAPISucceedsWithJWT(t *testing.T) {
	router, cfg := newTestRouter(t)
	auth := bearer(t, cfg, "user-1")

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/v1/users/me", "", http.StatusOK},
		{http.MethodGet, "/api/v1/assets", "", http.StatusOK},
		{http.MethodPost, "/api/v1/assets", `{"name":"Wallet","asset_type":"CASH"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/assets/3", "", http.StatusOK},
		{http.MethodPatch, "/api/v1/assets/3", `{"name":"Main wallet"}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/assets/3", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/assets/3/transactions?limit=5", "", http.StatusOK},
		{http.MethodPost, "/api/v1/transactions", `{"asset_id":3,"transaction_type":"DEPOSIT","amount":100}`, http.StatusCreated},
		{http.MethodDelete, "/api/v1/transactions/8", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/market/stock/2330?region=TW", "", http.StatusOK},
		{http.MethodGet, "/api/v1/market/rate?from=USD&to=TWD", "", http.StatusOK},
	}
	for _, tc := range cases {
		rec := do(router, tc.method, tc.path, auth, tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d got %d: %s", tc.method, tc.path, tc.status, rec.Code, rec.Body.String())
		}
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	router, cfg := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/users", bearer(t, cfg, "user-1"), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user, got %d", rec.Code)
	}
	rec = do(router, http.MethodGet, "/api/v1/users", bearer(t, cfg, "admin-1"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	rec = do(router, http.MethodPatch, "/api/v1/users/user-1/role", bearer(t, cfg, "admin-1"), `{"role":"FRIEND"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role change, got %d", rec.Code)
	}
}

func TestDeleteUserRequiresOwner(t *testing.T) {
	router, cfg := newTestRouter(t)

	rec := do(router, http.MethodDelete, "/api/v1/users/user-1", bearer(t, cfg, "admin-1"), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin, got %d", rec.Code)
	}
	rec = do(router, http.MethodDelete, "/api/v1/users/user-1", bearer(t, cfg, "owner-1"), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for owner, got %d", rec.Code)
	}
}
