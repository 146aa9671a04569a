package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"onlinemall/pkg/domain"
	"onlinemall/services/storefront/internal/config"
)

func envelope(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "ok", "data": data})
	}
}

func newBackend(t *testing.T, role string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", envelope(map[string]any{
		"token":    "tok-cli",
		"userInfo": domain.UserInfo{ID: 3, Name: "Cleo", Email: "cleo@example.com", Role: role},
	}))
	mux.HandleFunc("GET /api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-cli" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		envelope(domain.Cart{Items: []domain.CartItem{{ID: 1, ProductID: 2, Quantity: 3}}, TotalPrice: 30})(w, r)
	})
	mux.HandleFunc("POST /api/v1/admin/recommendations/trigger-training", envelope(domain.TrainingJob{JobID: "job-1", Status: "QUEUED"}))
	mux.HandleFunc("GET /api/v1/products", envelope([]domain.Product{{ID: 2, Name: "Lamp", Price: 10}}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	cfg config.FileConfig
}

func newHarness(t *testing.T, apiURL string) *harness {
	t.Helper()
	return &harness{cfg: config.FileConfig{
		APIBaseURL:           apiURL + "/api/v1",
		Timeout:              "5s",
		LogLevel:             "error",
		AdminPolicy:          "role",
		AdminRole:            "ADMIN",
		NotificationDuration: "1h",
		Storage: config.StorageConfig{
			Driver: config.StorageFile,
			Path:   filepath.Join(t.TempDir(), "storage.json"),
		},
		Metrics: config.MetricsConfig{Job: "storefront"},
	}}
}

func (h *harness) run(stdin string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, Options{
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  strings.NewReader(stdin),
		LoadConfig: func(string) (config.FileConfig, error) {
			return h.cfg, nil
		},
	})
	return code, stdout.String(), stderr.String()
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	srv := newBackend(t, domain.RoleUser)
	h := newHarness(t, srv.URL)

	code, stdout, stderr := h.run("secret\n", "login", "--email", "cleo@example.com")
	if code != 0 {
		t.Fatalf("login exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"name": "Cleo"`) || !strings.Contains(stderr, "Login successful") {
		t.Fatalf("unexpected login output: %s / %s", stdout, stderr)
	}

	code, stdout, _ = h.run("", "whoami")
	if code != 0 || !strings.Contains(stdout, `"loggedIn": true`) || !strings.Contains(stdout, `"role": "USER"`) {
		t.Fatalf("whoami should see the stored session, got %d %s", code, stdout)
	}

	code, stdout, stderr = h.run("", "cart")
	if code != 0 {
		t.Fatalf("cart exit %d: %s", code, stderr)
	}
	var cart domain.Cart
	if err := json.Unmarshal([]byte(stdout), &cart); err != nil {
		t.Fatalf("cart output is not json: %v", err)
	}
	if cart.TotalPrice != 30 || len(cart.Items) != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}

	if code, _, _ := h.run("", "logout"); code != 0 {
		t.Fatalf("logout exit %d", code)
	}
	code, stdout, _ = h.run("", "whoami")
	if code != 0 || !strings.Contains(stdout, `"loggedIn": false`) {
		t.Fatalf("logout should forget the session, got %s", stdout)
	}
}

func TestGuardedCommandRedirectsToLogin(t *testing.T) {
	srv := newBackend(t, domain.RoleUser)
	h := newHarness(t, srv.URL)

	code, stdout, stderr := h.run("", "cart")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("denied command must not print output, got %s", stdout)
	}
	if !strings.Contains(stderr, "✗ please log in to continue") {
		t.Fatalf("expected login notification, got %s", stderr)
	}
	if !strings.Contains(stderr, "redirected to /auth") {
		t.Fatalf("expected redirect target, got %s", stderr)
	}
	if strings.Contains(stderr, "Error:") {
		t.Fatalf("a shown notification must not be repeated, got %s", stderr)
	}
}

func TestAdminCommandsRequireRole(t *testing.T) {
	srv := newBackend(t, domain.RoleUser)
	h := newHarness(t, srv.URL)
	if code, _, stderr := h.run("", "login", "-e", "cleo@example.com", "-p", "secret"); code != 0 {
		t.Fatalf("login: %s", stderr)
	}

	code, _, stderr := h.run("", "admin", "train")
	if code != 1 || !strings.Contains(stderr, "admin access required") {
		t.Fatalf("non-admin must be refused, got %d %s", code, stderr)
	}
}

func TestAdminTrain(t *testing.T) {
	srv := newBackend(t, domain.RoleAdmin)
	h := newHarness(t, srv.URL)
	if code, _, stderr := h.run("", "login", "-e", "cleo@example.com", "-p", "secret"); code != 0 {
		t.Fatalf("login: %s", stderr)
	}

	code, stdout, stderr := h.run("", "admin", "train")
	if code != 0 {
		t.Fatalf("admin train exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, `"jobId": "job-1"`) {
		t.Fatalf("unexpected output %s", stdout)
	}
}

func TestInvalidIDIsReported(t *testing.T) {
	srv := newBackend(t, domain.RoleUser)
	h := newHarness(t, srv.URL)

	code, _, stderr := h.run("", "product", "abc")
	if code != 1 || !strings.Contains(stderr, `Error: invalid id "abc"`) {
		t.Fatalf("unexpected result %d %s", code, stderr)
	}
}

func TestMetricsPushedOnExit(t *testing.T) {
	srv := newBackend(t, domain.RoleUser)
	var pushes atomic.Int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/metrics/job/storefront") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	h := newHarness(t, srv.URL)
	h.cfg.Metrics.PushURL = gateway.URL
	if code, _, stderr := h.run("", "products", "--keyword", "lamp"); code != 0 {
		t.Fatalf("products exit %d: %s", code, stderr)
	}
	if pushes.Load() != 1 {
		t.Fatalf("expected one metrics push, got %d", pushes.Load())
	}
}
