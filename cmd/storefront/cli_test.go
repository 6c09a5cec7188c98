package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorefront serves every backend route from one server.
type fakeStorefront struct {
	*httptest.Server
	mu      sync.Mutex
	bodies  map[string][]string
	updates int
}

func newFakeStorefront(t *testing.T) *fakeStorefront {
	t.Helper()
	fs := &fakeStorefront{bodies: map[string][]string{}}
	ok := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": v, "error": nil})
	}
	fail := func(w http.ResponseWriter, status int, code, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "error": map[string]string{"code": code, "message": msg}})
	}
	authed := func(r *http.Request) bool { return r.Header.Get("Authorization") == "Bearer jwt-123" }
	admin := map[string]any{"id": 1, "name": "Admin", "email": "admin@x.io", "role": "admin"}
	product := map[string]any{"id": "p1", "name": "Oud Wood", "precio": 120.5, "marca": "Tom Ford"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			fail(w, http.StatusUnauthorized, "AUTHENTICATION_FAILED", "Invalid email or password")
			return
		}
		ok(w, http.StatusOK, map[string]any{"token": "jwt-123", "user": admin})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
			return
		}
		ok(w, http.StatusOK, admin)
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		ok(w, http.StatusOK, map[string]any{"items": []any{product}, "page": 1, "size": 5, "total": 1})
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		fs.record("create", r)
		ok(w, http.StatusCreated, product)
	})
	mux.HandleFunc("PUT /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		fs.record("update", r)
		if r.PathValue("id") == "locked" {
			fail(w, http.StatusForbidden, "FORBIDDEN", "not your product")
			return
		}
		ok(w, http.StatusOK, product)
	})
	mux.HandleFunc("POST /compras", func(w http.ResponseWriter, r *http.Request) {
		fs.record("purchase", r)
		ok(w, http.StatusCreated, map[string]any{"id": "c1", "total": 241})
	})
	mux.HandleFunc("GET /search/products", func(w http.ResponseWriter, r *http.Request) {
		fs.record("search", r)
		ok(w, http.StatusOK, map[string]any{"items": []any{product}, "page": 1, "size": 5, "total": 7})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ok(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)

	for _, svc := range []string{"USERS", "PRODUCTS", "SEARCH"} {
		t.Setenv("STOREFRONT_"+svc+"_API_BASE_URL", fs.URL)
	}
	return fs
}

func (fs *fakeStorefront) record(kind string, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	if kind == "search" {
		b = []byte(r.URL.RawQuery)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.bodies[kind] = append(fs.bodies[kind], string(b))
}

func (fs *fakeStorefront) recorded(kind string) []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.bodies[kind]...)
}

// run executes one CLI invocation and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_LoginMeLogout(t *testing.T) {
	newFakeStorefront(t)
	session := filepath.Join(t.TempDir(), "nested", "session.yaml")

	_, err := run(t, "--session-file", session, "me")
	require.ErrorContains(t, err, "not logged in")

	_, err = run(t, "--session-file", session, "login", "--email", "admin@x.io", "--password", "wrong")
	require.ErrorContains(t, err, "AUTHENTICATION_FAILED")

	out, err := run(t, "--session-file", session, "login", "--email", "admin@x.io", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, `"role": "admin"`)
	assert.NotContains(t, out, "jwt-123")

	info, err := os.Stat(session)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	s, err := loadSession(session)
	require.NoError(t, err)
	assert.Equal(t, "jwt-123", s.Token)
	assert.EqualValues(t, 1, s.UserID)

	out, err = run(t, "--session-file", session, "me")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@x.io")

	_, err = run(t, "--session-file", session, "logout")
	require.NoError(t, err)
	_, err = run(t, "--session-file", session, "me")
	require.ErrorContains(t, err, "not logged in")
}

func TestCLI_PasswordFromEnv(t *testing.T) {
	newFakeStorefront(t)
	t.Setenv("STOREFRONT_PASSWORD", "secret")
	out, err := run(t, "--session-file", filepath.Join(t.TempDir(), "s.yaml"), "login", "--email", "admin@x.io", "--no-save", "--show-token")
	require.NoError(t, err)
	assert.Contains(t, out, "jwt-123")
}

func TestCLI_ProductsListAndSearch(t *testing.T) {
	fs := newFakeStorefront(t)

	out, err := run(t, "products", "list", "--brand", "Tom Ford")
	require.NoError(t, err)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.EqualValues(t, 1, page.Total)

	_, err = run(t, "search", "-q", "oud", "--sort", "precio:desc")
	require.NoError(t, err)
	require.Len(t, fs.recorded("search"), 1)
	assert.Equal(t, "q=oud&sort=precio%3Adesc", fs.recorded("search")[0])
}

func TestCLI_ImportAppliesCreatesAndUpdates(t *testing.T) {
	fs := newFakeStorefront(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`products:
  - name: Oud Wood
    precio: 120.5
    marca: Tom Ford
    notas: [oud, vainilla]
  - id: p1
    name: Oud Wood Intense
    stock: 3
  - id: locked
    name: Not mine
`), 0o600))

	out, err := run(t, "--token", "jwt-123", "products", "import", file)
	var incomplete errImportIncomplete
	require.True(t, errors.As(err, &incomplete), "expected partial import, got %v", err)
	assert.Equal(t, 1, incomplete.failed)

	var report importReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "locked", report.Failed[0].Key)
	assert.Contains(t, report.Failed[0].Error, "FORBIDDEN")

	creates := fs.recorded("create")
	require.Len(t, creates, 1)
	assert.Contains(t, creates[0], `"notas":["oud","vainilla"]`)
	assert.NotContains(t, creates[0], "owner_id")
	assert.Len(t, fs.recorded("update"), 2, "forbidden updates are not retried")
}

func TestCLI_ImportRejectsEmptyFile(t *testing.T) {
	newFakeStorefront(t)
	file := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(file, []byte("products: []\n"), 0o600))
	_, err := run(t, "--token", "t", "products", "import", file)
	require.ErrorContains(t, err, "lists no products")
}

func TestCLI_ImportRateLimited(t *testing.T) {
	fs := newFakeStorefront(t)
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`products:
  - name: A
  - name: B
  - name: C
`), 0o600))

	out, err := run(t, "--token", "jwt-123", "products", "import", "--rate", "1000", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"created": 3`)
	assert.Len(t, fs.recorded("create"), 3)
}

func TestNewImportLimiter(t *testing.T) {
	unlimited := newImportLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(ctx))
	}

	paced := newImportLimiter(2)
	assert.InDelta(t, 2, float64(paced.Limit()), 0)
	assert.Equal(t, 1, paced.Burst())
}

func TestCLI_EnvFileSuppliesBaseURL(t *testing.T) {
	fs := newFakeStorefront(t)
	// Restored by t.Setenv's cleanup; unset so the file value is picked up.
	t.Setenv("STOREFRONT_USERS_API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("STOREFRONT_USERS_API_BASE_URL"))
	t.Setenv("VITE_USERS_API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("VITE_USERS_API_BASE_URL"))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VITE_USERS_API_BASE_URL="+fs.URL+"/\n"), 0o600))

	out, err := run(t, "--env-file", envFile, "--token", "jwt-123", "me")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "admin@x.io"`)

	_, err = run(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "health")
	require.ErrorContains(t, err, "load env file")
}

func TestCLI_PurchaseCreate(t *testing.T) {
	fs := newFakeStorefront(t)
	_, err := run(t, "--token", "jwt-123", "purchase", "create", "--item", "p1:2", "--item", "p2")
	require.NoError(t, err)
	require.Len(t, fs.recorded("purchase"), 1)
	assert.JSONEq(t, `{"items":[{"producto_id":"p1","cantidad":2},{"producto_id":"p2","cantidad":1}]}`, fs.recorded("purchase")[0])
}

func TestCLI_HealthAndOverview(t *testing.T) {
	newFakeStorefront(t)

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, `"status": "ok"`))

	out, err = run(t, "overview", "--size", "5")
	require.NoError(t, err)
	var ov struct {
		Catalog  struct{ Total int64 } `json:"catalog"`
		TopRated struct{ Total int64 } `json:"top_rated"`
		Services []serviceStatus       `json:"services"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ov))
	assert.EqualValues(t, 1, ov.Catalog.Total)
	assert.EqualValues(t, 7, ov.TopRated.Total)
	assert.Len(t, ov.Services, 3)
}

func TestCLI_HealthReportsDownServices(t *testing.T) {
	fs := newFakeStorefront(t)
	t.Setenv("STOREFRONT_SEARCH_API_BASE_URL", "http://127.0.0.1:1")

	out, err := run(t, "--timeout", "2s", "health")
	require.ErrorContains(t, err, "1 of 3 services are down")
	assert.Contains(t, out, "NETWORK_ERROR")
	assert.Contains(t, out, fs.URL)
}

func TestCLI_MetricsEndpoint(t *testing.T) {
	a := &app{}
	require.NoError(t, a.startMetrics("127.0.0.1:0"))
	require.NotNil(t, a.metricsSrv)
	require.NoError(t, a.stopMetrics())
	require.NoError(t, a.stopMetrics())
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"a:3", " b ", "c: 1"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "b", items[1].ProductID)
	assert.Equal(t, 1, items[1].Quantity)

	for _, bad := range []string{":2", "a:0", "a:-1", "a:x"} {
		_, err := parseItems([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestSession_MissingFileIsNil(t *testing.T) {
	s, err := loadSession(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSession_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))
	_, err := loadSession(path)
	require.Error(t, err)
}
