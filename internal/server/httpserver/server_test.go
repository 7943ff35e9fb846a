package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	srv   *httptest.Server
	codec *auth.TokenCodec
	svc   *services.AuthService
}

func newTestEnv(t *testing.T, webDir string) *testEnv {
	t.Helper()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := auth.NewTokenCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	svc := services.NewAuthService(users.NewMemoryRepository(), hasher, codec, logging.Nop())
	s := NewServer("", logging.Nop(), svc, codec, metrics.New(), webDir)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	return &testEnv{srv: ts, codec: codec, svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func (e *testEnv) registerAndLogin(t *testing.T, email, password string) string {
	t.Helper()
	code, _ := e.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, code)
	code, body := e.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code)
	return body["token"].(string)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, "")

	code, body := env.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email": "alice@example.com", "password": "password123", "displayName": "Alice",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "Alice", body["displayName"])
	assert.Contains(t, body, "createdAt")
	assert.Contains(t, body, "updatedAt")
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "password")

	code, body = env.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email": "alice@example.com", "password": "password456",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, float64(http.StatusConflict), body["statusCode"])
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name string
		body any
		want string
	}{
		{"bad email", map[string]any{"email": "nope", "password": "password123"}, "email must be a valid email address"},
		{"short password", map[string]any{"email": "a@x.io", "password": "short"}, "password must be at least 8 characters"},
		{"missing email", map[string]any{"password": "password123"}, "email is required"},
		{"unknown field", map[string]any{"email": "a@x.io", "password": "password123", "role": "admin"}, "malformed JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.do(t, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Contains(t, body["message"], tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "")

	code, _ := env.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": "bob@x.io", "password": "password123"})
	require.Equal(t, http.StatusCreated, code)

	code, body := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "bob@x.io", "password": "password123"})
	require.Equal(t, http.StatusOK, code)
	require.IsType(t, "", body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "bob@x.io", user["email"])
	assert.NotEmpty(t, user["id"])

	claims, err := env.codec.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.Subject)
}

func TestLogin_UnknownEmailAndWrongPasswordLookTheSame(t *testing.T) {
	env := newTestEnv(t, "")

	code, _ := env.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": "carol@x.io", "password": "password123"})
	require.Equal(t, http.StatusCreated, code)

	codeA, bodyA := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "nobody@x.io", "password": "password123"})
	codeB, bodyB := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "carol@x.io", "password": "wrong-pass"})

	assert.Equal(t, http.StatusUnauthorized, codeA)
	assert.Equal(t, codeA, codeB)
	assert.Equal(t, bodyA, bodyB)
	assert.Equal(t, "Invalid credentials", bodyA["message"])
}

func TestProtected_Unauthorized(t *testing.T) {
	env := newTestEnv(t, "")

	expired, err := auth.NewTokenCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	expired.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expiredTok, _, err := expired.Issue("someone", "x@x.io")
	require.NoError(t, err)

	forged, err := auth.NewTokenCodec([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	forgedTok, _, err := forged.Issue("someone", "x@x.io")
	require.NoError(t, err)

	ghostTok, _, err := env.codec.Issue("ghost-id", "ghost@x.io")
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"missing":   "",
		"malformed": "garbage",
		"expired":   expiredTok,
		"forged":    forgedTok,
		"unknown":   ghostTok,
	} {
		t.Run(name, func(t *testing.T) {
			code, body := env.do(t, http.MethodGet, "/users/me", tok, nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, "Unauthorized", body["message"])
			assert.Equal(t, float64(401), body["statusCode"])
		})
	}
}

func TestProtected_RequiresExactBearerForm(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.registerAndLogin(t, "dan@x.io", "password123")

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/users/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "bearer "+token)

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileFlow(t *testing.T) {
	env := newTestEnv(t, "")
	token := env.registerAndLogin(t, "erin@x.io", "password123")

	code, body := env.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "erin@x.io", body["email"])
	assert.Nil(t, body["displayName"])

	code, body = env.do(t, http.MethodPatch, "/users/me", token, map[string]any{"displayName": "Erin"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Erin", body["displayName"])

	code, _ = env.do(t, http.MethodPatch, "/users/me", token, map[string]any{"password": "short"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Account deactivated", body["message"])

	code, _ = env.do(t, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "erin@x.io", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, "")

	code, body := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])

	env.do(t, http.MethodGet, "/users/me", "", nil)

	resp, err := env.srv.Client().Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `gophauth_authorize_total{result="missing_token"} 1`)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, "")

	code, body := env.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, float64(404), body["statusCode"])

	code, _ = env.do(t, http.MethodGet, "/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestPages_Guarded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home"), []byte("home page"), 0o600))

	env := newTestEnv(t, dir)
	client := env.srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := client.Get(env.srv.URL + "/home")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/home", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "anything"})
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", logging.Nop(), nil, nil, metrics.New(), "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}
