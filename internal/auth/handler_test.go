package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-auth-service/internal/httputil"
	"github.com/redmonkez12/go-auth-service/internal/logging"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(svc)
	m := NewMiddleware(svc)

	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.With(m.RequireAuth).Get("/auth/me", h.Me)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()

	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)

	rec := doJSON(t, h, http.MethodPost, "/auth/register",
		`{"email":"a@x.io","display_name":"Ann","password":"password123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "a@x.io", body["email"])
	assert.Equal(t, "Ann", body["display_name"])
	assert.Equal(t, true, body["active"])
	assert.Equal(t, false, body["premium"])
	assert.Contains(t, body, "created_at")
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "password")
}

func TestHandler_Register_Errors(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)

	rec := doJSON(t, h, http.MethodPost, "/auth/register", `{"email":"a@x.io","password":"password123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"duplicate", `{"email":"A@x.io","password":"password123"}`, http.StatusConflict, httputil.CodeEmailAlreadyRegistered},
		{"short password", `{"email":"b@x.io","password":"short"}`, http.StatusUnprocessableEntity, httputil.CodeInvalidCredentialShape},
		{"bad email", `{"email":"nope","password":"password123"}`, http.StatusUnprocessableEntity, httputil.CodeInvalidCredentialShape},
		{"undecodable", `{"email":`, http.StatusBadRequest, httputil.CodeInvalidRequestBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/auth/register", tt.body, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestHandler_Login_Form(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)

	_, err := env.svc.Register(context.Background(), "a@x.io", nil, "password123")
	require.NoError(t, err)

	rec := doForm(t, h, "/auth/login", url.Values{"username": {"a@x.io"}, "password": {"password123"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok AuthToken
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))
	assert.Equal(t, "bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, int64(testTTL/time.Second), tok.ExpiresIn)
}

func TestHandler_Login_JSON(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)

	_, err := env.svc.Register(context.Background(), "a@x.io", nil, "password123")
	require.NoError(t, err)

	for _, body := range []string{
		`{"username":"a@x.io","password":"password123"}`,
		`{"email":"a@x.io","password":"password123"}`,
	} {
		rec := doJSON(t, h, http.MethodPost, "/auth/login", body, nil)
		assert.Equal(t, http.StatusOK, rec.Code, body)
	}
}

func TestHandler_Login_Errors(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)

	_, err := env.svc.Register(context.Background(), "a@x.io", nil, "password123")
	require.NoError(t, err)

	wrong := doForm(t, h, "/auth/login", url.Values{"username": {"a@x.io"}, "password": {"nope-nope"}})
	unknown := doForm(t, h, "/auth/login", url.Values{"username": {"b@x.io"}, "password": {"password123"}})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Bearer", wrong.Header().Get("WWW-Authenticate"))

	missing := doForm(t, h, "/auth/login", url.Values{"username": {"a@x.io"}})
	assert.Equal(t, http.StatusUnprocessableEntity, missing.Code)

	bad := doJSON(t, h, http.MethodPost, "/auth/login", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, "a@x.io", ptr("Ann"), "password123")
	require.NoError(t, err)
	tok, err := env.svc.Login(ctx, "a@x.io", "password123")
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		rec := doJSON(t, h, http.MethodGet, "/auth/me", "",
			http.Header{"Authorization": []string{scheme + " " + tok.AccessToken}})
		require.Equal(t, http.StatusOK, rec.Code, scheme)

		var body UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "a@x.io", body.Email)
		assert.Equal(t, "Ann", *body.DisplayName)
	}
}

func TestHandler_Me_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env.svc)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, "a@x.io", nil, "password123")
	require.NoError(t, err)
	tok, err := env.svc.Login(ctx, "a@x.io", "password123")
	require.NoError(t, err)

	expired, err := env.tokens.Issue("1", 0)
	require.NoError(t, err)
	ghost, err := env.tokens.Issue("404", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header http.Header
		code   string
	}{
		{"no header", nil, httputil.CodeMissingAuth},
		{"wrong scheme", http.Header{"Authorization": []string{"Basic " + tok.AccessToken}}, httputil.CodeInvalidAuthHeader},
		{"no token", http.Header{"Authorization": []string{"Bearer"}}, httputil.CodeInvalidAuthHeader},
		{"garbage", bearer("garbage"), httputil.CodeUnauthorized},
		{"tampered", bearer(tamper(tok.AccessToken)), httputil.CodeUnauthorized},
		{"expired", bearer(expired), httputil.CodeUnauthorized},
		{"unknown user", bearer(ghost), httputil.CodeUnauthorized},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodGet, "/auth/me", "", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			if tt.code == httputil.CodeUnauthorized {
				bodies = append(bodies, rec.Body.String())
			}
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}

	// Token failures share one response regardless of cause.
	for _, b := range bodies {
		assert.Equal(t, bodies[0], b)
	}
}

func TestMiddleware_RepositoryFailureIs500(t *testing.T) {
	cfg := fastArgon2()
	cfg.AccessTokenTTL = testTTL
	tokens := NewJWTService(testJWTSecret, "")
	svc := NewService(cfg, failingRepo{err: errors.New("db down")}, NewPasswordHasher(cfg), tokens, logging.NewNop())
	h := newTestRouter(svc)

	tok, err := tokens.Issue("1", time.Hour)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/auth/me", "", bearer(tok))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, httputil.CodeInternalError, decodeError(t, rec).Code)
}

func TestUserFromContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	u := &user.User{ID: 3}
	got, ok := UserFromContext(context.WithValue(context.Background(), UserContextKey, u))
	require.True(t, ok)
	assert.Same(t, u, got)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"Bearer a b", "", false},
	}

	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}
