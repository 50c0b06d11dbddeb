package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/api/http/handlers"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/observability"
	"github.com/spec-kit/org-directory/internal/repository"
	"github.com/spec-kit/org-directory/internal/service"
)

type testServer struct {
	app   *fiber.App
	store *repository.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	metrics := observability.NewMetrics()
	deps := service.Dependencies{
		Store:     store,
		Logger:    zap.NewNop(),
		Metrics:   metrics,
		Passwords: auth.NewPasswordPolicy(6),
	}
	seeded, err := service.NewSeeder(deps).Seed(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)

	tokens := auth.NewTokenManager("router-test-secret", 60)
	sessions := service.NewSessionService(deps, tokens)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("org-directory", "test", "memory", store, metrics),
		Auth:           handlers.NewAuthHandler(sessions),
		Users:          handlers.NewUsersHandler(service.NewUserService(deps)),
		Teams:          handlers.NewTeamsHandler(service.NewTeamService(deps)),
		Directory:      handlers.NewDirectoryHandler(service.NewDirectoryService(deps)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions),
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, nethttp.StatusOK, status, body)
	data := body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	errBody, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = srv.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestRoutes_LoginAndSession(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "ADMIN@example.com", service.SeedAdminPassword)

	status, body := srv.do(t, nethttp.MethodGet, "/auth/session", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, service.SeedAdminEmail, user["email"])
	assert.Equal(t, "Admin", user["display_designation"])
	assert.NotContains(t, user, "password")
}

func TestRoutes_LoginFailures(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "x"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, service.MsgInvalidCredentials, body["error"].(map[string]any)["message"])

	status, body = srv.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"admin@example.com","password":"admin123","role":"SUPER_ADMIN"}`)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestRoutes_RequireToken(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, nethttp.MethodGet, "/directory", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = srv.do(t, nethttp.MethodGet, "/directory", "not-a-jwt", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestRoutes_LogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedEmployeeEmail, service.SeedEmployeePassword)

	status, _ := srv.do(t, nethttp.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, _ = srv.do(t, nethttp.MethodGet, "/directory", token, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestRoutes_ReloginRevokesEarlierToken(t *testing.T) {
	srv := newTestServer(t)
	first := srv.login(t, service.SeedAdminEmail, service.SeedAdminPassword)
	second := srv.login(t, service.SeedEmployeeEmail, service.SeedEmployeePassword)

	status, _ := srv.do(t, nethttp.MethodGet, "/directory", first, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	status, _ = srv.do(t, nethttp.MethodGet, "/directory", second, nil)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestRoutes_AdminCreatesAndDeletesEmployee(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedAdminEmail, service.SeedAdminPassword)

	status, body := srv.do(t, nethttp.MethodPost, "/users/employees", token, map[string]string{
		"name": "Jo", "email": "jo@x.com", "password": "secret1", "designation": "backend",
	})
	require.Equal(t, nethttp.StatusCreated, status, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "Backend Developer", created["display_designation"])
	assert.Equal(t, "EMPLOYEE", created["role"])
	assert.NotContains(t, created, "password")
	id := created["id"].(string)

	status, body = srv.do(t, nethttp.MethodGet, "/teams", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	teamID := body["data"].([]any)[0].(map[string]any)["id"].(string)

	status, body = srv.do(t, nethttp.MethodPost, "/teams/"+teamID+"/members/"+id+"/toggle", token, nil)
	require.Equal(t, nethttp.StatusOK, status, body)
	assert.Len(t, body["data"].(map[string]any)["members"], 2)

	status, _ = srv.do(t, nethttp.MethodDelete, "/users/"+id, token, nil)
	require.Equal(t, nethttp.StatusNoContent, status)

	status, body = srv.do(t, nethttp.MethodGet, "/teams/"+teamID, token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"].(map[string]any)["members"], 1)

	status, _ = srv.do(t, nethttp.MethodGet, "/users/"+id, token, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestRoutes_SuperAdminDeleteIsForbidden(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedSuperAdminEmail, service.SeedSuperAdminPassword)

	_, body := srv.do(t, nethttp.MethodGet, "/auth/session", token, nil)
	selfID := body["data"].(map[string]any)["user"].(map[string]any)["id"].(string)

	status, body := srv.do(t, nethttp.MethodDelete, "/users/"+selfID, token, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, service.MsgSuperAdminDelete, body["error"].(map[string]any)["message"])
}

func TestRoutes_EmployeeCannotManage(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedEmployeeEmail, service.SeedEmployeePassword)

	status, _ := srv.do(t, nethttp.MethodPost, "/users/employees", token, map[string]string{
		"name": "X", "email": "x@x.com", "password": "secret1", "designation": "tester",
	})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _ = srv.do(t, nethttp.MethodPost, "/teams", token, map[string]string{"name": "X", "description": "Y"})
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, _ = srv.do(t, nethttp.MethodGet, "/admin/metrics", token, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body := srv.do(t, nethttp.MethodGet, "/directory", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	dir := body["data"].(map[string]any)
	assert.Len(t, dir["admins"], 2)
	assert.Len(t, dir["employees"], 1)
}

func TestRoutes_ProfileUpdateRefreshesSession(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedEmployeeEmail, service.SeedEmployeePassword)

	status, body := srv.do(t, nethttp.MethodPatch, "/profile", token, map[string]string{
		"name":             "Emp Renamed",
		"designation":      "tester",
		"current_password": service.SeedEmployeePassword,
	})
	require.Equal(t, nethttp.StatusOK, status, body)

	status, body = srv.do(t, nethttp.MethodGet, "/auth/session", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Emp Renamed", user["name"])
	assert.Equal(t, "Tester", user["display_designation"])
}

func TestRoutes_ProfileUpdateNeedsCurrentPassword(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedEmployeeEmail, service.SeedEmployeePassword)

	status, body := srv.do(t, nethttp.MethodPatch, "/profile", token, map[string]string{"password": "hijacked1"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = srv.do(t, nethttp.MethodPatch, "/profile", token, map[string]string{
		"password":         "hijacked1",
		"current_password": "wrong-guess",
	})
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = srv.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{"email": service.SeedEmployeeEmail, "password": "hijacked1"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, body = srv.do(t, nethttp.MethodPatch, "/profile", token, map[string]string{
		"password":         "rotated1",
		"current_password": service.SeedEmployeePassword,
	})
	require.Equal(t, nethttp.StatusOK, status, body)
	srv.login(t, service.SeedEmployeeEmail, "rotated1")
}

func TestRoutes_ManageUpdateRejectsCurrentPasswordField(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, service.SeedAdminEmail, service.SeedAdminPassword)
	snap, err := srv.store.Load(context.Background())
	require.NoError(t, err)
	emp, ok := repository.UserCollection(snap.Users).GetByEmail(service.SeedEmployeeEmail)
	require.True(t, ok)

	status, body := srv.do(t, nethttp.MethodPatch, "/users/"+emp.ID, token, map[string]string{"current_password": "x"})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}
