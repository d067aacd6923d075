package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://auth.example.test"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			LogLevel:    "error",
			APIPrefix:   "/api/v1",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Database: config.DatabaseConfig{URL: testutils.InMemoryDatabaseURL},
		Auth: config.AuthConfig{
			BaseURL:                 testBaseURL,
			JWKSPath:                "/.well-known/jwks.json",
			JWKSCacheTTLSeconds:     300,
			JWKSMaxKeys:             10,
			JWKSFetchTimeoutSeconds: 5,
			JWKSMinRefetchSeconds:   5,
			Algorithms:              []string{"RS256"},
		},
	}
}

type testServer struct {
	handler http.Handler
	signer  *testutils.TokenSigner
	keys    *testutils.StaticKeySource
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	signer := testutils.NewTokenSigner(t, testutils.TestKeyID)
	keys := testutils.NewStaticKeySource(testutils.KeySet(t, signer))

	app, err := newApplication(testConfig(), testutils.DiscardLogger(), testutils.NewTestDB(t), sqlstore.DialectSQLite, keys)
	require.NoError(t, err)

	return &testServer{handler: app.setupRouter(), signer: signer, keys: keys}
}

func (s *testServer) token(t *testing.T, subject string) string {
	claims := testutils.Claims(subject, time.Now())
	claims["iss"] = testBaseURL
	claims["aud"] = testBaseURL
	return s.signer.Sign(t, claims)
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody[api.HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = s.do(t, http.MethodGet, "/health/db", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[api.DBHealthResponse](t, rec).DatabaseConnected)
}

func TestServer_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	other := testutils.NewTokenSigner(t, "unknown-key")
	forged := other.Sign(t, testutils.Claims("mallory", time.Now()))
	rec = s.do(t, http.MethodGet, "/api/v1/tasks", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_TaskFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.token(t, "alice")
	bob := s.token(t, "bob")

	rec := s.do(t, http.MethodGet, "/api/v1/users/me", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeBody[api.UserResponse](t, rec)
	assert.Equal(t, "alice", me.ID)
	assert.Equal(t, "alice@example.com", me.Email)

	rec = s.do(t, http.MethodPost, "/api/v1/projects", alice, map[string]any{"name": "Home"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decodeBody[api.ProjectResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/tags", alice, map[string]any{"label": "urgent", "color": "#FF0000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decodeBody[api.TagResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/tasks", alice, map[string]any{
		"title":      "Fix the sink",
		"priority":   1,
		"project_id": project.ID,
		"tag_ids":    []uuid.UUID{tag.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decodeBody[api.TaskResponse](t, rec)
	assert.Equal(t, []uuid.UUID{tag.ID}, task.TagIDs)

	rec = s.do(t, http.MethodGet, "/api/v1/tasks?tag_ids="+tag.ID.String(), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decodeBody[api.ListResponse[api.TaskResponse]](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, task.ID, list.Items[0].ID)

	rec = s.do(t, http.MethodPatch, "/api/v1/tasks/"+task.ID.String()+"/complete", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[api.TaskToggleResponse](t, rec).IsCompleted)

	rec = s.do(t, http.MethodGet, "/api/v1/projects/"+project.ID.String(), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	counted := decodeBody[api.ProjectResponse](t, rec)
	assert.Equal(t, 1, counted.TaskCount)
	assert.Equal(t, 1, counted.CompletedTaskCount)

	// Another user neither sees nor reaches alice's data.
	rec = s.do(t, http.MethodGet, "/api/v1/tasks/"+task.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/tasks", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decodeBody[api.ListResponse[api.TaskResponse]](t, rec).Total)

	rec = s.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/tasks/"+task.ID.String(), alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_KeySetOutage(t *testing.T) {
	s := newTestServer(t)
	s.keys.SetError(assert.AnError)

	rec := s.do(t, http.MethodGet, "/api/v1/tasks", s.token(t, "alice"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")

	migrate, _, err := root.Find([]string{"migrate", "status"})
	require.NoError(t, err)
	assert.Equal(t, "status", migrate.Name())
}
