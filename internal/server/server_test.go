package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/careerhub/internal/bootstrap"
	"anoa.com/careerhub/internal/config"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/internal/testutil"
	"anoa.com/careerhub/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	rules := scoring.DefaultRules()
	require.NoError(t, bootstrap.SeedBadges(context.Background(), db, rules))

	cfg := &config.Config{
		AllowedOrigins: "http://localhost:3000, https://careerhub.example.com",
		VoteCountTTL:   time.Hour,
	}
	srv, err := NewServer(cfg, db, nil, storage.NewDisabledStorage(), rules)
	require.NoError(t, err)
	return srv
}

func request(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_UserAndDashboardRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	w := request(h, http.MethodPost, "/api/users", map[string]any{
		"email": "dina@example.com",
		"name":  "Dina",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.Data.ID)

	w = request(h, http.MethodGet, "/api/users/"+created.Data.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(h, http.MethodGet, "/api/users/"+created.Data.ID.String()+"/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(h, http.MethodGet, "/api/users/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(h, http.MethodGet, "/api/badges", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RejectsBadPathIDs(t *testing.T) {
	h := newTestServer(t).Handler()

	w := request(h, http.MethodGet, "/api/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/votes", nil)
	req.Header.Set("Origin", "https://careerhub.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://careerhub.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin(allowedOrigins("http://localhost:3000,,https://a.example.com "))

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"https://a.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(req), tt.origin)
	}
}

func TestAllowedOrigins_Default(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000"}, allowedOrigins(" , "))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_QuestionLifecycleRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	w := request(h, http.MethodPost, "/api/users", map[string]any{"email": "sinta@example.com", "name": "Sinta"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	authorID := user.Data.ID.String()

	w = request(h, http.MethodPut, "/api/users/"+authorID, map[string]any{"jobTitle": "SRE"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(h, http.MethodPost, "/api/questions", map[string]any{"authorId": authorID, "title": "Draft"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	questionPath := "/api/questions/" + created.Data.ID.String()

	w = request(h, http.MethodGet, "/api/users/"+authorID+"/questions?status=draft", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.Data.ID.String())

	w = request(h, http.MethodGet, "/api/users/"+authorID+"/questions?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(h, http.MethodPut, questionPath, map[string]any{"authorId": authorID, "content": "Body", "tags": []string{"go"}})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(h, http.MethodDelete, questionPath, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(h, http.MethodDelete, questionPath+"?authorId="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(h, http.MethodDelete, questionPath+"?authorId="+authorID, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(h, http.MethodGet, questionPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
