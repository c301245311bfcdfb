package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/esports-arena/handlers"
	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/models"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/signaling"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	hub := signaling.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := chi.NewRouter()
	SetupRoutes(r, Options{JWTSecret: testSecret, AllowedOrigins: []string{"https://arena.gg"}}, Handlers{
		Health:    handlers.NewHealthHandler(okPinger{}),
		WebSocket: handlers.NewWebSocketHandler(hub, []string{"https://arena.gg"}, 8),
		Relay:     handlers.NewRelayHandler(hub),
		ICE:       handlers.NewICEHandler(services.NewICEService(services.ICEServiceConfig{STUNURLs: []string{"stun:stun.example.com"}})),
	})
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"role":    role,
		"name":    "tester",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h http.Handler, method, target, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_HealthzIsPublic(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_APIRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/api/v1/streams", "/api/v1/webrtc/ice-servers", "/ws"} {
		rec := do(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	rec := do(t, router, http.MethodGet, "/api/v1/streams", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_AuthenticatedRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/rooms/lobby/members", token(t, middleware.RolePlayer))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Room    string              `json:"room"`
		Members []models.RoomMember `json:"members"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "lobby", body.Room)
	assert.Empty(t, body.Members)

	rec = do(t, router, http.MethodGet, "/api/v1/streams?token="+token(t, middleware.RolePlayer), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_AdminOnly(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodDelete, "/api/v1/rooms/lobby/messages/1", token(t, middleware.RolePlayer))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/rooms/lobby/archive", token(t, middleware.RoleOrganizer))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/admin/dashboard", token(t, middleware.RolePlayer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_NotFoundIsJSON(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "could not be found")
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/streams", nil)
	req.Header.Set("Origin", "https://arena.gg")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "https://arena.gg", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAllowsAnyOrigin(t *testing.T) {
	assert.True(t, allowsAnyOrigin([]string{"https://a", "*"}))
	assert.False(t, allowsAnyOrigin([]string{"https://a"}))
	assert.False(t, allowsAnyOrigin(nil))
}
