package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/arena?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 12*time.Hour, cfg.TURNCredentialTTL)
	assert.Equal(t, time.Duration(0), cfg.ChatRetention)
	assert.Equal(t, "americas", cfg.RiotRegion)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.STUNURLs)
	assert.Equal(t, 256, cfg.WSSendBuffer)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/arena")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = Load()
	require.ErrorContains(t, err, "JWT_SECRET_KEY")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]struct {
		key, value, want string
	}{
		"port range":   {"SERVER_PORT", "70000", "SERVER_PORT"},
		"port format":  {"SERVER_PORT", "abc", "SERVER_PORT"},
		"log level":    {"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		"ttl":          {"STATS_CACHE_TTL", "soon", "STATS_CACHE_TTL"},
		"negative ttl": {"CHAT_RETENTION", "-1h", "CHAT_RETENTION"},
		"rate":         {"RIOT_RATE_PER_SEC", "0", "RIOT_RATE_PER_SEC"},
		"buffer":       {"WS_SEND_BUFFER", "-3", "WS_SEND_BUFFER"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoad_PartialR2IsRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("R2_ACCOUNT_ID", "acc")
	t.Setenv("R2_BUCKET_NAME", "bucket")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R2_ACCESS_KEY_ID, R2_PUBLIC_BASE_URL, R2_SECRET_ACCESS_KEY")
}

func TestLoad_FullR2AndTURN(t *testing.T) {
	setRequired(t)
	t.Setenv("R2_ACCOUNT_ID", "acc")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "bucket")
	t.Setenv("R2_PUBLIC_BASE_URL", "https://cdn.example.com")
	t.Setenv("TURN_URLS", "turn:turn.example.com:3478?transport=udp, turns:turn.example.com:5349")
	t.Setenv("TURN_SECRET", "turnsecret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://arena.gg,https://admin.arena.gg")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ArchiveEnabled())
	assert.Equal(t, []string{"turn:turn.example.com:3478?transport=udp", "turns:turn.example.com:5349"}, cfg.TURNURLs)
	assert.Equal(t, []string{"https://arena.gg", "https://admin.arena.gg"}, cfg.CORSAllowedOrigins)
}

func TestLoad_TURNWithoutSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("TURN_URLS", "turn:turn.example.com:3478")

	_, err := Load()
	require.ErrorContains(t, err, "TURN_SECRET")
}
