package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     string

	CORSAllowedOrigins []string

	RedisURL      string
	StatsCacheTTL time.Duration

	RiotAPIKey     string
	RiotRegion     string
	RiotRatePerSec int
	HenrikAPIKey   string
	HenrikBaseURL  string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
	R2Endpoint        string

	STUNURLs          []string
	TURNURLs          []string
	TURNSecret        string
	TURNCredentialTTL time.Duration

	ChatRetention time.Duration
	WSSendBuffer  int
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LogLevel:           strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		CORSAllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RedisURL:           os.Getenv("REDIS_URL"),
		RiotAPIKey:         os.Getenv("RIOT_API_KEY"),
		RiotRegion:         getEnvOrDefault("RIOT_REGION", "americas"),
		HenrikAPIKey:       os.Getenv("HENRIK_API_KEY"),
		HenrikBaseURL:      getEnvOrDefault("HENRIK_BASE_URL", "https://api.henrikdev.xyz"),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
		R2Endpoint:         os.Getenv("R2_ENDPOINT"),
		STUNURLs:           listEnv("STUN_URLS", []string{"stun:stun.l.google.com:19302"}),
		TURNURLs:           listEnv("TURN_URLS", nil),
		TURNSecret:         os.Getenv("TURN_SECRET"),
	}

	if _, ok := slogLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}

	if cfg.StatsCacheTTL, err = durationEnv("STATS_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.TURNCredentialTTL, err = durationEnv("TURN_CREDENTIAL_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ChatRetention, err = durationEnv("CHAT_RETENTION", 0); err != nil {
		return nil, err
	}
	if cfg.RiotRatePerSec, err = intEnv("RIOT_RATE_PER_SEC", 20); err != nil {
		return nil, err
	}
	if cfg.RiotRatePerSec <= 0 {
		return nil, fmt.Errorf("RIOT_RATE_PER_SEC must be positive, got %d", cfg.RiotRatePerSec)
	}
	if cfg.WSSendBuffer, err = intEnv("WS_SEND_BUFFER", 256); err != nil {
		return nil, err
	}
	if cfg.WSSendBuffer <= 0 {
		return nil, fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", cfg.WSSendBuffer)
	}

	if err := cfg.validateR2(); err != nil {
		return nil, err
	}
	if len(cfg.TURNURLs) > 0 && cfg.TURNSecret == "" {
		return nil, fmt.Errorf("TURN_SECRET must be set when TURN_URLS is configured")
	}

	return cfg, nil
}

// ArchiveEnabled сообщает, настроено ли хранилище архивов чата.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != ""
}

// SlogLevel переводит LOG_LEVEL в уровень slog.
func (c *Config) SlogLevel() slog.Level {
	return slogLevels[c.LogLevel]
}

var slogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// validateR2: либо все R2_* пусты (архив выключен), либо заданы все.
func (c *Config) validateR2() error {
	values := map[string]string{
		"R2_ACCOUNT_ID":        c.R2AccountID,
		"R2_ACCESS_KEY_ID":     c.R2AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.R2SecretAccessKey,
		"R2_BUCKET_NAME":       c.R2BucketName,
		"R2_PUBLIC_BASE_URL":   c.R2PublicBaseURL,
	}
	var set, missing []string
	for name, v := range values {
		if v == "" {
			missing = append(missing, name)
		} else {
			set = append(set, name)
		}
	}
	if len(set) > 0 && len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("incomplete Cloudflare R2 configuration: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, raw)
	}
	return d, nil
}

func listEnv(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
