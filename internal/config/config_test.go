package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "postgres://localhost/condominio")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 5*time.Second, cfg.ApuracaoCacheTTL)
	assert.Equal(t, "http://localhost:5173", cfg.PublicBaseURL)
	assert.Equal(t, "noop", cfg.Storage.Provider)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, RateLimitConfig{RequestsPerSecond: 10, Burst: 40}, cfg.RateLimitAuth)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ALLOW_ORIGINS", "https://a.com, ,https://b.com")
	t.Setenv("APURACAO_CACHE_TTL", "2s")
	t.Setenv("RATE_LIMIT_PUBLIC_RPS", "2.5")
	t.Setenv("RATE_LIMIT_PUBLIC_BURST", "5")
	t.Setenv("STORAGE_PROVIDER", "r2")
	t.Setenv("S3_ENDPOINT", "https://conta.r2.cloudflarestorage.com")
	t.Setenv("S3_BUCKET", "atas")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("NOTIFY_WEBHOOK_URL", " https://hooks.slack.com/services/T/B/X ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowOrigins)
	assert.Equal(t, 2*time.Second, cfg.ApuracaoCacheTTL)
	assert.Equal(t, RateLimitConfig{RequestsPerSecond: 2.5, Burst: 5}, cfg.RateLimitPublic)
	assert.Equal(t, "r2", cfg.Storage.Provider)
	assert.Equal(t, "atas", cfg.Storage.Bucket)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", cfg.NotifyWebhookURL)
}

func TestLoadJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "curto")
	_, _, err := LoadJWT()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("JWT_ACCESS_TTL", "1h")
	secret, ttl, err := LoadJWT()
	require.NoError(t, err)
	assert.Len(t, secret, 32)
	assert.Equal(t, time.Hour, ttl)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		key, value, msg string
	}{
		"port":    {"PORT", "abc", "PORT inválida"},
		"driver":  {"DB_DRIVER", "mysql", "DB_DRIVER inválido (use postgres ou sqlite)"},
		"dsn":     {"DB_DSN", " ", "DB_DSN obrigatório"},
		"redis":   {"REDIS_URL", "", "REDIS_URL obrigatório"},
		"secret":  {"JWT_SECRET", "curto", "JWT_SECRET deve ter pelo menos 32 caracteres"},
		"ttl":     {"APURACAO_CACHE_TTL", "5", "APURACAO_CACHE_TTL inválido"},
		"storage": {"STORAGE_PROVIDER", "ftp", "STORAGE_PROVIDER inválido (use noop, s3 ou r2)"},
		"bucket":  {"STORAGE_PROVIDER", "s3", "S3_BUCKET obrigatório"},
		"metrics": {"METRICS_ENABLED", "talvez", "METRICS_ENABLED inválido"},
		"burst":   {"RATE_LIMIT_AUTH_BURST", "0", "RATE_LIMIT_AUTH_BURST inválido"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:condominio.db")

	db, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, DatabaseConfig{Driver: DriverSQLite, DSN: "file:condominio.db"}, db)
}
