package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gestaozabele/condominio/internal/util"
)

// Drivers de banco suportados.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port             int
	Database         DatabaseConfig
	RedisURL         string
	JWTAccessTTL     time.Duration
	JWTSecret        string
	AllowOrigins     []string
	RateLimitPublic  RateLimitConfig
	RateLimitAuth    RateLimitConfig
	PublicBaseURL    string
	ApuracaoCacheTTL time.Duration
	Storage          StorageConfig
	MetricsEnabled   bool
	NotifyWebhookURL string
}

// DatabaseConfig escolhe o armazenamento das assembleias.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig descreve onde as atas em PDF são publicadas.
type StorageConfig struct {
	Provider     string
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicDomain string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	if cfg.Database, err = loadDatabase(); err != nil {
		return nil, err
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	if err := util.RequireString(cfg.RedisURL, "REDIS_URL"); err != nil {
		return nil, err
	}

	if cfg.JWTSecret, cfg.JWTAccessTTL, err = loadJWT(); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	if cfg.RateLimitPublic, err = parseRateLimit("RATE_LIMIT_PUBLIC", RateLimitConfig{RequestsPerSecond: 10, Burst: 20}); err != nil {
		return nil, err
	}
	// votação ao vivo gera rajadas de leitura da apuração
	if cfg.RateLimitAuth, err = parseRateLimit("RATE_LIMIT_AUTH", RateLimitConfig{RequestsPerSecond: 10, Burst: 40}); err != nil {
		return nil, err
	}

	cfg.PublicBaseURL = strings.TrimSpace(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"))
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:5173"
	}

	if cfg.ApuracaoCacheTTL, err = parseDurationEnv("APURACAO_CACHE_TTL", 5*time.Second); err != nil {
		return nil, err
	}

	if cfg.Storage, err = loadStorage(); err != nil {
		return nil, err
	}

	if cfg.MetricsEnabled, err = parseBoolEnv("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	cfg.NotifyWebhookURL = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", ""))

	return cfg, nil
}

// LoadDatabase lê apenas a seção de banco, usada pela CLI.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()
	return loadDatabase()
}

// LoadJWT lê segredo e validade dos tokens, usada pela CLI para emitir tokens de desenvolvimento.
func LoadJWT() (string, time.Duration, error) {
	_ = godotenv.Load()
	return loadJWT()
}

func loadJWT() (string, time.Duration, error) {
	secret := strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(secret) < 32 {
		return "", 0, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	ttl, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return "", 0, err
	}
	return secret, ttl, nil
}

func loadDatabase() (DatabaseConfig, error) {
	db := DatabaseConfig{
		Driver: strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DriverPostgres))),
		DSN:    strings.TrimSpace(getEnv("DB_DSN", "")),
	}
	switch db.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return DatabaseConfig{}, errors.New("DB_DRIVER inválido (use postgres ou sqlite)")
	}
	if err := util.RequireString(db.DSN, "DB_DSN"); err != nil {
		return DatabaseConfig{}, err
	}
	return db, nil
}

func loadStorage() (StorageConfig, error) {
	s := StorageConfig{
		Provider:     strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", "noop"))),
		Endpoint:     strings.TrimSpace(getEnv("S3_ENDPOINT", "")),
		Region:       strings.TrimSpace(getEnv("S3_REGION", "")),
		Bucket:       strings.TrimSpace(getEnv("S3_BUCKET", "")),
		AccessKey:    strings.TrimSpace(getEnv("S3_ACCESS_KEY", "")),
		SecretKey:    strings.TrimSpace(getEnv("S3_SECRET_KEY", "")),
		PublicDomain: strings.TrimSpace(getEnv("S3_PUBLIC_DOMAIN", "")),
	}
	switch s.Provider {
	case "", "noop":
		s.Provider = "noop"
	case "s3", "r2":
		if err := util.RequireString(s.Bucket, "S3_BUCKET"); err != nil {
			return StorageConfig{}, err
		}
		if err := util.RequireString(s.Endpoint, "S3_ENDPOINT"); err != nil {
			return StorageConfig{}, err
		}
	default:
		return StorageConfig{}, errors.New("STORAGE_PROVIDER inválido (use noop, s3 ou r2)")
	}
	return s, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}

func parseRateLimit(prefix string, def RateLimitConfig) (RateLimitConfig, error) {
	out := def
	if val := strings.TrimSpace(getEnv(prefix+"_RPS", "")); val != "" {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil || rps <= 0 {
			return RateLimitConfig{}, errors.New(prefix + "_RPS inválido")
		}
		out.RequestsPerSecond = rps
	}
	if val := strings.TrimSpace(getEnv(prefix+"_BURST", "")); val != "" {
		burst, err := strconv.Atoi(val)
		if err != nil || burst <= 0 {
			return RateLimitConfig{}, errors.New(prefix + "_BURST inválido")
		}
		out.Burst = burst
	}
	return out, nil
}
