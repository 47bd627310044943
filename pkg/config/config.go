package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Gateway drivers understood by GatewayConfig.Driver.
const (
	GatewayDriverPostgres  = "postgres"
	GatewayDriverPostgREST = "postgrest"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Gateway  GatewayConfig
	Cache    CacheConfig
	Forms    FormsConfig
	Print    PrintConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	Namespace string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GatewayConfig selects how the external data service is reached.
type GatewayConfig struct {
	Driver string

	// REST/RPC endpoint settings, used when Driver is "postgrest".
	URL       string
	APIKey    string
	JWTSecret string
	JWTRole   string
	JWTTTL    time.Duration
	Timeout   time.Duration
}

// CacheConfig governs Redis caching of catalogs and the student list.
type CacheConfig struct {
	Enabled    bool
	CatalogTTL time.Duration
	ListTTL    time.Duration
}

// FormsConfig controls server-side form page sessions.
type FormsConfig struct {
	SessionTTL time.Duration
}

// PrintConfig carries presentation values for printable documents.
type PrintConfig struct {
	InstitutionName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		Namespace: v.GetString("REDIS_NAMESPACE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Gateway = GatewayConfig{
		Driver:    strings.ToLower(strings.TrimSpace(v.GetString("GATEWAY_DRIVER"))),
		URL:       strings.TrimRight(v.GetString("POSTGREST_URL"), "/"),
		APIKey:    v.GetString("POSTGREST_API_KEY"),
		JWTSecret: v.GetString("POSTGREST_JWT_SECRET"),
		JWTRole:   v.GetString("POSTGREST_JWT_ROLE"),
		JWTTTL:    parseDuration(v.GetString("POSTGREST_JWT_TTL"), 5*time.Minute),
		Timeout:   parseDuration(v.GetString("POSTGREST_TIMEOUT"), 0),
	}
	if cfg.Gateway.Driver == "" {
		cfg.Gateway.Driver = GatewayDriverPostgres
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		CatalogTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), 30*time.Minute),
		ListTTL:    parseDuration(v.GetString("LIST_CACHE_TTL"), time.Minute),
	}

	cfg.Forms = FormsConfig{
		SessionTTL: parseDuration(v.GetString("FORM_SESSION_TTL"), 30*time.Minute),
	}

	cfg.Print = PrintConfig{
		InstitutionName: v.GetString("PRINT_INSTITUTION_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ficha_deportiva")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_NAMESPACE", "athlete-records")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GATEWAY_DRIVER", GatewayDriverPostgres)
	v.SetDefault("POSTGREST_URL", "http://localhost:3000")
	v.SetDefault("POSTGREST_API_KEY", "")
	v.SetDefault("POSTGREST_JWT_SECRET", "")
	v.SetDefault("POSTGREST_JWT_ROLE", "authenticated")
	v.SetDefault("POSTGREST_JWT_TTL", "5m")
	v.SetDefault("POSTGREST_TIMEOUT", "0s")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CATALOG_CACHE_TTL", "30m")
	v.SetDefault("LIST_CACHE_TTL", "1m")

	v.SetDefault("FORM_SESSION_TTL", "30m")

	v.SetDefault("PRINT_INSTITUTION_NAME", "Ficha Deportiva ESPOCH")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
