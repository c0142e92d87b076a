package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
	LockLocal   = "local"
	LockRedis   = "redis"
)

type Config struct {
	Port string

	StoreBackend string
	MySQLURL     string
	DBUser       string
	DBPass       string
	DBHost       string
	DBPort       string
	DBName       string

	LockBackend string
	RedisURL    string
	LockTTL     time.Duration
	LockWait    time.Duration

	SyncInterval    time.Duration
	SyncDailyAt     string
	SyncPassTimeout time.Duration
	Location        *time.Location

	CorsOrigins []string
	LogLevel    string
	SeedData    bool
	SinkBuffer  int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_BACKEND", StoreMySQL)
	v.SetDefault("MYSQL_URL", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASS", "")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "hotel_db")
	v.SetDefault("LOCK_BACKEND", LockLocal)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("LOCK_WAIT", "5s")
	v.SetDefault("SYNC_INTERVAL", "1h")
	v.SetDefault("SYNC_DAILY_AT", "02:00")
	v.SetDefault("SYNC_PASS_TIMEOUT", "5m")
	v.SetDefault("HOTEL_TIMEZONE", "UTC")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_DATA", true)
	v.SetDefault("SINK_BUFFER", 256)
}

// Load reads configuration from the environment (after .env, if the caller
// loaded one) on top of the defaults above.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	mysqlURL := strings.TrimSpace(v.GetString("MYSQL_URL"))
	if mysqlURL == "" {
		mysqlURL = strings.TrimSpace(v.GetString("DATABASE_URL"))
	}

	cfg := &Config{
		Port:            strings.TrimSpace(v.GetString("PORT")),
		StoreBackend:    strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		MySQLURL:        mysqlURL,
		DBUser:          v.GetString("DB_USER"),
		DBPass:          v.GetString("DB_PASS"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBName:          v.GetString("DB_NAME"),
		LockBackend:     strings.ToLower(strings.TrimSpace(v.GetString("LOCK_BACKEND"))),
		RedisURL:        v.GetString("REDIS_URL"),
		LockTTL:         v.GetDuration("LOCK_TTL"),
		LockWait:        v.GetDuration("LOCK_WAIT"),
		SyncInterval:    v.GetDuration("SYNC_INTERVAL"),
		SyncDailyAt:     v.GetString("SYNC_DAILY_AT"),
		SyncPassTimeout: v.GetDuration("SYNC_PASS_TIMEOUT"),
		CorsOrigins:     parseCorsOrigins(v.GetString("CORS_ORIGINS")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		SeedData:        v.GetBool("SEED_DATA"),
		SinkBuffer:      v.GetInt("SINK_BUFFER"),
	}

	switch cfg.StoreBackend {
	case StoreMySQL, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	switch cfg.LockBackend {
	case LockLocal, LockRedis:
	default:
		return nil, fmt.Errorf("unknown LOCK_BACKEND %q", cfg.LockBackend)
	}
	if cfg.SyncInterval <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must be positive")
	}

	loc, err := time.LoadLocation(v.GetString("HOTEL_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOTEL_TIMEZONE: %w", err)
	}
	cfg.Location = loc
	return cfg, nil
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
