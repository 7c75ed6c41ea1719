package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	Debug       bool
	HTTPAddr    string
	MetricsAddr string

	StoreDriver    string // mysql | memory
	MySQLDSN       string
	DBPoolSize     int
	DBMaxIdleConns int
	DBConnLifetime time.Duration
	DBQueryTimeout time.Duration
	RequestTimeout time.Duration
	SeedSource     string
	SeedLockTTL    time.Duration
	SeedOnStart    bool
	RedisAddr      string // empty disables the bootstrap lock
	RedisDB        int
	RedisPass      string

	// Pass-through settings for the messaging layer; the catalog ignores them.
	RateLimitPerUser int
	RateLimitGlobal  int
	SessionTimeout   time.Duration
}

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Load reads the environment after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		Debug:       boolEnv("DEBUG"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		StoreDriver:    strings.ToLower(env("STORE_DRIVER", DriverMySQL)),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel_catalog?parseTime=true&charset=utf8mb4&loc=UTC"),
		DBPoolSize:     atoi("DB_POOL_SIZE", 10),
		DBMaxIdleConns: atoi("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime: time.Duration(atoi("DB_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		DBQueryTimeout: time.Duration(atoi("DB_QUERY_TIMEOUT_MS", 5000)) * time.Millisecond,
		RequestTimeout: time.Duration(atoi("HTTP_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		SeedSource:     env("SEED_SOURCE", "data/mock_hotels.json"),
		SeedLockTTL:    time.Duration(atoi("SEED_LOCK_TTL_SECONDS", 60)) * time.Second,
		SeedOnStart:    boolEnv("SEED_ON_START"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),

		RateLimitPerUser: atoi("RATE_LIMIT_PER_USER", 10),
		RateLimitGlobal:  atoi("RATE_LIMIT_GLOBAL", 100),
		SessionTimeout:   time.Duration(atoi("SESSION_TIMEOUT_SECONDS", 1800)) * time.Second,
	}
	if c.StoreDriver != DriverMySQL && c.StoreDriver != DriverMemory {
		log.Warn().Str("driver", c.StoreDriver).Msg("unknown STORE_DRIVER, using mysql")
		c.StoreDriver = DriverMySQL
	}
	if c.StoreDriver == DriverMemory {
		// nothing else can see an in-process store, so seed it on start
		c.SeedOnStart = true
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func boolEnv(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}
