package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt builds error messages for missing or malformed values
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalizes driver names
	"time"    // time parses duration settings

	"github.com/joho/godotenv" // godotenv loads a local .env file into the process environment
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for costs and
// durations for timeouts.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBDriver       string        // sqlite or mysql
	DBPath         string        // sqlite database file
	DBUser         string        // database username (mysql)
	DBPass         string        // database password (optional)
	DBHost         string        // database host address (mysql)
	DBPort         string        // database port number (mysql)
	DBName         string        // database name (mysql)
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	BcryptCost     int           // bcrypt cost for password hashing
	PublicDir      string        // directory served for non-API paths
	RequestTimeout time.Duration // upper bound for a single storage call
	LogLevel       string        // debug, info, warn, error or off
}

// Load reads configuration values from environment variables and returns a
// Config.  A missing or malformed required variable causes the program to
// exit with a fatal log message.
func Load() Config {
	// A .env file is optional; real deployments set the variables directly.
	_ = godotenv.Load()
	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without exiting,
// so callers (and tests) can inspect the error.
func FromEnv() (Config, error) {
	var e envReader
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "3000"),
		DBDriver:       strings.ToLower(envStr("DB_DRIVER", DriverSQLite)),
		DBPath:         envStr("DB_PATH", "todos.db"),
		DBPass:         os.Getenv("DB_PASS"),
		JWTSecret:      e.must("JWT_SECRET"),
		AccessTTLMin:   e.intOr("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:     e.intOr("BCRYPT_COST", 10),
		PublicDir:      envStr("PUBLIC_DIR", "public"),
		RequestTimeout: envDur("REQUEST_TIMEOUT", 5*time.Second),
		LogLevel:       strings.ToLower(envStr("LOG_LEVEL", "info")),
	}
	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		cfg.DBUser = e.must("DB_USER")
		cfg.DBHost = e.must("DB_HOST")
		cfg.DBPort = e.must("DB_PORT")
		cfg.DBName = e.must("DB_NAME")
	default:
		e.fail(fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}
	if cfg.AccessTTLMin <= 0 {
		e.fail(fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive, got %d", cfg.AccessTTLMin))
	}
	if e.err != nil {
		return Config{}, e.err
	}
	return cfg, nil
}

// AccessTTL returns the token lifetime as a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// envReader records the first error encountered while reading required
// variables so FromEnv can report it once.
type envReader struct{ err error }

func (r *envReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// must retrieves the value of a required environment variable.
func (r *envReader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.fail(fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

// intOr is like envInt but records malformed values instead of silently
// falling back.
func (r *envReader) intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(fmt.Errorf("invalid int for %s: %q", key, s))
		return def
	}
	return n
}
