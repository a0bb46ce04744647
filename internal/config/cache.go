package config

import "time"

// CacheConfig defines settings for the todo list cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled and every list request reaches the database.  TTL bounds how
// long a cached list may be served; writes by the same user evict it
// earlier.  Prefix namespaces the keys and MaxBodyBytes caps the size of a
// cached response.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "todos"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1048576),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 30 * time.Second
    }
    return cfg
}
