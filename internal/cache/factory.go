package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/textsense/internal/model"
)

// New creates the cache selected by configuration
func New(cfg model.CacheConfig) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "lru", "memory":
		return NewLRU(cfg.MaxEntries, cfg.TTL), nil

	case "layered", "disk":
		dir := cfg.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("find home directory: %w", err)
			}
			dir = filepath.Join(home, ".textsense", "cache")
		}
		return NewLayeredCache(cfg.MaxEntries, cfg.TTL, dir, cfg.TTL), nil

	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)

	case "none", "off":
		return Nop{}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: lru, layered, redis, none)", cfg.Backend)
	}
}
