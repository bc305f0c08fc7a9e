package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Cache defines the interface for result memoization. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Sizer is implemented by caches that can report their entry count
type Sizer interface {
	Len() int
}

// Kinds of cached values
const (
	KindClassify = "classify"
	KindFeatures = "features"
)

// Key generates a cache key for a value of the given kind computed from text.
// Equal (kind, param, text) triples always map to the same key.
func Key(kind string, param int, text string) string {
	hash := sha256.Sum256([]byte(text))
	return "textsense:v1:" + kind + ":" + strconv.Itoa(param) + ":" + hex.EncodeToString(hash[:])
}

// Nop is a cache that never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
func (Nop) Len() int                                { return 0 }
