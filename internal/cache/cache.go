package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// DocumentKey generates a cache key for a fetched document
func DocumentKey(source string) string {
	hash := sha256.Sum256([]byte(source))
	return "clauseguard:doc:v1:" + hex.EncodeToString(hash[:])
}

// ExtractionKey generates a cache key for an extraction run. The key binds
// the document fingerprint to the provider and model so a different model
// never serves stale records.
func ExtractionKey(fingerprint, provider, model string) string {
	hash := sha256.Sum256([]byte(fingerprint + "|" + provider + "|" + model))
	return "clauseguard:extract:v1:" + hex.EncodeToString(hash[:])
}
