package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key format: {domain}:{entity}:{id}. Keys are shared between the in-memory
// and Redis stores, so the naming stays stable across deployments.

// ProfileKey is the cache key for an extracted user profile. Guest profiles
// must never go through the shared cache, so only durable user ids are
// accepted here.
func ProfileKey(userID string) string {
	return "user:profile:" + userID
}

// CompanyKey is the cache key for company research results.
func CompanyKey(company string) string {
	return "company:info:" + company
}

// JobKey is the cache key for a job posting analyzed from a URL. URLs are
// hashed so key length stays bounded.
func JobKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "job:posting:" + hex.EncodeToString(sum[:12])
}
