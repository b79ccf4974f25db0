package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeQuery trims and case-folds query text so near-duplicate
// queries share a cache/log key.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// QueryHash derives the deduplication key for a (product, query) pair.
// Normalization happens before hashing.
func QueryHash(product, query string) string {
	combined := NormalizeQuery(query) + ":" + product
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}
