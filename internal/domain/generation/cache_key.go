package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeQuery canonicalizes a query for cache keying: lowercase, collapsed
// whitespace, trailing punctuation stripped.
func NormalizeQuery(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return strings.TrimRight(normalized, ".,!? ")
}

// CacheKey derives the stable cache key for (user, query, conversation).
// A write race on the same key produces equivalent values, so writers never
// coordinate.
func CacheKey(userID, query, conversationID string) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(NormalizeQuery(query)))
	h.Write([]byte{0})
	h.Write([]byte(conversationID))
	return hex.EncodeToString(h.Sum(nil))
}
