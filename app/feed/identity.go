package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// StableID derives the persistent feed identifier for a source URL.
//
// Version 1: hex encoding of the first 8 bytes of SHA-256 over the
// whitespace-trimmed URL. The same URL always maps to the same id
// across runs and processes, which is what makes feed creation
// idempotent; distinct URLs collide with negligible probability.
func StableID(sourceURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(sourceURL)))
	return hex.EncodeToString(sum[:8])
}
