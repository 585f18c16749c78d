package normalize

import (
	"crypto/sha256"
	"fmt"
)

// DocumentHash computes the hex-encoded SHA-256 of raw document bytes,
// used as a stable identity for deduplicating source documents.
func DocumentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}
