package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// CanonicalDigest computes the SHA-256 hex digest of v's RFC 8785 (JCS)
// canonical JSON form, so two differently-ordered encodings of the same
// object hash identically. Nothing in this module calls it outside its
// tests; the Verifier hashes artifact bytes with DigestBytes.
func CanonicalDigest(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypto: marshal for canonicalization: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("crypto: jcs transform: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// DigestBytes computes the SHA-256 hex digest of raw bytes, lower-case, as
// required when comparing against a required_digests entry.
func DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
