package crypto

import (
	"crypto/ed25519"
	"fmt"
)

// Verifier checks a raw Ed25519 signature against a fixed public key.
type Verifier interface {
	Verify(message []byte, signature []byte) bool
}

// Ed25519Verifier implements Verifier against a single public key.
type Ed25519Verifier struct {
	PublicKey ed25519.PublicKey
}

// NewEd25519Verifier builds a Verifier from raw public key bytes.
func NewEd25519Verifier(pubKeyBytes []byte) (*Ed25519Verifier, error) {
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: %d", len(pubKeyBytes))
	}
	return &Ed25519Verifier{PublicKey: ed25519.PublicKey(pubKeyBytes)}, nil
}

func (v *Ed25519Verifier) Verify(message []byte, signature []byte) bool {
	return ed25519.Verify(v.PublicKey, message, signature)
}

// SignerRegistry maps a signer-id to its known public key (hex-encoded),
// used to recognize a "trusted signer" in artifact provenance.
type SignerRegistry map[string]string

// IsTrusted reports whether signerID is a member of the allow-list. It does
// not check any signature; VerifySignature does that.
func (r SignerRegistry) IsTrusted(signerID string) bool {
	_, ok := r[signerID]
	return ok
}

// VerifySignature checks that message was signed by signerID's registered key.
func (r SignerRegistry) VerifySignature(signerID string, message []byte, sigHex string) (bool, error) {
	pubKeyHex, ok := r[signerID]
	if !ok {
		return false, fmt.Errorf("crypto: unknown signer %q", signerID)
	}
	return Verify(pubKeyHex, sigHex, message)
}
