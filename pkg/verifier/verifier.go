// Package verifier enforces digest/signer policy on artifact bytes. It
// never consults network or filesystem — every input is already in memory.
package verifier

import (
	"fmt"

	"github.com/greentic-ai-org/greentic-mcp/pkg/artifacts"
	"github.com/greentic-ai-org/greentic-mcp/pkg/crypto"
	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
)

// Policy is the per-deployment verification configuration.
type Policy struct {
	AllowUnverified bool
	RequiredDigests map[string]string // component-id -> required hex digest
	TrustedSigners  []string
}

func (p Policy) signerTrusted(signer string) bool {
	for _, s := range p.TrustedSigners {
		if s == signer {
			return true
		}
	}
	return false
}

// Outcome records why an artifact was accepted.
type Outcome string

const (
	OutcomeTrusted           Outcome = "trusted"
	OutcomeUnverifiedAllowed Outcome = "unverified-allowed"
)

// VerifiedArtifact is a ResolvedArtifact a policy has accepted.
type VerifiedArtifact struct {
	artifacts.ResolvedArtifact
	Outcome Outcome
}

// Verify applies the three-step policy algorithm: required digest match,
// then trusted-signer membership, then allow-unverified fallback.
func Verify(componentID string, resolved artifacts.ResolvedArtifact, policy Policy) (*VerifiedArtifact, *envelope.RuntimeError) {
	digestChecked := false
	if requiredDigest, ok := policy.RequiredDigests[componentID]; ok {
		actual := crypto.DigestBytes(resolved.Bytes)
		if actual != requiredDigest {
			return nil, envelope.NewVerificationError(
				fmt.Sprintf("digest mismatch for %s: required %s, computed %s", componentID, requiredDigest, actual))
		}
		digestChecked = true
	}

	if len(policy.TrustedSigners) > 0 {
		if resolved.Provenance.Signer == "" || !policy.signerTrusted(resolved.Provenance.Signer) {
			return nil, envelope.NewVerificationError(
				fmt.Sprintf("signer %q for %s is not in the trusted signer list", resolved.Provenance.Signer, componentID))
		}
		return &VerifiedArtifact{ResolvedArtifact: resolved, Outcome: OutcomeTrusted}, nil
	}

	if digestChecked {
		return &VerifiedArtifact{ResolvedArtifact: resolved, Outcome: OutcomeTrusted}, nil
	}

	if resolved.Provenance.Digest == "" && resolved.Provenance.Signer == "" {
		if policy.AllowUnverified {
			return &VerifiedArtifact{ResolvedArtifact: resolved, Outcome: OutcomeUnverifiedAllowed}, nil
		}
		return nil, envelope.NewVerificationError(
			fmt.Sprintf("artifact %s carries no digest or signer and allow_unverified is false", componentID))
	}

	// Policy names neither a required digest nor a trusted-signer list, but
	// the store still attached provenance; accept it on the strength of
	// that provenance.
	return &VerifiedArtifact{ResolvedArtifact: resolved, Outcome: OutcomeTrusted}, nil
}
