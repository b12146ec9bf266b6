package artifacts

import (
	"encoding/json"
	"os"
)

// provenanceSidecar is an optional "{id}.wasm.provenance.json" file next to
// an artifact, carrying the digest/signer metadata a backing has no other
// way to surface (a plain byte stream has neither).
type provenanceSidecar struct {
	Digest string `json:"digest,omitempty"`
	Signer string `json:"signer,omitempty"`
}

func readProvenanceSidecar(artifactPath string) (provenanceSidecar, bool) {
	data, err := os.ReadFile(artifactPath + ".provenance.json")
	if err != nil {
		return provenanceSidecar{}, false
	}
	var p provenanceSidecar
	if err := json.Unmarshal(data, &p); err != nil {
		return provenanceSidecar{}, false
	}
	return p, true
}
