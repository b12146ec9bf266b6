package mcpadapter

import "encoding/json"

// Manifest is the adapter's static self-description, returned verbatim
// by get-manifest().
type Manifest struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Protocol   string   `json:"protocol"`
	Operations []string `json:"operations"`
}

// GetManifest renders the adapter manifest as a JSON string.
func GetManifest(name, version, protocol string) (string, error) {
	m := Manifest{Name: name, Version: version, Protocol: protocol, Operations: []string{"list", "call"}}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OnStart and OnStop are the adapter's lifecycle hooks. Both are no-ops;
// they exist so cmd/adapter has something concrete to export.
func OnStart() error { return nil }
func OnStop() error  { return nil }
