// Package protocol checks a component's advertised protocol revision for
// compatibility with the fixed revision this host speaks.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// normalize turns a date-shaped revision like "25.06.18" into the
// zero-stripped form semver requires ("25.6.18"); semver forbids leading
// zeros in numeric identifiers.
func normalize(revision string) (string, error) {
	parts := strings.Split(revision, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("protocol: %q is not in MAJOR.MINOR.PATCH form", revision)
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("protocol: %q has non-numeric segment %q", revision, p)
		}
		out[i] = strconv.Itoa(n)
	}
	return strings.Join(out, "."), nil
}

// Compatible reports whether advertised shares host's major revision.
// A revision that doesn't parse as MAJOR.MINOR.PATCH is reported
// incompatible alongside the parse error, not treated as fatal-unknown;
// callers decide how to react.
func Compatible(host, advertised string) (bool, error) {
	hostNorm, err := normalize(host)
	if err != nil {
		return false, err
	}
	advNorm, err := normalize(advertised)
	if err != nil {
		return false, err
	}

	hostVersion, err := semver.NewVersion(hostNorm)
	if err != nil {
		return false, err
	}
	constraint, err := semver.NewConstraint(fmt.Sprintf("^%d.0.0", hostVersion.Major()))
	if err != nil {
		return false, err
	}
	advVersion, err := semver.NewVersion(advNorm)
	if err != nil {
		return false, err
	}
	return constraint.Check(advVersion), nil
}
