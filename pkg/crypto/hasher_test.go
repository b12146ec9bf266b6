package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalDigestStableUnderKeyOrder(t *testing.T) {
	a := map[string]interface{}{"name": "echo", "version": "1.0.0"}
	b := map[string]interface{}{"version": "1.0.0", "name": "echo"}

	da, err := CanonicalDigest(a)
	require.NoError(t, err)
	db, err := CanonicalDigest(b)
	require.NoError(t, err)
	require.Equal(t, da, db)
}

func TestDigestBytesMatchesKnownSHA256(t *testing.T) {
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		DigestBytes(nil))
}
