package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MCP_STORE_KIND", "MCP_STORE_ROOT", "ARTIFACT_S3_BUCKET", "ARTIFACT_GCS_BUCKET"} {
		t.Setenv(k, "")
	}
}

func TestNewStoreFromEnv_DefaultsToDir(t *testing.T) {
	clearStoreEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("MCP_STORE_ROOT", tmpDir)

	store, err := NewStoreFromEnv(context.Background())
	require.NoError(t, err)

	fs, ok := store.(*FileStore)
	require.True(t, ok, "expected *FileStore, got %T", store)
	require.Equal(t, tmpDir, fs.root)
}

func TestNewStoreFromEnv_S3MissingBucket(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("MCP_STORE_KIND", "s3")

	_, err := NewStoreFromEnv(context.Background())
	require.ErrorContains(t, err, "ARTIFACT_S3_BUCKET is required")
}

func TestNewStoreFromEnv_UnsupportedKind(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("MCP_STORE_KIND", "azure")

	_, err := NewStoreFromEnv(context.Background())
	require.ErrorContains(t, err, "unsupported store kind")
}

func TestFileStore_FetchRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	data := []byte("\x00asm\x01\x00\x00\x00")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "echo.wasm"), data, 0o644))

	artifact, err := store.Fetch(context.Background(), "echo")
	require.NoError(t, err)
	require.Equal(t, data, artifact.Bytes)
	require.Contains(t, artifact.Provenance.OriginURI, "echo.wasm")
}

func TestFileStore_FetchNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStore_FetchRejectsEscapingID(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "../../etc/passwd")
	require.ErrorContains(t, err, "escapes root")
}

func TestFileStore_FetchRejectsAbsoluteID(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "/etc/passwd")
	require.ErrorContains(t, err, "absolute component id")
}

func TestFileStore_FetchReadsProvenanceSidecar(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "signed.wasm"), []byte("bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "signed.wasm.provenance.json"),
		[]byte(`{"digest":"abc123","signer":"alice"}`), 0o644))

	artifact, err := store.Fetch(context.Background(), "signed")
	require.NoError(t, err)
	require.Equal(t, "abc123", artifact.Provenance.Digest)
	require.Equal(t, "alice", artifact.Provenance.Signer)
}
