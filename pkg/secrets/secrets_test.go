package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostReadUnavailableWithoutStore(t *testing.T) {
	_, errStr := HostRead(context.Background(), nil, &TenantScope{Tenant: "acme"}, "api-key")
	require.Equal(t, "secrets-unavailable:no secrets store configured", errStr)
}

func TestHostReadMissingTenantCtx(t *testing.T) {
	store, err := NewInMemoryLocalStore()
	require.NoError(t, err)

	_, errStr := HostRead(context.Background(), store, nil, "api-key")
	require.Equal(t, "missing-tenant-ctx:tenant context is required to access secrets", errStr)
}

func TestHostReadBackendErrorIsWrapped(t *testing.T) {
	store, err := NewInMemoryLocalStore()
	require.NoError(t, err)

	_, errStr := HostRead(context.Background(), store, &TenantScope{Tenant: "acme"}, "missing-key")
	require.Equal(t, "secrets-error:"+ErrNotFound.Error(), errStr)
}

func TestLocalStoreWriteReadRoundTrip(t *testing.T) {
	store, err := NewInMemoryLocalStore()
	require.NoError(t, err)

	scope := TenantScope{Env: "prod", Tenant: "acme", Team: "payments"}
	errStr := HostWrite(context.Background(), store, &scope, "api-key", []byte("s3cr3t"))
	require.Empty(t, errStr)

	value, errStr := HostRead(context.Background(), store, &scope, "api-key")
	require.Empty(t, errStr)
	require.Equal(t, []byte("s3cr3t"), value)
}

func TestLocalStoreScopeIsolation(t *testing.T) {
	store, err := NewInMemoryLocalStore()
	require.NoError(t, err)

	a := TenantScope{Tenant: "acme"}
	b := TenantScope{Tenant: "globex"}
	require.NoError(t, store.Write(context.Background(), a, "api-key", []byte("alpha")))

	_, err = store.Read(context.Background(), b, "api-key")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDelete(t *testing.T) {
	store, err := NewInMemoryLocalStore()
	require.NoError(t, err)

	scope := TenantScope{Tenant: "acme"}
	require.NoError(t, store.Write(context.Background(), scope, "api-key", []byte("v")))
	require.NoError(t, store.Delete(context.Background(), scope, "api-key"))

	_, err = store.Read(context.Background(), scope, "api-key")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKeyringRotationKeepsOldCiphertextReadable(t *testing.T) {
	kr, err := NewInMemoryKeyring()
	require.NoError(t, err)

	sealed, err := kr.Seal([]byte("before-rotation"))
	require.NoError(t, err)

	_, err = kr.Rotate()
	require.NoError(t, err)

	opened, err := kr.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "before-rotation", string(opened))

	sealedAfter, err := kr.Seal([]byte("after-rotation"))
	require.NoError(t, err)
	require.Contains(t, sealedAfter, "v2:")
}

func TestTenantScopeIsZero(t *testing.T) {
	require.True(t, TenantScope{}.IsZero())
	require.False(t, TenantScope{Tenant: "acme"}.IsZero())
}
