package sandbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/greentic-ai-org/greentic-mcp/pkg/secrets"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// KVStore is the capability surface behind runner-host/kv. The specified
// reference implementation is an always-empty, no-op store; the surface
// exists so guests can link against it even when no durable KV backend is
// configured.
type KVStore interface {
	Get(ns, key string) (string, bool)
	Put(ns, key, val string)
}

// NoopKV is the specified no-op KV implementation: get always misses,
// put is discarded.
type NoopKV struct{}

func (NoopKV) Get(ns, key string) (string, bool) { return "", false }
func (NoopKV) Put(ns, key, val string)            {}

// Capabilities bundles everything the Dispatcher wires into a fresh
// linker for one call.
type Capabilities struct {
	HTTPEnabled bool
	KV          KVStore
	Secrets     secrets.Store
	TenantScope *secrets.TenantScope
}

// lazyHTTPClient builds its HTTP client on first use, per the specified
// "client built lazily on first use" rule. buildLinker creates one per
// call, so the client is not shared across calls.
type lazyHTTPClient struct {
	mu     sync.Mutex
	client *http.Client
}

func (l *lazyHTTPClient) get() *http.Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client == nil {
		l.client = &http.Client{Timeout: 30 * time.Second}
	}
	return l.client
}

// buildLinker installs the WASI preview-2-shaped host surfaces into a
// fresh linker for one call: runner-host/http, runner-host/kv, and
// greentic:secrets/secret-store@1.0.0. Shadowing a prior definition of
// the same export is permitted, matching the spec's linker wiring rule.
func buildLinker(ctx context.Context, runtime wazero.Runtime, caps Capabilities) ([]api.Closer, error) {
	var closers []api.Closer
	httpClient := &lazyHTTPClient{}

	httpBuilder := runtime.NewHostModuleBuilder("runner-host/http")
	httpBuilder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, methodPtr, methodLen, urlPtr, urlLen, headersPtr, headersLen, bodyPtr, bodyLen uint32) uint64 {
			result := hostHTTPRequest(ctx, mod, caps, httpClient, methodPtr, methodLen, urlPtr, urlLen, headersPtr, headersLen, bodyPtr, bodyLen)
			packed, err := writeResult(ctx, mod, []byte(result))
			if err != nil {
				return 0
			}
			return packed
		}).
		Export("request")
	httpMod, err := httpBuilder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("sandbox: instantiate http host: %w", err)
	}
	closers = append(closers, httpMod)

	kvBuilder := runtime.NewHostModuleBuilder("runner-host/kv")
	kvBuilder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, nsPtr, nsLen, keyPtr, keyLen uint32) uint64 {
			ns, _ := readMemoryString(mod, nsPtr, nsLen)
			key, _ := readMemoryString(mod, keyPtr, keyLen)
			val, ok := caps.KV.Get(ns, key)
			if !ok {
				return 0
			}
			packed, err := writeResult(ctx, mod, []byte(val))
			if err != nil {
				return 0
			}
			return packed
		}).
		Export("get")
	kvBuilder.NewFunctionBuilder().
		WithFunc(func(mod api.Module, nsPtr, nsLen, keyPtr, keyLen, valPtr, valLen uint32) {
			ns, _ := readMemoryString(mod, nsPtr, nsLen)
			key, _ := readMemoryString(mod, keyPtr, keyLen)
			val, _ := readMemoryString(mod, valPtr, valLen)
			caps.KV.Put(ns, key, val)
		}).
		Export("put")
	kvMod, err := kvBuilder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("sandbox: instantiate kv host: %w", err)
	}
	closers = append(closers, kvMod)

	secretsBuilder := runtime.NewHostModuleBuilder("greentic:secrets/secret-store@1.0.0")
	secretsBuilder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, namePtr, nameLen uint32) uint64 {
			name, _ := readMemoryString(mod, namePtr, nameLen)
			value, errStr := secrets.HostRead(ctx, caps.Secrets, caps.TenantScope, name)
			if errStr != "" {
				packed, err := writeResult(ctx, mod, []byte(errStr))
				if err != nil {
					return 0
				}
				return packed
			}
			packed, err := writeResult(ctx, mod, value)
			if err != nil {
				return 0
			}
			return packed
		}).
		Export("read")
	secretsBuilder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, namePtr, nameLen, valPtr, valLen uint32) uint64 {
			name, _ := readMemoryString(mod, namePtr, nameLen)
			val, _ := mod.Memory().Read(valPtr, valLen)
			errStr := secrets.HostWrite(ctx, caps.Secrets, caps.TenantScope, name, val)
			if errStr == "" {
				return 0
			}
			packed, err := writeResult(ctx, mod, []byte(errStr))
			if err != nil {
				return 0
			}
			return packed
		}).
		Export("write")
	secretsBuilder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, namePtr, nameLen uint32) uint64 {
			name, _ := readMemoryString(mod, namePtr, nameLen)
			errStr := secrets.HostDelete(ctx, caps.Secrets, caps.TenantScope, name)
			if errStr == "" {
				return 0
			}
			packed, err := writeResult(ctx, mod, []byte(errStr))
			if err != nil {
				return 0
			}
			return packed
		}).
		Export("delete")
	secretsMod, err := secretsBuilder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("sandbox: instantiate secrets host: %w", err)
	}
	closers = append(closers, secretsMod)

	return closers, nil
}

// hostHTTPRequest implements the HTTP host surface semantics verbatim,
// including its exact error string prefixes.
func hostHTTPRequest(ctx context.Context, mod api.Module, caps Capabilities, lazy *lazyHTTPClient, methodPtr, methodLen, urlPtr, urlLen, headersPtr, headersLen, bodyPtr, bodyLen uint32) string {
	if !caps.HTTPEnabled {
		return "http-disabled"
	}

	method, _ := readMemoryString(mod, methodPtr, methodLen)
	method = strings.ToUpper(strings.TrimSpace(method))
	if !validHTTPMethod(method) {
		return "invalid-method"
	}

	url, _ := readMemoryString(mod, urlPtr, urlLen)
	headersRaw, _ := readMemoryString(mod, headersPtr, headersLen)
	headerLines := splitNonEmpty(headersRaw, "\n")

	var body io.Reader
	if bodyLen > 0 {
		raw, ok := mod.Memory().Read(bodyPtr, bodyLen)
		if !ok {
			return "body: read out of bounds"
		}
		body = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Sprintf("request: %s", err.Error())
	}

	for _, line := range headerLines {
		name, value, ok := parseHeaderLine(line)
		if !ok {
			return "invalid-header:" + line
		}
		if name == "" {
			return "invalid-header-name:" + line
		}
		if value == "" {
			return "invalid-header-value:" + line
		}
		req.Header.Add(name, value)
	}

	resp, err := lazy.get().Do(req)
	if err != nil {
		return fmt.Sprintf("request: %s", err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("status-%d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("body: %s", err.Error())
	}
	return string(data)
}

func validHTTPMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}
