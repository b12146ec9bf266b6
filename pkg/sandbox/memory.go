package sandbox

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Host functions in this package exchange strings and byte buffers with
// the guest using a (ptr,len) convention: a caller-owned buffer pointer
// and its byte length. Results that must carry their own length pack
// ptr and len into one uint64 (ptr<<32 | len) since wazero's WithFunc
// entrypoints round-trip plain numeric types only.

func packPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

func unpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed)
}

func readMemoryString(mod api.Module, ptr, length uint32) (string, error) {
	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return "", fmt.Errorf("sandbox: read out of bounds at %d+%d", ptr, length)
	}
	return string(buf), nil
}

// writeResult allocates space in guest memory for data by calling the
// guest's exported "runner_alloc" function (size) -> ptr, then writes
// data into it. Components that omit "runner_alloc" cannot receive
// host-returned buffers; callers should treat the resulting error as a
// transport failure, not a tool failure.
func writeResult(ctx context.Context, mod api.Module, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	alloc := mod.ExportedFunction("runner_alloc")
	if alloc == nil {
		return 0, fmt.Errorf("sandbox: guest does not export runner_alloc")
	}
	results, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("sandbox: runner_alloc call failed: %w", err)
	}
	ptr := uint32(results[0])
	if !mod.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("sandbox: write out of bounds at %d+%d", ptr, len(data))
	}
	return packPtrLen(ptr, uint32(len(data))), nil
}
