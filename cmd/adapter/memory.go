//go:build wasip1

package main

import "unsafe"

// packPtrLen and unpackPtrLen mirror the host-side convention in
// pkg/sandbox/memory.go: a (ptr,len) pair packed into a single uint64
// since wasm imports only round-trip numeric values.
func packPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

func unpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed)
}

// readBytes views length bytes of this module's own linear memory starting
// at ptr. The slice aliases live memory; callers that need to retain it
// past the current call must copy.
func readBytes(ptr, length uint32) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}

// writeBytes copies data into a freshly allocated buffer and returns its
// (ptr,len), the shape every export/import in this binary exchanges.
func writeBytes(data []byte) (ptr, length uint32) {
	if len(data) == 0 {
		return 0, 0
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return uint32(uintptr(unsafe.Pointer(&buf[0]))), uint32(len(buf))
}

// runnerAlloc is exported as runner_alloc: the host writes guest-bound
// buffers (tool name, arguments) by first asking the guest to allocate
// room, matching what pkg/sandbox/memory.go's writeResult expects to call.
//
//go:wasmexport runner_alloc
func runnerAlloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	buf := make([]byte, size)
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}
