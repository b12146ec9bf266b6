//go:build wasip1

// Command adapter is the guest-side invoke normalizer from spec §4.8,
// compiled for GOOS=wasip1 GOARCH=wasm. It imports a router's
// list_tools/call_tool exports and re-exports a single generic invoke,
// so any composed router can be driven through one uniform surface.
package main

import (
	"context"
	"encoding/json"

	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/greentic-ai-org/greentic-mcp/pkg/mcpadapter"
	"github.com/greentic-ai-org/greentic-mcp/pkg/router"
)

func main() {}

//go:wasmimport router list_tools
func importListTools() uint64

//go:wasmimport router call_tool
func importCallTool(namePtr, nameLen, argsPtr, argsLen uint32) uint64

// wasmRouter satisfies mcpadapter.RouterInvoker by calling through to the
// imported router functions linked in at composition time.
type wasmRouter struct{}

func (wasmRouter) ListTools(ctx context.Context) ([]router.Tool, error) {
	ptr, length := unpackPtrLen(importListTools())
	var tools []router.Tool
	if err := json.Unmarshal(readBytes(ptr, length), &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

func (wasmRouter) CallTool(ctx context.Context, tool, argumentsJSON string) (*router.ToolResult, *router.ToolError, error) {
	namePtr, nameLen := writeBytes([]byte(tool))
	argsPtr, argsLen := writeBytes([]byte(argumentsJSON))
	ptr, length := unpackPtrLen(importCallTool(namePtr, nameLen, argsPtr, argsLen))

	var outcome struct {
		Result *router.ToolResult `json:"result"`
		Error  *router.ToolError  `json:"error"`
	}
	if err := json.Unmarshal(readBytes(ptr, length), &outcome); err != nil {
		return nil, nil, err
	}
	return outcome.Result, outcome.Error, nil
}

// invoke is the adapter's single export: resolve the operation, normalize
// arguments, dispatch through the imported router, render the envelope.
//
//go:wasmexport invoke
func invoke(opPtr, opLen, inputPtr, inputLen uint32) uint64 {
	op := string(readBytes(opPtr, opLen))
	input := string(readBytes(inputPtr, inputLen))

	env := mcpadapter.Handle(context.Background(), wasmRouter{}, op, input)

	data, err := json.Marshal(env)
	if err != nil {
		data, _ = json.Marshal(envelope.RenderError(envelope.NewInternalError("failed to encode response: " + err.Error())))
	}
	ptr, length := writeBytes(data)
	return packPtrLen(ptr, length)
}

// invokeStream is the streaming variant of invoke: it runs the same
// dispatch and reports its one-shot outcome as [Data, Done] (or [Error] if
// even rendering the envelope fails), per spec's `invoke_stream →
// [Data(json), Done] | [Error(json)]` contract.
//
//go:wasmexport invoke_stream
func invokeStream(opPtr, opLen, inputPtr, inputLen uint32) uint64 {
	op := string(readBytes(opPtr, opLen))
	input := string(readBytes(inputPtr, inputLen))

	events := mcpadapter.HandleStream(context.Background(), wasmRouter{}, op, input)

	data, err := json.Marshal(events)
	if err != nil {
		data, _ = json.Marshal([]mcpadapter.StreamEvent{{Type: mcpadapter.StreamEventError}})
	}
	ptr, length := writeBytes(data)
	return packPtrLen(ptr, length)
}

// getManifest is exported as get_manifest and advertises this binary's
// static description.
//
//go:wasmexport get_manifest
func getManifest() uint64 {
	raw, err := mcpadapter.GetManifest("mcp-adapter", "0.1.0", envelope.Protocol)
	if err != nil {
		raw = `{"name":"mcp-adapter","operations":["list","call"]}`
	}
	ptr, length := writeBytes([]byte(raw))
	return packPtrLen(ptr, length)
}

// onStart and onStop are the adapter's lifecycle hooks; both are no-ops
// that report success.
//
//go:wasmexport on_start
func onStart() uint32 {
	_ = mcpadapter.OnStart()
	return 0
}

//go:wasmexport on_stop
func onStop() uint32 {
	_ = mcpadapter.OnStop()
	return 0
}
