package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/greentic-ai-org/greentic-mcp/pkg/protocol"
	"github.com/greentic-ai-org/greentic-mcp/pkg/router"
	"github.com/greentic-ai-org/greentic-mcp/pkg/schema"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func closeAll(ctx context.Context, closers []api.Closer) {
	for _, c := range closers {
		_ = c.Close(ctx)
	}
}

// mockArtifact is the deterministic test escape hatch: an artifact that is
// valid UTF-8 JSON with `_mock_mcp_exec: true` bypasses compilation
// entirely and answers from a canned response table.
type mockArtifact struct {
	MockMCPExec bool                       `json:"_mock_mcp_exec"`
	Responses   map[string]json.RawMessage `json:"responses"`
}

func tryMockArtifact(wasmBytes []byte, action string) (json.RawMessage, bool, *envelope.RuntimeError) {
	var mock mockArtifact
	if err := json.Unmarshal(wasmBytes, &mock); err != nil || !mock.MockMCPExec {
		return nil, false, nil
	}
	resp, ok := mock.Responses[action]
	if !ok {
		return nil, true, envelope.NewNotFoundError(fmt.Sprintf("mock artifact has no response for action %q", action))
	}
	return resp, true, nil
}

// Dispatcher runs the four-step entrypoint-detection algorithm against a
// compiled component: mock escape hatch, router dialect, legacy exec
// dialect, then a fatal no-compatible-entrypoint error.
type Dispatcher struct {
	engine *Engine
	caps   Capabilities
}

// NewDispatcher builds a Dispatcher bound to a shared Engine and the
// capability set for this call.
func NewDispatcher(engine *Engine, caps Capabilities) *Dispatcher {
	return &Dispatcher{engine: engine, caps: caps}
}

// Dispatch executes action/argumentsJSON against wasmBytes and returns a
// rendered envelope, or a RuntimeError describing why it could not.
func (d *Dispatcher) Dispatch(ctx context.Context, wasmBytes []byte, toolName, argumentsJSON string) (*envelope.Envelope, *envelope.RuntimeError) {
	if resp, matched, rerr := tryMockArtifact(wasmBytes, toolName); matched {
		if rerr != nil {
			return nil, rerr
		}
		var result router.ToolResult
		if err := json.Unmarshal(resp, &result); err != nil {
			return envelope.RenderCompleted(router.ToolResult{
				Content: []router.ContentBlock{router.TextContent{Text: string(resp)}},
			}), nil
		}
		return envelope.RenderCompleted(result), nil
	}

	compiled, err := d.engine.Compile(ctx, wasmBytes)
	if err != nil {
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("compilation failed: %s", err.Error()))
	}
	defer func() { _ = compiled.Close(ctx) }()

	exports := compiled.ExportedFunctions()

	if _, hasCallTool := exports["call_tool"]; hasCallTool {
		return d.dispatchRouter(ctx, compiled, toolName, argumentsJSON)
	}

	if fn, legacy := legacyExecExport(exports); legacy {
		return d.dispatchLegacy(ctx, compiled, fn, toolName, argumentsJSON)
	}

	return nil, envelope.NewRouterTransportError("no compatible entrypoint: component exports neither the router dialect nor legacy exec")
}

func legacyExecExport(exports map[string]interface{}) (string, bool) {
	for _, name := range []string{"legacy:exec/exec#exec", "exec"} {
		if _, ok := exports[name]; ok {
			return name, true
		}
	}
	return "", false
}

// DispatchList calls the router dialect's list_tools export. It is only
// meaningful for components exporting call_tool; legacy exec components
// have no list operation.
func (d *Dispatcher) DispatchList(ctx context.Context, wasmBytes []byte) (*envelope.Envelope, *envelope.RuntimeError) {
	compiled, err := d.engine.Compile(ctx, wasmBytes)
	if err != nil {
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("compilation failed: %s", err.Error()))
	}
	defer func() { _ = compiled.Close(ctx) }()

	if _, hasListTools := compiled.ExportedFunctions()["list_tools"]; !hasListTools {
		return nil, envelope.NewRouterTransportError("no compatible entrypoint: component does not export list_tools")
	}

	mod, hostClosers, rerr := d.instantiate(ctx, compiled)
	if rerr != nil {
		return nil, rerr
	}
	defer closeAll(ctx, hostClosers)
	defer func() { _ = mod.Close(ctx) }()

	if _, hasManifest := compiled.ExportedFunctions()["get_manifest"]; hasManifest {
		if rerr := checkAdvertisedProtocol(ctx, mod); rerr != nil {
			return nil, rerr
		}
	}

	listTools := mod.ExportedFunction("list_tools")
	results, callErr := listTools.Call(ctx)
	if callErr != nil {
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("trap in list_tools: %s", callErr.Error()))
	}

	resultPtr, resultLen := unpackPtrLen(results[0])
	raw, ok := mod.Memory().Read(resultPtr, resultLen)
	if !ok {
		return nil, envelope.NewInternalError("list_tools result out of bounds")
	}

	var tools []router.Tool
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("malformed list_tools response: %s", err.Error()))
	}
	return envelope.RenderListTools(tools), nil
}

// instantiate builds a fresh linker and instantiates compiled against it.
// Callers must close both the returned module and the host module closers.
func (d *Dispatcher) instantiate(ctx context.Context, compiled wazero.CompiledModule) (api.Module, []api.Closer, *envelope.RuntimeError) {
	modCfg := wazero.NewModuleConfig().WithName("")
	runtime := d.engine.runtime
	hostClosers, err := buildLinker(ctx, runtime, d.caps)
	if err != nil {
		return nil, nil, envelope.NewRouterTransportError(err.Error())
	}

	mod, err := runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		closeAll(ctx, hostClosers)
		return nil, nil, envelope.NewRouterTransportError(fmt.Sprintf("instantiation failed: %s", err.Error()))
	}
	return mod, hostClosers, nil
}

func (d *Dispatcher) dispatchRouter(ctx context.Context, compiled wazero.CompiledModule, toolName, argumentsJSON string) (*envelope.Envelope, *envelope.RuntimeError) {
	mod, hostClosers, rerr := d.instantiate(ctx, compiled)
	if rerr != nil {
		return nil, rerr
	}
	defer closeAll(ctx, hostClosers)
	defer func() { _ = mod.Close(ctx) }()

	if _, hasManifest := compiled.ExportedFunctions()["get_manifest"]; hasManifest {
		if rerr := checkAdvertisedProtocol(ctx, mod); rerr != nil {
			return nil, rerr
		}
	}

	if _, hasListTools := compiled.ExportedFunctions()["list_tools"]; hasListTools {
		if verr := validateAgainstAdvertisedSchema(ctx, mod, toolName, argumentsJSON); verr != nil {
			return envelope.RenderToolError(toolName, &router.ToolError{
				Kind:    router.ToolErrorInvalidParameters,
				Message: verr.Error(),
			}), nil
		}
	}

	callTool := mod.ExportedFunction("call_tool")
	namePacked, err := writeResult(ctx, mod, []byte(toolName))
	if err != nil {
		return nil, envelope.NewRouterTransportError(err.Error())
	}
	argsPacked, err := writeResult(ctx, mod, []byte(argumentsJSON))
	if err != nil {
		return nil, envelope.NewRouterTransportError(err.Error())
	}
	namePtr, nameLen := unpackPtrLen(namePacked)
	argsPtr, argsLen := unpackPtrLen(argsPacked)

	results, err := callTool.Call(ctx, uint64(namePtr), uint64(nameLen), uint64(argsPtr), uint64(argsLen))
	if err != nil {
		if strings.Contains(err.Error(), "transient.") {
			return nil, envelope.NewTransientError(err.Error())
		}
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("trap in call_tool: %s", err.Error()))
	}

	resultPtr, resultLen := unpackPtrLen(results[0])
	raw, ok := mod.Memory().Read(resultPtr, resultLen)
	if !ok {
		return nil, envelope.NewInternalError("call_tool result out of bounds")
	}

	var outcome struct {
		Result *router.ToolResult `json:"result"`
		Error  *router.ToolError  `json:"error"`
	}
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("malformed call_tool response: %s", err.Error()))
	}
	if outcome.Error != nil {
		return envelope.RenderToolError(toolName, outcome.Error), nil
	}
	if outcome.Result == nil {
		return nil, envelope.NewRouterTransportError("call_tool returned neither result nor error")
	}
	return envelope.RenderCompleted(*outcome.Result), nil
}

func (d *Dispatcher) dispatchLegacy(ctx context.Context, compiled wazero.CompiledModule, exportName, action, argumentsJSON string) (*envelope.Envelope, *envelope.RuntimeError) {
	mod, hostClosers, rerr := d.instantiate(ctx, compiled)
	if rerr != nil {
		return nil, rerr
	}
	defer closeAll(ctx, hostClosers)
	defer func() { _ = mod.Close(ctx) }()

	exec := mod.ExportedFunction(exportName)
	actionPacked, err := writeResult(ctx, mod, []byte(action))
	if err != nil {
		return nil, envelope.NewRouterTransportError(err.Error())
	}
	argsPacked, err := writeResult(ctx, mod, []byte(argumentsJSON))
	if err != nil {
		return nil, envelope.NewRouterTransportError(err.Error())
	}
	actionPtr, actionLen := unpackPtrLen(actionPacked)
	argsPtr, argsLen := unpackPtrLen(argsPacked)

	results, err := exec.Call(ctx, uint64(actionPtr), uint64(actionLen), uint64(argsPtr), uint64(argsLen))
	if err != nil {
		if strings.Contains(err.Error(), "transient.") {
			return nil, envelope.NewTransientError(err.Error())
		}
		return nil, envelope.NewInternalError(fmt.Sprintf("trap in legacy exec: %s", err.Error()))
	}

	resultPtr, resultLen := unpackPtrLen(results[0])
	raw, ok := mod.Memory().Read(resultPtr, resultLen)
	if !ok {
		return nil, envelope.NewInternalError("legacy exec result out of bounds")
	}

	var passthrough interface{}
	if err := json.Unmarshal(raw, &passthrough); err != nil {
		return nil, envelope.NewRouterTransportError(fmt.Sprintf("legacy exec returned non-JSON output: %s", err.Error()))
	}
	return &envelope.Envelope{OK: true, Result: passthrough, Messages: []envelope.Message{}, Protocol: envelope.Protocol}, nil
}

// validateAgainstAdvertisedSchema asks the already-instantiated module for
// its tool list and, when toolName advertises a non-empty input_schema,
// validates argumentsJSON against it. Any trouble reaching or parsing the
// tool list is treated as "nothing to enforce" — list_tools has its own
// dedicated failure path via DispatchList, so a problem here should not
// block a call_tool dispatch that might otherwise succeed.
func validateAgainstAdvertisedSchema(ctx context.Context, mod api.Module, toolName, argumentsJSON string) error {
	listTools := mod.ExportedFunction("list_tools")
	if listTools == nil {
		return nil
	}
	results, err := listTools.Call(ctx)
	if err != nil || len(results) == 0 {
		return nil
	}
	ptr, length := unpackPtrLen(results[0])
	raw, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil
	}
	var tools []router.Tool
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil
	}
	for _, tool := range tools {
		if tool.Name != toolName {
			continue
		}
		sch, err := schema.Compile(tool.Name, tool.InputSchema)
		if err != nil || sch == nil {
			return nil
		}
		return schema.ValidateArguments(sch, []byte(argumentsJSON))
	}
	return nil
}

// checkAdvertisedProtocol calls an optional get_manifest export and, when
// it returns a parseable {"protocol": "..."} manifest, rejects the call if
// the advertised revision is not within the host's major protocol
// revision. A get_manifest that traps or returns something unparseable is
// treated as "nothing to check" rather than a dispatch failure.
func checkAdvertisedProtocol(ctx context.Context, mod api.Module) *envelope.RuntimeError {
	getManifest := mod.ExportedFunction("get_manifest")
	if getManifest == nil {
		return nil
	}
	results, err := getManifest.Call(ctx)
	if err != nil || len(results) == 0 {
		return nil
	}
	ptr, length := unpackPtrLen(results[0])
	raw, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil
	}
	var manifest struct {
		Protocol string `json:"protocol"`
	}
	if err := json.Unmarshal(raw, &manifest); err != nil || manifest.Protocol == "" {
		return nil
	}
	compatible, err := protocol.Compatible(envelope.Protocol, manifest.Protocol)
	if err != nil {
		return nil
	}
	if !compatible {
		return envelope.NewVerificationError(fmt.Sprintf(
			"component advertises protocol %q, incompatible with host protocol %q",
			manifest.Protocol, envelope.Protocol))
	}
	return nil
}

func isMissingExport(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown export") || strings.Contains(msg, "No such export")
}
