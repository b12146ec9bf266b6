package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/greentic-ai-org/greentic-mcp/pkg/sandbox"
)

func main() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr, os.Stdin))
}

// Run is the router CLI entrypoint, separated from main for testability.
func Run(args []string, stdout, stderr io.Writer, stdin io.Reader) int {
	fs := flag.NewFlagSet("router", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		routerPath string
		tool       string
		listTools  bool
		input      string
		inputFile  string
		enableHTTP bool
		timeoutMs  int
		pretty     bool
		verbose    bool
	)

	fs.StringVar(&routerPath, "router", "", "path to the component .wasm file (required)")
	fs.StringVar(&tool, "tool", "", "tool name to call")
	fs.BoolVar(&listTools, "list-tools", false, "list the component's tools instead of calling one")
	fs.StringVar(&input, "input", "", "tool arguments as a JSON string")
	fs.StringVar(&inputFile, "input-file", "", "path to a file containing tool arguments JSON")
	fs.BoolVar(&enableHTTP, "enable-http", false, "enable the runner-host/http capability")
	fs.IntVar(&timeoutMs, "timeout-ms", 10000, "per-call timeout in milliseconds")
	fs.BoolVar(&pretty, "pretty", false, "pretty-print the output envelope")
	fs.BoolVar(&verbose, "verbose", false, "print stage-by-stage diagnostic trace lines to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if routerPath == "" {
		fmt.Fprintln(stderr, "Error: --router is required")
		return 2
	}
	if tool == "" && !listTools {
		fmt.Fprintln(stderr, "Error: one of --tool or --list-tools is required")
		return 2
	}
	if tool != "" && listTools {
		fmt.Fprintln(stderr, "Error: --tool and --list-tools are mutually exclusive")
		return 2
	}

	trace(verbose, stderr, "router CLI starting (list_tools=%t, enable_http=%t)", listTools, enableHTTP)

	// Avoid blocking on stdin when we're only listing tools.
	argumentsJSON := "{}"
	var err error
	if !listTools {
		argumentsJSON, err = resolveArguments(input, inputFile, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	trace(verbose, stderr, "loading component %s", routerPath)
	wasmBytes, err := os.ReadFile(routerPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: reading %s: %v\n", routerPath, err)
		return 2
	}
	trace(verbose, stderr, "component loaded (%d bytes)", len(wasmBytes))

	ctx := context.Background()
	trace(verbose, stderr, "creating wazero engine")
	engine, err := sandbox.NewEngine(ctx, sandbox.EngineConfig{})
	if err != nil {
		fmt.Fprintf(stderr, "Error: starting engine: %v\n", err)
		return 2
	}
	defer func() { _ = engine.Close(ctx) }()

	trace(verbose, stderr, "wiring capabilities and dispatcher (http_enabled=%t)", enableHTTP)
	caps := sandbox.Capabilities{HTTPEnabled: enableHTTP, KV: sandbox.NoopKV{}}
	dispatcher := sandbox.NewDispatcher(engine, caps)
	supervisor := &sandbox.Supervisor{PerCallTimeout: time.Duration(timeoutMs) * time.Millisecond}

	if verbose {
		action := tool
		if listTools {
			action = "<list-tools>"
		}
		trace(verbose, stderr, "executing router %s via tool %s", routerPath, action)
	}

	env, rerr := supervisor.Run(ctx, func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		if listTools {
			trace(verbose, stderr, "calling list_tools")
			return dispatcher.DispatchList(ctx, wasmBytes)
		}
		trace(verbose, stderr, "calling call_tool")
		return dispatcher.Dispatch(ctx, wasmBytes, tool, argumentsJSON)
	})
	if rerr != nil {
		env = envelope.RenderError(rerr)
	}
	trace(verbose, stderr, "call finished (ok=%t)", env.OK)

	if err := printEnvelope(stdout, env, pretty); err != nil {
		fmt.Fprintf(stderr, "Error: encoding output: %v\n", err)
		return 2
	}

	if !env.OK {
		return 1
	}
	return 0
}

// trace prints a stage-by-stage diagnostic line to stderr when verbose is
// set; it is a no-op otherwise.
func trace(verbose bool, stderr io.Writer, format string, args ...interface{}) {
	if !verbose {
		return
	}
	fmt.Fprintf(stderr, format+"\n", args...)
}

func resolveArguments(input, inputFile string, stdin io.Reader) (string, error) {
	var raw string
	switch {
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("reading --input-file: %w", err)
		}
		raw = string(data)
	case input != "":
		raw = input
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		raw = string(data)
	}
	if strings.TrimSpace(raw) == "" {
		return "{}", nil
	}
	return raw, nil
}

func printEnvelope(w io.Writer, env *envelope.Envelope, pretty bool) error {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(env, "", "  ")
	} else {
		out, err = json.Marshal(env)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
