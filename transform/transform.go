// Package transform executes user-supplied webhook transformation scripts
// inside a sandboxed JavaScript VM.
//
// Scripts run in a fresh goja runtime per invocation with exactly two
// injected globals: the raw payload under "data" and the API version marker
// under "TransformationApiVersion". The script assigns its output to a
// global named "result". Execution is bounded by a wall-clock timeout
// enforced through the VM interrupt mechanism; a timed-out script is
// aborted unconditionally and never yields a partial result.
package transform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// APIVersion is the value scripts must echo back in result.version.
const APIVersion = "v2"

// DefaultTimeout bounds a single script execution.
const DefaultTimeout = 500 * time.Millisecond

// Call stack bound guards against runaway recursion inside scripts.
const maxCallStackSize = 1_000_000

// Failure modes surfaced by Execute. All of them mean "no message fields
// were produced"; the caller owns the fallback behavior.
var (
	// ErrTimeout is returned when a script runs longer than its timeout.
	ErrTimeout = errors.New("transform: script execution timed out")

	// ErrBadVersion is returned when an object result does not declare
	// version "v2".
	ErrBadVersion = errors.New("transform: result version must be \"v2\"")

	// ErrBadPlain is returned when result.plain is missing or not a string.
	ErrBadPlain = errors.New("transform: result.plain must be a string")

	// ErrBadHTML is returned when result.html is present but not a string.
	ErrBadHTML = errors.New("transform: result.html must be a string")

	// ErrBadMsgType is returned when result.msgtype is present but not a string.
	ErrBadMsgType = errors.New("transform: result.msgtype must be a string")
)

// Result is the message produced by a transformation script.
type Result struct {
	Plain   string
	HTML    string
	MsgType string
}

// Transformer holds a compiled transformation script, reusable across
// invocations. The compiled program carries no state; isolation comes from
// the per-invocation runtime.
type Transformer struct {
	prog    *goja.Program
	timeout time.Duration
}

// New compiles source into a reusable Transformer. A compile error is
// returned verbatim so it can be surfaced to the room.
func New(source string, timeout time.Duration) (*Transformer, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	prog, err := goja.Compile("transformation", source, false)
	if err != nil {
		return nil, fmt.Errorf("transform: compile: %w", err)
	}

	return &Transformer{prog: prog, timeout: timeout}, nil
}

// Execute runs the script against payload in a fresh VM.
//
// A nil Result with a nil error signals a deliberate no-op (the script set
// result.empty = true); the caller must skip message emission and still
// treat the webhook as handled.
func (t *Transformer) Execute(ctx context.Context, payload any) (_ *Result, err error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)

	if setErr := vm.Set("TransformationApiVersion", APIVersion); setErr != nil {
		return nil, fmt.Errorf("transform: set api version: %w", setErr)
	}
	if setErr := vm.Set("data", payload); setErr != nil {
		return nil, fmt.Errorf("transform: set payload: %w", setErr)
	}

	// Hard stop for runaway scripts. The interrupt aborts the VM from the
	// watcher goroutine once the deadline passes.
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform: script panic: %v", r)
		}
	}()

	if _, runErr := vm.RunProgram(t.prog); runErr != nil {
		var interrupted *goja.InterruptedError
		if errors.As(runErr, &interrupted) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("transform: execute: %w", runErr)
	}

	return interpret(vm.Get("result"))
}

// interpret applies the result contract to whatever the script left in the
// output binding.
func interpret(out goja.Value) (*Result, error) {
	if out == nil || goja.IsUndefined(out) || goja.IsNull(out) {
		return &Result{Plain: "No content"}, nil
	}

	switch res := out.Export().(type) {
	case string:
		// Legacy-compatible scripts return a bare string.
		return &Result{Plain: "Received webhook: " + res}, nil
	case map[string]any:
		return interpretObject(res)
	case []any:
		// Arrays are objects to the script, but can never carry a version.
		return nil, ErrBadVersion
	default:
		return &Result{Plain: "No content"}, nil
	}
}

func interpretObject(res map[string]any) (*Result, error) {
	if version, _ := res["version"].(string); version != APIVersion {
		return nil, ErrBadVersion
	}

	if empty, _ := res["empty"].(bool); empty {
		return nil, nil // deliberate no-op
	}

	plain, ok := res["plain"].(string)
	if !ok {
		return nil, ErrBadPlain
	}

	r := &Result{Plain: plain}

	if html, present := res["html"]; present {
		s, ok := html.(string)
		if !ok {
			return nil, ErrBadHTML
		}
		r.HTML = s
	}

	if msgtype, present := res["msgtype"]; present {
		s, ok := msgtype.(string)
		if !ok {
			return nil, ErrBadMsgType
		}
		r.MsgType = s
	}

	return r, nil
}
