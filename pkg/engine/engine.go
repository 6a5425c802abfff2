// Package engine evaluates mind-map source written in a small Lisp dialect.
// Source runs in a sandboxed zygomys interpreter; builtins `mindmap` and
// `topic` build a mindmap.Map as a side effect. Evaluated maps are validated
// before they are returned.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/cockroachdb/errors"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a validation
// error in the resulting map.
type EvalError struct {
	Line    int
	Col     int
	Message string
	NodeID  string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: %s", e.NodeID, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning about the evaluated map.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  string
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
// Map is nil whenever Errors is non-empty.
type EvalResult struct {
	Map      *mindmap.Map
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and produces a mind map.
//
// Return semantics:
//   - On success: returns map + nil errors + nil error
//   - On parse/eval/validation failure: returns nil map + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*mindmap.Map, []EvalError, error) {
	res, err := e.EvaluateResult(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Map, res.Errors, nil
}

// EvaluateResult is Evaluate with validation warnings included.
func (e *Engine) EvaluateResult(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: errors.Newf("panic during evaluation: %v", r)}
			}
		}()

		res := e.evaluate(source)
		ch <- evalResult{res: res}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
}

// EvaluateFile loads a map from path. Files ending in .json are decoded as
// the JSON wire format; anything else is evaluated as Lisp source.
func (e *Engine) EvaluateFile(path string) (EvalResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EvalResult{}, errors.Wrapf(err, "reading %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		m, err := mindmap.DecodeBytes(data)
		if err != nil {
			return EvalResult{Errors: []EvalError{{Message: err.Error()}}}, nil
		}
		return validated(m), nil
	}
	return e.EvaluateResult(string(data))
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) EvalResult {
	if strings.TrimSpace(source) == "" {
		return EvalResult{Errors: []EvalError{{Message: errNoMindMap}}}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builder{}
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return EvalResult{Errors: parseZygomysError(err)}
	}
	if b.result == nil {
		return EvalResult{Errors: []EvalError{{Message: errNoMindMap}}}
	}
	return validated(b.result)
}

const errNoMindMap = "source defines no (mindmap ...) form"

// validated runs map validation, splitting findings into errors and
// warnings. The map is dropped when any error is found.
func validated(m *mindmap.Map) EvalResult {
	vr := mindmap.ValidateAll(m)
	res := EvalResult{Map: m}
	for _, ve := range vr.Errors {
		res.Errors = append(res.Errors, EvalError{NodeID: ve.NodeID, Message: ve.Message})
	}
	for _, vw := range vr.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{NodeID: vw.NodeID, Message: vw.Message})
	}
	if len(res.Errors) > 0 {
		res.Map = nil
	}
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
