// Package tools exposes callable tools to the interview agent and to document ingestion.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrToolNotFound is returned when a named tool is not offered by any toolset.
var ErrToolNotFound = errors.New("tool not found")

// Definition describes a tool to a model. Parameters is a JSON Schema object.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Toolset is a collection of tools a model may call without confirmation.
type Toolset interface {
	Definitions() []Definition
	// Call runs the named tool with JSON-encoded arguments and returns its text output.
	Call(ctx context.Context, name string, arguments string) (string, error)
}

// Func implements a local tool.
type Func func(ctx context.Context, args map[string]any) (string, error)

// Registry is an in-process Toolset.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:  make(map[string]Definition),
		funcs: make(map[string]Func),
	}
}

// Register adds or replaces a tool.
func (r *Registry) Register(def Definition, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
	r.funcs[def.Name] = fn
}

// Definitions returns the registered tools sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Call invokes a registered tool.
func (r *Registry) Call(ctx context.Context, name string, arguments string) (string, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	args, err := DecodeArguments(arguments)
	if err != nil {
		return "", err
	}
	return fn(ctx, args)
}

// DecodeArguments parses a JSON argument object; empty input yields an empty map.
func DecodeArguments(arguments string) (map[string]any, error) {
	args := map[string]any{}
	if arguments == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

// Multi merges toolsets; earlier toolsets win on name clashes.
type Multi []Toolset

// Definitions returns the union of all definitions.
func (m Multi) Definitions() []Definition {
	seen := map[string]bool{}
	var defs []Definition
	for _, ts := range m {
		if ts == nil {
			continue
		}
		for _, d := range ts.Definitions() {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			defs = append(defs, d)
		}
	}
	return defs
}

// Call dispatches to the first toolset that defines name.
func (m Multi) Call(ctx context.Context, name string, arguments string) (string, error) {
	for _, ts := range m {
		if ts == nil {
			continue
		}
		for _, d := range ts.Definitions() {
			if d.Name == name {
				return ts.Call(ctx, name, arguments)
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
}

// Without hides the named tools from ts. Calls to a hidden tool fail with
// ErrToolNotFound.
func Without(ts Toolset, names ...string) Toolset {
	hidden := make(map[string]bool, len(names))
	for _, n := range names {
		hidden[n] = true
	}
	return &filtered{inner: ts, hidden: hidden}
}

type filtered struct {
	inner  Toolset
	hidden map[string]bool
}

func (f *filtered) Definitions() []Definition {
	var defs []Definition
	for _, d := range f.inner.Definitions() {
		if !f.hidden[d.Name] {
			defs = append(defs, d)
		}
	}
	return defs
}

func (f *filtered) Call(ctx context.Context, name string, arguments string) (string, error) {
	if f.hidden[name] {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return f.inner.Call(ctx, name, arguments)
}
