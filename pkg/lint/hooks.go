package lint

import (
	"errors"
	"fmt"
	"sync"
)

// Hook points offered by the pipeline.
const (
	PointConfigArgs         = "fprime_extras/lint/config_args"
	PointFileTypeCheck      = "fprime_extras/lint/file_type_check"
	PointRawFileRules       = "fprime_extras/lint/raw_file_rules"
	PointDocumentModelRules = "fprime_extras/lint/document_model_rules"
	PointFprimeModelRules   = "fprime_extras/lint/fprime_model_rules"
)

// ErrHookNotDefined is returned when registering against or invoking a
// point that was never defined.
var ErrHookNotDefined = errors.New("hook point not defined")

// Hooks is a table of named extension points. Each point holds callbacks
// in registration order. The table does not call them; callers decide how.
type Hooks struct {
	mu     sync.RWMutex
	points map[string][]any
}

// NewHooks returns an empty table.
func NewHooks() *Hooks {
	return &Hooks{points: make(map[string][]any)}
}

// DefaultHooks returns a table with every pipeline point defined.
func DefaultHooks() *Hooks {
	h := NewHooks()
	for _, p := range []string{
		PointConfigArgs,
		PointFileTypeCheck,
		PointRawFileRules,
		PointDocumentModelRules,
		PointFprimeModelRules,
	} {
		h.Define(p)
	}
	return h
}

// Define creates the point if it does not exist. Redefining an existing
// point keeps its callbacks.
func (h *Hooks) Define(point string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.points[point]; !ok {
		h.points[point] = nil
	}
}

// Defined reports whether point exists.
func (h *Hooks) Defined(point string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.points[point]
	return ok
}

// Register appends cb to point.
func (h *Hooks) Register(point string, cb any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	cbs, ok := h.points[point]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHookNotDefined, point)
	}
	h.points[point] = append(cbs, cb)
	return nil
}

// Invoke returns a copy of the callbacks registered at point.
func (h *Hooks) Invoke(point string) ([]any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cbs, ok := h.points[point]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHookNotDefined, point)
	}
	out := make([]any, len(cbs))
	copy(out, cbs)
	return out, nil
}

// Invoke returns the callbacks at point that implement T, in registration
// order. Callbacks of any other type are an error: each point has one
// contract.
func Invoke[T any](h *Hooks, point string) ([]T, error) {
	cbs, err := h.Invoke(point)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(cbs))
	for i, cb := range cbs {
		typed, ok := cb.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("hook %s: callback %d is %T, want %T", point, i, cb, &zero)
		}
		out = append(out, typed)
	}
	return out, nil
}

// ConfigArgs collects the extra arguments of the rules bound at
// PointConfigArgs. A name declared by more than one rule is listed once.
func ConfigArgs(h *Hooks) ([]ArgSpec, error) {
	providers, err := Invoke[ArgsProvider](h, PointConfigArgs)
	if err != nil {
		return nil, err
	}
	var args []ArgSpec
	seen := make(map[string]bool)
	for _, p := range providers {
		for _, a := range p.ExtraArgs() {
			if seen[a.Name] {
				continue
			}
			seen[a.Name] = true
			args = append(args, a)
		}
	}
	return args, nil
}
