// Package evaluator implements the dependency graph evaluator.
//
// Compute functions are registered under unique keys together with the keys they
// depend on. Dependencies must already be registered, so registration order is
// always a valid topological order. Every Get runs in a fresh evaluation context
// in which each key is computed at most once.
package evaluator

import (
	"errors"
	"slices"
	"strings"

	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Evaluator   = (*Evaluator)(nil)
	_ ports.ParamSchema = (*Evaluator)(nil)
)

// resolveFunc computes a key inside an evaluation context.
type resolveFunc func(ec *evalContext, params domain.Params) (any, error)

type registration struct {
	dependencies []string
	resolve      resolveFunc
}

// Evaluator owns a set of compute functions and evaluates them on demand.
//
// The registration map is read-only during Get. Concurrent Get calls are safe
// once all Define calls have returned; Define concurrent with Get is not.
type Evaluator struct {
	registrations map[string]registration
	order         []string
	params        []string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithParams declares the input parameters the compute functions read.
func WithParams(names ...string) Option {
	return func(e *Evaluator) {
		for _, name := range names {
			if !slices.Contains(e.params, name) {
				e.params = append(e.params, name)
			}
		}
	}
}

// New creates an empty Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		registrations: make(map[string]registration),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Define registers fn under key.
// Every dependency must already be defined; duplicates in dependencies are ignored.
func (e *Evaluator) Define(key string, fn domain.ComputeFunc, dependencies ...string) error {
	if key == "" {
		return zerr.Wrap(domain.ErrInvalidKey, "key must not be empty")
	}
	if _, exists := e.registrations[key]; exists {
		return zerr.With(zerr.Wrap(domain.ErrKeyAlreadyDefined, "cannot redefine compute function"), "key", key)
	}

	deps := make([]string, 0, len(dependencies))
	for _, dep := range dependencies {
		if _, ok := e.registrations[dep]; !ok {
			return zerr.With(
				zerr.With(zerr.Wrap(domain.ErrUnresolvedDependency, "cannot define compute function"), "key", key),
				"dependency", dep,
			)
		}
		if !slices.Contains(deps, dep) {
			deps = append(deps, dep)
		}
	}

	e.registrations[key] = registration{
		dependencies: deps,
		resolve:      e.wrapWithDependencies(key, fn, deps),
	}
	e.order = append(e.order, key)
	return nil
}

// MustDefine is like Define but panics on error. It returns e to allow chaining.
func (e *Evaluator) MustDefine(key string, fn domain.ComputeFunc, dependencies ...string) *Evaluator {
	if err := e.Define(key, fn, dependencies...); err != nil {
		panic(err)
	}
	return e
}

// Get computes the value of key for params.
func (e *Evaluator) Get(key string, params domain.Params) (any, error) {
	return e.resolve(newEvalContext(), key, params)
}

// Has reports whether key is defined.
func (e *Evaluator) Has(key string) bool {
	_, ok := e.registrations[key]
	return ok
}

// Keys returns the defined keys in definition order.
func (e *Evaluator) Keys() []string {
	return slices.Clone(e.order)
}

// Dependencies returns the declared dependencies of key.
func (e *Evaluator) Dependencies(key string) ([]string, error) {
	reg, ok := e.registrations[key]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrKeyNotDefined, "cannot list dependencies"), "key", key)
	}
	return slices.Clone(reg.dependencies), nil
}

// Params returns the declared input parameters.
func (e *Evaluator) Params() []string {
	return slices.Clone(e.params)
}

func (e *Evaluator) resolve(ec *evalContext, key string, params domain.Params) (any, error) {
	reg, ok := e.registrations[key]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrKeyNotDefined, "cannot compute value"), "key", key)
	}

	switch ec.state(key) {
	case stateResolved:
		return ec.values[key], nil
	case stateResolving:
		return nil, zerr.With(zerr.Wrap(domain.ErrCycleDetected, "cannot compute value"), "cycle", ec.cyclePath(key))
	}

	ec.enter(key)
	value, err := reg.resolve(ec, params)
	if err != nil {
		return nil, err
	}
	ec.leave(key, value)
	return value, nil
}

// wrapWithDependencies returns a resolver that computes the dependencies of key
// into the shared context before invoking fn with their results.
func (e *Evaluator) wrapWithDependencies(key string, fn domain.ComputeFunc, deps []string) resolveFunc {
	return func(ec *evalContext, params domain.Params) (any, error) {
		parent := make(domain.Results, len(deps))
		for _, dep := range deps {
			value, err := e.resolve(ec, dep, params)
			if err != nil {
				return nil, err
			}
			parent[dep] = value
		}

		value, err := fn(domain.Input{Params: params.Clone(), Parent: parent})
		if err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrComputeFailed, err), "cannot compute value"), "key", key)
		}
		return value, nil
	}
}

type resolveState int

const (
	stateUnresolved resolveState = iota
	stateResolving
	stateResolved
)

// evalContext is the private scratch state of one top-level Get.
type evalContext struct {
	values map[string]any
	states map[string]resolveState
	path   []string
}

func newEvalContext() *evalContext {
	return &evalContext{
		values: make(map[string]any),
		states: make(map[string]resolveState),
	}
}

func (ec *evalContext) state(key string) resolveState {
	return ec.states[key]
}

func (ec *evalContext) enter(key string) {
	ec.states[key] = stateResolving
	ec.path = append(ec.path, key)
}

func (ec *evalContext) leave(key string, value any) {
	ec.states[key] = stateResolved
	ec.values[key] = value
	ec.path = ec.path[:len(ec.path)-1]
}

func (ec *evalContext) cyclePath(key string) string {
	start := slices.Index(ec.path, key)
	if start < 0 {
		return key
	}
	return strings.Join(append(slices.Clone(ec.path[start:]), key), " -> ")
}
