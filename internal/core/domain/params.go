// Package domain contains the core values, definitions and error kinds of cogni.
package domain

import (
	"maps"

	"go.trai.ch/zerr"
)

// Params holds the caller-supplied input parameters of one evaluation.
type Params map[string]any

// Clone returns a shallow copy of the parameters.
// A nil receiver yields an empty, non-nil map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// MergeParams returns defaults overlaid with params, values in params taking precedence.
func MergeParams(defaults, params Params) Params {
	out := make(Params, len(defaults)+len(params))
	maps.Copy(out, defaults)
	maps.Copy(out, params)
	return out
}

// Results holds already computed values keyed by compute key.
type Results map[string]any

// Input is passed to a compute function.
// Parent holds the results of the function's declared dependencies only.
type Input struct {
	Params Params
	Parent Results
}

// Param returns the named parameter.
func (in Input) Param(name string) (any, bool) {
	v, ok := in.Params[name]
	return v, ok
}

// ComputeFunc computes the value of one key from its input.
type ComputeFunc func(in Input) (any, error)

// ParamAs returns the named parameter converted to T.
func ParamAs[T any](in Input, name string) (T, error) {
	return valueAs[T](in.Params, name, "param")
}

// ParentAs returns the result of the dependency key converted to T.
func ParentAs[T any](in Input, key string) (T, error) {
	return valueAs[T](in.Parent, key, "parent")
}

func valueAs[T any, M ~map[string]any](m M, name, kind string) (T, error) {
	var zero T
	raw, ok := m[name]
	if !ok {
		return zero, zerr.With(zerr.With(zerr.Wrap(ErrParamMissing, "lookup failed"), "name", name), "kind", kind)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, zerr.With(zerr.With(zerr.Wrap(ErrValueTypeMismatch, "lookup failed"), "name", name), "kind", kind)
	}
	return v, nil
}
