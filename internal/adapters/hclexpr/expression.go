// Package hclexpr compiles HCL native-syntax expressions into compute functions.
//
// Every parameter is a top-level variable and dependency results are attributes
// of the parent object:
//
//	parent.total * rate + 1
package hclexpr

import (
	"errors"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/zerr"
)

// ParentVar is the variable holding dependency results.
const ParentVar = "parent"

// Expression is a parsed compute expression.
type Expression struct {
	source  string
	expr    hclsyntax.Expression
	params  []string
	parents []string
}

// Parse parses src and records the variables it references.
func Parse(src string) (*Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "expr", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrExpressionParseFailed, diags), "cannot parse expression"), "expr", src)
	}

	e := &Expression{source: src, expr: expr}
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if root != ParentVar {
			if !slices.Contains(e.params, root) {
				e.params = append(e.params, root)
			}
			continue
		}
		if name, ok := parentKey(traversal); ok && !slices.Contains(e.parents, name) {
			e.parents = append(e.parents, name)
		}
	}
	return e, nil
}

// Source returns the expression text.
func (e *Expression) Source() string {
	return e.source
}

// Params returns the referenced parameters in order of first appearance.
func (e *Expression) Params() []string {
	return slices.Clone(e.params)
}

// Parents returns the referenced dependency keys in order of first appearance.
func (e *Expression) Parents() []string {
	return slices.Clone(e.parents)
}

// Eval evaluates the expression against in.
func (e *Expression) Eval(in domain.Input) (any, error) {
	vars := make(map[string]cty.Value, len(e.params)+1)
	for _, name := range e.params {
		raw, ok := in.Param(name)
		if !ok {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrParamMissing, "cannot evaluate expression"), "name", name), "expr", e.source)
		}
		v, err := ToCty(raw)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "name", name), "expr", e.source)
		}
		vars[name] = v
	}

	parent := make(map[string]cty.Value, len(in.Parent))
	for key, raw := range in.Parent {
		v, err := ToCty(raw)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "dependency", key), "expr", e.source)
		}
		parent[key] = v
	}
	vars[ParentVar] = cty.ObjectVal(parent)

	out, diags := e.expr.Value(&hcl.EvalContext{Variables: vars, Functions: functions})
	if diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrExpressionEvalFailed, diags), "cannot evaluate expression"), "expr", e.source)
	}

	v, err := FromCty(out)
	if err != nil {
		return nil, zerr.With(err, "expr", e.source)
	}
	return v, nil
}

// parentKey extracts the dependency key of parent.<key> or parent["<key>"].
func parentKey(traversal hcl.Traversal) (string, bool) {
	if len(traversal) < 2 {
		return "", false
	}
	switch step := traversal[1].(type) {
	case hcl.TraverseAttr:
		return step.Name, true
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
			return step.Key.AsString(), true
		}
	}
	return "", false
}
