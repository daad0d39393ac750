package hclexpr

import (
	"slices"

	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/zerr"
)

// Compile parses src into a compute function.
//
// With dependsOn nil the dependencies are the parent keys the expression reads.
// Otherwise dependsOn is returned as is and every parent key read must be listed in it.
// A non-empty schema restricts the parameters the expression may read.
func Compile(src string, dependsOn, schema []string) (domain.ComputeFunc, []string, error) {
	e, err := Parse(src)
	if err != nil {
		return nil, nil, err
	}

	deps := e.Parents()
	if dependsOn != nil {
		for _, name := range deps {
			if !slices.Contains(dependsOn, name) {
				return nil, nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUndeclaredDependency, "cannot compile expression"), "dependency", name), "expr", src)
			}
		}
		deps = slices.Clone(dependsOn)
	}

	if len(schema) > 0 {
		for _, name := range e.Params() {
			if !slices.Contains(schema, name) {
				return nil, nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnknownParam, "cannot compile expression"), "param", name), "expr", src)
			}
		}
	}

	return e.Eval, deps, nil
}
