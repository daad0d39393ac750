package ports

import "go.trai.ch/cogni/internal/core/domain"

// Evaluator computes the value of a key for a set of parameters.
type Evaluator interface {
	Get(key string, params domain.Params) (any, error)
}

// ParamSchema is implemented by evaluators declaring their input parameters.
// An empty schema declares nothing.
type ParamSchema interface {
	Params() []string
}
