package hclexpr

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var functions = map[string]function.Function{
	"abs":    stdlib.AbsoluteFunc,
	"ceil":   stdlib.CeilFunc,
	"concat": stdlib.ConcatFunc,
	"floor":  stdlib.FloorFunc,
	"format": stdlib.FormatFunc,
	"join":   stdlib.JoinFunc,
	"length": stdlib.LengthFunc,
	"lower":  stdlib.LowerFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
	"pow":    stdlib.PowFunc,
	"signum": stdlib.SignumFunc,
	"upper":  stdlib.UpperFunc,
}
