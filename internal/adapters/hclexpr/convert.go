package hclexpr

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/zerr"
)

// floatVal converts f, rejecting NaN which has no cty number representation.
func floatVal(f float64) (cty.Value, error) {
	if math.IsNaN(f) {
		return cty.NilVal, zerr.With(zerr.Wrap(domain.ErrUnsupportedValue, "cannot convert value"), "value", "NaN")
	}
	return cty.NumberFloatVal(f), nil
}

// ToCty converts a Go value into a cty value.
// Supported are nil, bools, strings, numbers and slices and string-keyed maps of those.
func ToCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int8:
		return cty.NumberIntVal(int64(x)), nil
	case int16:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case float32:
		return floatVal(float64(x))
	case float64:
		return floatVal(x)
	case []any:
		return tupleVal(len(x), func(i int) any { return x[i] })
	case map[string]any:
		return objectVal(x)
	case domain.Params:
		return objectVal(x)
	case domain.Results:
		return objectVal(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return tupleVal(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return objectVal(m)
		}
	}
	return cty.NilVal, zerr.With(zerr.Wrap(domain.ErrUnsupportedValue, "cannot convert value"), "type", fmt.Sprintf("%T", v))
}

func tupleVal(n int, at func(int) any) (cty.Value, error) {
	if n == 0 {
		return cty.EmptyTupleVal, nil
	}
	vals := make([]cty.Value, n)
	for i := range n {
		v, err := ToCty(at(i))
		if err != nil {
			return cty.NilVal, err
		}
		vals[i] = v
	}
	return cty.TupleVal(vals), nil
}

func objectVal[M ~map[string]any](m M) (cty.Value, error) {
	if len(m) == 0 {
		return cty.EmptyObjectVal, nil
	}
	attrs := make(map[string]cty.Value, len(m))
	for k, raw := range m {
		v, err := ToCty(raw)
		if err != nil {
			return cty.NilVal, zerr.With(err, "attribute", k)
		}
		attrs[k] = v
	}
	return cty.ObjectVal(attrs), nil
}

// FromCty converts a cty value into a Go value.
// Whole numbers within int64 range become int64, other numbers float64.
// Lists, sets and tuples become []any; maps and objects map[string]any.
func FromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, zerr.Wrap(domain.ErrUnsupportedValue, "value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		return fromNumber(v.AsBigFloat()), nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			x, err := FromCty(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			x, err := FromCty(elem)
			if err != nil {
				return nil, zerr.With(err, "attribute", k.AsString())
			}
			out[k.AsString()] = x
		}
		return out, nil
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedValue, "cannot convert value"), "type", ty.FriendlyName())
}

func fromNumber(f *big.Float) any {
	if f.IsInt() {
		if i, acc := f.Int64(); acc == big.Exact {
			return i
		}
	}
	out, _ := f.Float64()
	return out
}
