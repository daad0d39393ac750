package evaluator_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/engine/evaluator"
	"go.trai.ch/zerr"
)

func intParam(name string) domain.ComputeFunc {
	return func(in domain.Input) (any, error) {
		return domain.ParamAs[int](in, name)
	}
}

func parentInt(in domain.Input, key string) int {
	v, _ := domain.ParentAs[int](in, key)
	return v
}

func TestEvaluator_DependentValues(t *testing.T) {
	ev := evaluator.New()
	require.NoError(t, ev.Define("parent", intParam("x")))
	require.NoError(t, ev.Define("child", func(in domain.Input) (any, error) {
		return parentInt(in, "parent") * 2, nil
	}, "parent"))

	got, err := ev.Get("child", domain.Params{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestEvaluator_ParentHoldsComputedValue(t *testing.T) {
	ev := evaluator.New()
	require.NoError(t, ev.Define("a", func(domain.Input) (any, error) { return "computed", nil }))

	var seen domain.Results
	require.NoError(t, ev.Define("b", func(in domain.Input) (any, error) {
		seen = in.Parent
		return nil, nil
	}, "a"))

	_, err := ev.Get("b", nil)
	require.NoError(t, err)
	require.Contains(t, seen, "a")
	assert.Equal(t, "computed", seen["a"])
}

func TestEvaluator_DiamondComputesOnce(t *testing.T) {
	ev := evaluator.New()
	calls := map[string]int{}
	counted := func(key string, fn domain.ComputeFunc) domain.ComputeFunc {
		return func(in domain.Input) (any, error) {
			calls[key]++
			return fn(in)
		}
	}

	var finalInput domain.Input
	ev.MustDefine("parent", counted("parent", func(domain.Input) (any, error) { return 5, nil })).
		MustDefine("child1", counted("child1", func(in domain.Input) (any, error) {
			return parentInt(in, "parent") + 10, nil
		}), "parent").
		MustDefine("child2", counted("child2", func(in domain.Input) (any, error) {
			return parentInt(in, "parent") * 2, nil
		}), "parent").
		MustDefine("finalChild", counted("finalChild", func(in domain.Input) (any, error) {
			finalInput = in
			return parentInt(in, "child1") + parentInt(in, "child2"), nil
		}), "child1", "child2")

	got, err := ev.Get("finalChild", domain.Params{"value": 5})
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	assert.Equal(t, map[string]int{"parent": 1, "child1": 1, "child2": 1, "finalChild": 1}, calls)
	assert.Equal(t, domain.Params{"value": 5}, finalInput.Params)
	assert.Equal(t, domain.Results{"child1": 15, "child2": 10}, finalInput.Parent)
}

func TestEvaluator_FreshContextPerGet(t *testing.T) {
	ev := evaluator.New()
	calls := 0
	require.NoError(t, ev.Define("a", func(in domain.Input) (any, error) {
		calls++
		return domain.ParamAs[int](in, "x")
	}))

	first, err := ev.Get("a", domain.Params{"x": 1})
	require.NoError(t, err)
	second, err := ev.Get("a", domain.Params{"x": 2})
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 2, calls)
}

func TestEvaluator_DeeplyNested(t *testing.T) {
	ev := evaluator.New()
	ev.MustDefine("a", func(in domain.Input) (any, error) {
		base, err := domain.ParamAs[int](in, "base")
		return base * 2, err
	}).
		MustDefine("b", func(in domain.Input) (any, error) { return parentInt(in, "a") + 3, nil }, "a").
		MustDefine("c", func(in domain.Input) (any, error) { return parentInt(in, "b") * 2, nil }, "b").
		MustDefine("d", func(in domain.Input) (any, error) { return parentInt(in, "c") - 5, nil }, "c").
		MustDefine("e", func(in domain.Input) (any, error) {
			d := parentInt(in, "d")
			return d * d, nil
		}, "d")

	c, err := ev.Get("c", domain.Params{"base": 3})
	require.NoError(t, err)
	assert.Equal(t, 18, c)

	e, err := ev.Get("e", domain.Params{"base": 3})
	require.NoError(t, err)
	assert.Equal(t, 169, e)
}

func TestEvaluator_NestedEvaluators(t *testing.T) {
	inner := evaluator.New()
	inner.MustDefine("doubled", func(in domain.Input) (any, error) {
		v, err := domain.ParamAs[int](in, "value")
		return v * 2, err
	})

	outer := evaluator.New()
	outer.MustDefine("quadrupled", func(in domain.Input) (any, error) {
		ev, err := domain.ParamAs[*evaluator.Evaluator](in, "inner")
		if err != nil {
			return nil, err
		}
		x, err := domain.ParamAs[int](in, "x")
		if err != nil {
			return nil, err
		}
		doubled, err := ev.Get("doubled", domain.Params{"value": x})
		if err != nil {
			return nil, err
		}
		return doubled.(int) * 2, nil
	})

	got, err := outer.Get("quadrupled", domain.Params{"inner": inner, "x": 3})
	require.NoError(t, err)
	assert.Equal(t, 12, got)
}

func TestEvaluator_ParamsAreNotShared(t *testing.T) {
	ev := evaluator.New()
	ev.MustDefine("mutator", func(in domain.Input) (any, error) {
		in.Params["x"] = 100
		return nil, nil
	}).MustDefine("reader", func(in domain.Input) (any, error) {
		return domain.ParamAs[int](in, "x")
	}, "mutator")

	params := domain.Params{"x": 1}
	got, err := ev.Get("reader", params)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, params["x"])
}

func TestEvaluator_DuplicateKeyRejected(t *testing.T) {
	ev := evaluator.New()
	require.NoError(t, ev.Define("parent", func(domain.Input) (any, error) { return "first", nil }))

	err := ev.Define("parent", func(domain.Input) (any, error) { return "second", nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrKeyAlreadyDefined)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "parent", zErr.Metadata()["key"])

	got, err := ev.Get("parent", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestEvaluator_UnresolvedDependencyRejected(t *testing.T) {
	ev := evaluator.New()

	err := ev.Define("child", func(domain.Input) (any, error) { return nil, nil }, "parent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnresolvedDependency)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "parent", zErr.Metadata()["dependency"])
	assert.False(t, ev.Has("child"))
}

func TestEvaluator_SelfDependencyRejected(t *testing.T) {
	ev := evaluator.New()
	err := ev.Define("loop", func(domain.Input) (any, error) { return nil, nil }, "loop")
	assert.ErrorIs(t, err, domain.ErrUnresolvedDependency)
}

func TestEvaluator_EmptyKeyRejected(t *testing.T) {
	ev := evaluator.New()
	err := ev.Define("", func(domain.Input) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestEvaluator_UndefinedKey(t *testing.T) {
	ev := evaluator.New()
	ev.MustDefine("someKey", func(domain.Input) (any, error) { return 1, nil })

	_, err := ev.Get("nonExistentKey", domain.Params{"value": 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrKeyNotDefined)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "nonExistentKey", zErr.Metadata()["key"])
}

func TestEvaluator_ComputeErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	ev := evaluator.New()
	ev.MustDefine("a", func(domain.Input) (any, error) { return nil, boom }).
		MustDefine("b", func(domain.Input) (any, error) {
			t.Fatal("dependent must not run after a dependency failed")
			return nil, nil
		}, "a")

	_, err := ev.Get("b", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrComputeFailed)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "a", zErr.Metadata()["key"])
}

func TestEvaluator_MustDefinePanics(t *testing.T) {
	ev := evaluator.New()
	assert.Panics(t, func() {
		ev.MustDefine("b", func(domain.Input) (any, error) { return nil, nil }, "a")
	})
}

func TestEvaluator_Introspection(t *testing.T) {
	ev := evaluator.New(evaluator.WithParams("x", "y", "x"))
	ev.MustDefine("a", intParam("x")).
		MustDefine("b", intParam("y")).
		MustDefine("c", func(domain.Input) (any, error) { return nil, nil }, "b", "a", "b")

	assert.Equal(t, []string{"a", "b", "c"}, ev.Keys())
	assert.Equal(t, []string{"x", "y"}, ev.Params())

	deps, err := ev.Dependencies("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, deps)

	_, err = ev.Dependencies("missing")
	assert.ErrorIs(t, err, domain.ErrKeyNotDefined)
}

func TestEvaluator_ConcurrentGet(t *testing.T) {
	ev := evaluator.New()
	ev.MustDefine("a", intParam("x")).
		MustDefine("b", func(in domain.Input) (any, error) { return parentInt(in, "a") * 10, nil }, "a")

	var wg sync.WaitGroup
	results := make([]any, 50)
	errs := make([]error, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ev.Get("b", domain.Params{"x": i})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, i*10, results[i])
	}
}
