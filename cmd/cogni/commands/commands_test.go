package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cogni/cmd/cogni/commands"
	"go.trai.ch/cogni/internal/adapters/metrics"
	"go.trai.ch/cogni/internal/app"
	"go.trai.ch/cogni/internal/build"
	"go.trai.ch/cogni/internal/core/domain"
)

type mockApp struct {
	evalFunc     func(ctx context.Context, configPath, key string, opts app.EvalOptions) (any, error)
	runBatchFunc func(ctx context.Context, configPath, key string, opts app.BatchOptions) ([]app.RunResult, error)
	keysFunc     func(ctx context.Context, configPath string) ([]app.KeyInfo, error)
	cacheKeyFunc func(ctx context.Context, configPath string, params domain.Params) (string, error)
	listFunc     func(ctx context.Context, configPath string) ([]app.StorageEntries, error)
	purgeFunc    func(ctx context.Context, configPath string, olderThan time.Duration) (int, error)
}

func (m *mockApp) Eval(ctx context.Context, configPath, key string, opts app.EvalOptions) (any, error) {
	if m.evalFunc != nil {
		return m.evalFunc(ctx, configPath, key, opts)
	}
	return nil, nil
}

func (m *mockApp) RunBatch(ctx context.Context, configPath, key string, opts app.BatchOptions) ([]app.RunResult, error) {
	if m.runBatchFunc != nil {
		return m.runBatchFunc(ctx, configPath, key, opts)
	}
	return nil, nil
}

func (m *mockApp) Keys(ctx context.Context, configPath string) ([]app.KeyInfo, error) {
	if m.keysFunc != nil {
		return m.keysFunc(ctx, configPath)
	}
	return nil, nil
}

func (m *mockApp) CacheKey(ctx context.Context, configPath string, params domain.Params) (string, error) {
	if m.cacheKeyFunc != nil {
		return m.cacheKeyFunc(ctx, configPath, params)
	}
	return "", nil
}

func (m *mockApp) ListEntries(ctx context.Context, configPath string) ([]app.StorageEntries, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, configPath)
	}
	return nil, nil
}

func (m *mockApp) Purge(ctx context.Context, configPath string, olderThan time.Duration) (int, error) {
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, configPath, olderThan)
	}
	return 0, nil
}

func execute(t *testing.T, cli *commands.CLI, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cli.SetArgs(args)
	cli.SetOutput(out, errOut)
	err := cli.Execute(context.Background())
	return out.String(), errOut.String(), err
}

type jsonSwitch struct {
	enabled bool
}

func (j *jsonSwitch) Info(string)        {}
func (j *jsonSwitch) Warn(string)        {}
func (j *jsonSwitch) Error(error)        {}
func (j *jsonSwitch) SetJSON(value bool) { j.enabled = value }

func TestCommands_Eval(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedPath, capturedKey string
		var capturedOpts app.EvalOptions

		mock := &mockApp{
			evalFunc: func(_ context.Context, configPath, key string, opts app.EvalOptions) (any, error) {
				capturedPath, capturedKey, capturedOpts = configPath, key, opts
				return int64(18), nil
			},
		}

		out, _, err := execute(t, commands.New(mock),
			"eval", "c", "-p", "base=3", "-p", "name=abc", "-p", "scale=1.5", "--no-cache", "-c", "other.yaml")
		require.NoError(t, err)
		assert.Equal(t, "18\n", out)
		assert.Equal(t, "other.yaml", capturedPath)
		assert.Equal(t, "c", capturedKey)
		assert.True(t, capturedOpts.NoCache)
		assert.Equal(t, domain.Params{"base": 3, "name": "abc", "scale": 1.5}, capturedOpts.Params)
	})

	t.Run("uses default config path", func(t *testing.T) {
		var capturedPath string
		mock := &mockApp{
			evalFunc: func(_ context.Context, configPath, _ string, _ app.EvalOptions) (any, error) {
				capturedPath = configPath
				return map[string]any{"a": 1}, nil
			},
		}

		out, _, err := execute(t, commands.New(mock), "eval", "a")
		require.NoError(t, err)
		assert.Equal(t, domain.ConfigFileName, capturedPath)
		assert.Equal(t, "{\"a\":1}\n", out)
	})

	t.Run("rejects malformed params", func(t *testing.T) {
		mock := &mockApp{
			evalFunc: func(context.Context, string, string, app.EvalOptions) (any, error) {
				panic("should not be called")
			},
		}

		_, _, err := execute(t, commands.New(mock), "eval", "a", "-p", "novalue")
		assert.ErrorIs(t, err, domain.ErrInvalidParamFlag)
	})

	t.Run("returns error on eval failure", func(t *testing.T) {
		mock := &mockApp{
			evalFunc: func(context.Context, string, string, app.EvalOptions) (any, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, _, err := execute(t, commands.New(mock), "eval", "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("requires a key", func(t *testing.T) {
		_, _, err := execute(t, commands.New(&mockApp{}), "eval")
		assert.Error(t, err)
	})
}

func TestCommands_Run(t *testing.T) {
	var capturedOpts app.BatchOptions
	mock := &mockApp{
		runBatchFunc: func(_ context.Context, _, key string, opts app.BatchOptions) ([]app.RunResult, error) {
			capturedOpts = opts
			assert.Equal(t, "c", key)
			return []app.RunResult{
				{Params: domain.Params{"base": 1, "seed": 2}, Value: int64(10)},
				{Params: domain.Params{"base": 3}, Value: int64(18)},
			}, nil
		},
	}

	out, _, err := execute(t, commands.New(mock), "run", "c", "-j", "4")
	require.NoError(t, err)
	assert.Equal(t, 4, capturedOpts.Parallelism)
	assert.False(t, capturedOpts.NoCache)
	assert.Equal(t, "base=1 seed=2: 10\nbase=3: 18\n", out)
}

func TestCommands_Keys(t *testing.T) {
	mock := &mockApp{
		keysFunc: func(context.Context, string) ([]app.KeyInfo, error) {
			return []app.KeyInfo{
				{Key: "a", Source: "base * 2"},
				{Key: "b", Dependencies: []string{"a"}, Source: "parent.a + 3"},
			}, nil
		},
	}

	out, _, err := execute(t, commands.New(mock), "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Regexp(t, `a\s+-\s+base \* 2`, out)
	assert.Regexp(t, `b\s+a\s+parent\.a \+ 3`, out)
}

func TestCommands_Cache(t *testing.T) {
	t.Run("key", func(t *testing.T) {
		mock := &mockApp{
			cacheKeyFunc: func(_ context.Context, _ string, params domain.Params) (string, error) {
				assert.Equal(t, domain.Params{"base": 3}, params)
				return "base_3", nil
			},
		}

		out, _, err := execute(t, commands.New(mock), "cache", "key", "-p", "base=3")
		require.NoError(t, err)
		assert.Equal(t, "base_3\n", out)
	})

	t.Run("ls", func(t *testing.T) {
		mock := &mockApp{
			listFunc: func(context.Context, string) ([]app.StorageEntries, error) {
				return []app.StorageEntries{{
					Storage: domain.StorageFile,
					Entries: []domain.EntryInfo{{Key: "base_3", Size: 2048, StoredAt: time.Now().Add(-2 * time.Hour)}},
				}}, nil
			},
		}

		out, _, err := execute(t, commands.New(mock), "cache", "ls")
		require.NoError(t, err)
		assert.Contains(t, out, "base_3")
		assert.Contains(t, out, "2.0 kB")
		assert.Contains(t, out, "2 hours ago")
	})

	t.Run("purge", func(t *testing.T) {
		var capturedOlderThan time.Duration
		mock := &mockApp{
			purgeFunc: func(_ context.Context, _ string, olderThan time.Duration) (int, error) {
				capturedOlderThan = olderThan
				return 3, nil
			},
		}

		out, _, err := execute(t, commands.New(mock), "cache", "purge", "--older-than", "24h")
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, capturedOlderThan)
		assert.Equal(t, "removed 3 entries\n", out)
	})
}

func TestCommands_PersistentFlags(t *testing.T) {
	t.Run("json switches the logger", func(t *testing.T) {
		lg := &jsonSwitch{}
		_, _, err := execute(t, commands.New(&mockApp{}, commands.WithLogger(lg)), "eval", "a", "--json")
		require.NoError(t, err)
		assert.True(t, lg.enabled)
	})

	t.Run("stats prints counters", func(t *testing.T) {
		counter := metrics.NewCounter()
		mock := &mockApp{
			evalFunc: func(ctx context.Context, _, _ string, _ app.EvalOptions) (any, error) {
				counter.Add(ctx, "cogni_cache_miss", 1, "name", "cfg")
				return 1, nil
			},
		}

		_, errOut, err := execute(t, commands.New(mock, commands.WithMetrics(counter)), "eval", "a", "--stats")
		require.NoError(t, err)
		assert.Equal(t, "cogni_cache_miss{name=cfg} 1\n", errOut)
	})
}

func TestCommands_Version(t *testing.T) {
	out, _, err := execute(t, commands.New(&mockApp{}), "version")
	require.NoError(t, err)
	assert.Equal(t, "cogni version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)
}
