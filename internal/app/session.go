package app

import (
	"context"

	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/engine/cachestore"
	"go.trai.ch/cogni/internal/engine/evaluator"
)

type sessionMode int

const (
	// modeUncached evaluates without a cache store.
	modeUncached sessionMode = iota
	// modeKeysOnly builds the cache store without opening storages.
	modeKeysOnly
	// modeCached builds the cache store with every configured storage.
	modeCached
)

// Session is a loaded definition ready for evaluation.
type Session struct {
	Definition *domain.Definition
	Evaluator  *evaluator.Evaluator
	// Cache is nil when the definition has no cache section or caching is disabled.
	Cache *cachestore.Store
}

// Eval computes key for params, through the cache store when there is one.
// Cache defaults apply in both cases.
func (s *Session) Eval(ctx context.Context, key string, params domain.Params) (any, error) {
	if s.Cache != nil {
		return s.Cache.Get(ctx, key, params)
	}
	var defaults domain.Params
	if s.Definition.Cache != nil {
		defaults = s.Definition.Cache.Defaults
	}
	return s.Evaluator.Get(key, domain.MergeParams(defaults, params))
}

// OpenSession loads the definition at configPath and builds its evaluator.
// Unless noCache is set, a definition with a cache section also gets its cache store
// backed by the configured storages.
func (a *App) OpenSession(ctx context.Context, configPath string, noCache bool) (*Session, error) {
	mode := modeCached
	if noCache {
		mode = modeUncached
	}
	return a.openSession(ctx, configPath, mode)
}

func (a *App) openSession(ctx context.Context, configPath string, mode sessionMode) (*Session, error) {
	def, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, err
	}

	ev := evaluator.New(evaluator.WithParams(def.Params...))
	for _, cd := range def.Compute {
		if err := ev.Define(cd.Key, cd.Fn, cd.Dependencies...); err != nil {
			return nil, err
		}
	}

	session := &Session{Definition: def, Evaluator: ev}
	if def.Cache == nil || mode == modeUncached {
		return session, nil
	}

	opts := []cachestore.Option{
		cachestore.WithDefaults(def.Cache.Defaults),
		cachestore.WithStats(a.tracker),
		cachestore.WithName(configPath),
	}
	if def.Cache.ScopeByResult {
		opts = append(opts, cachestore.WithResultKeyScope())
	}
	store, err := cachestore.New(ev, def.Cache.Keys, opts...)
	if err != nil {
		return nil, err
	}

	if mode == modeCached {
		storages, err := a.storagesFor(ctx, configPath, def)
		if err != nil {
			return nil, err
		}
		for _, st := range storages {
			store.AddStorage(st)
		}
	}

	session.Cache = store
	return session, nil
}
