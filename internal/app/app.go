// Package app implements the application layer for cogni.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/bool64/stats"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	factory      ports.StorageFactory
	logger       ports.Logger
	tracker      stats.Tracker
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, factory ports.StorageFactory, log ports.Logger, tracker stats.Tracker) *App {
	if tracker == nil {
		tracker = stats.NoOp{}
	}
	return &App{
		configLoader: loader,
		factory:      factory,
		logger:       log,
		tracker:      tracker,
	}
}

// EvalOptions configures the Eval method.
type EvalOptions struct {
	Params  domain.Params
	NoCache bool
}

// Eval computes key of the definition at configPath.
func (a *App) Eval(ctx context.Context, configPath, key string, opts EvalOptions) (any, error) {
	mode := modeCached
	if opts.NoCache {
		mode = modeUncached
	}
	session, err := a.openSession(ctx, configPath, mode)
	if err != nil {
		return nil, err
	}
	return session.Eval(ctx, key, opts.Params)
}

// BatchOptions configures the RunBatch method.
type BatchOptions struct {
	// Parallelism bounds the concurrent runs. Zero or less uses the number of CPUs.
	Parallelism int
	NoCache     bool
}

// RunResult is the outcome of one configured run.
type RunResult struct {
	Params domain.Params
	Value  any
}

// RunBatch computes key for every run of the definition at configPath.
// Results are returned in run order. The first failing run cancels the rest.
func (a *App) RunBatch(ctx context.Context, configPath, key string, opts BatchOptions) ([]RunResult, error) {
	mode := modeCached
	if opts.NoCache {
		mode = modeUncached
	}
	session, err := a.openSession(ctx, configPath, mode)
	if err != nil {
		return nil, err
	}

	runs := session.Definition.Runs
	if len(runs) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoRunsConfigured, "cannot run batch"), "config", configPath)
	}

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]RunResult, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, params := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := session.Eval(gctx, key, params)
			if err != nil {
				a.logger.Warn(fmt.Sprintf("run %d failed", i))
				return zerr.With(err, "run", i)
			}
			results[i] = RunResult{Params: params, Value: value}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// KeyInfo describes one compute function of a definition.
type KeyInfo struct {
	Key          string
	Dependencies []string
	Source       string
}

// Keys lists the compute functions of the definition at configPath in definition order.
func (a *App) Keys(ctx context.Context, configPath string) ([]KeyInfo, error) {
	session, err := a.openSession(ctx, configPath, modeUncached)
	if err != nil {
		return nil, err
	}

	infos := make([]KeyInfo, 0, len(session.Definition.Compute))
	for _, cd := range session.Definition.Compute {
		deps, err := session.Evaluator.Dependencies(cd.Key)
		if err != nil {
			return nil, err
		}
		infos = append(infos, KeyInfo{Key: cd.Key, Dependencies: deps, Source: cd.Source})
	}
	return infos, nil
}

// CacheKey derives the cache key params map to under the definition at configPath.
func (a *App) CacheKey(ctx context.Context, configPath string, params domain.Params) (string, error) {
	session, err := a.openSession(ctx, configPath, modeKeysOnly)
	if err != nil {
		return "", err
	}
	if session.Cache == nil {
		return "", zerr.With(zerr.Wrap(domain.ErrCachingDisabled, "cannot derive cache key"), "config", configPath)
	}
	return session.Cache.GenerateCacheKey(params), nil
}

// StorageEntries holds the entries listed from one storage.
type StorageEntries struct {
	Storage string
	Entries []domain.EntryInfo
}

// ListEntries lists the persisted entries of every storage that supports listing.
func (a *App) ListEntries(ctx context.Context, configPath string) ([]StorageEntries, error) {
	storages, err := a.openStorages(ctx, configPath)
	if err != nil {
		return nil, err
	}

	var out []StorageEntries
	for _, st := range storages {
		m, ok := st.(ports.StorageMaintainer)
		if !ok {
			continue
		}
		entries, err := m.List(ctx)
		if err != nil {
			return nil, zerr.With(err, "storage", storageName(st))
		}
		out = append(out, StorageEntries{Storage: storageName(st), Entries: entries})
	}
	return out, nil
}

// Purge removes entries stored longer than olderThan ago from every storage that supports it.
// Zero removes all entries. It returns the number of entries removed.
func (a *App) Purge(ctx context.Context, configPath string, olderThan time.Duration) (int, error) {
	storages, err := a.openStorages(ctx, configPath)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, st := range storages {
		m, ok := st.(ports.StorageMaintainer)
		if !ok {
			continue
		}
		n, err := m.Purge(ctx, olderThan)
		if err != nil {
			return total, zerr.With(err, "storage", storageName(st))
		}
		a.logger.Info(fmt.Sprintf("purged %d entries from %s storage", n, storageName(st)))
		total += n
	}
	return total, nil
}

func (a *App) openStorages(ctx context.Context, configPath string) ([]ports.Storage, error) {
	def, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, err
	}
	return a.storagesFor(ctx, configPath, def)
}

func (a *App) storagesFor(ctx context.Context, configPath string, def *domain.Definition) ([]ports.Storage, error) {
	root := filepath.Dir(configPath)
	storages := make([]ports.Storage, 0, len(def.Storages))
	for i, spec := range def.Storages {
		st, err := a.factory.Open(ctx, root, spec)
		if err != nil {
			return nil, zerr.With(err, "storage", i)
		}
		storages = append(storages, st)
	}
	return storages, nil
}

type namer interface {
	Name() string
}

func storageName(st ports.Storage) string {
	if n, ok := st.(namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", st)
}
