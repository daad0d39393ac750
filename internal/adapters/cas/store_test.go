package cas_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.trai.ch/cogni/internal/adapters/cas"
	"go.trai.ch/cogni/internal/adapters/hasher"
	"go.trai.ch/cogni/internal/core/domain"
)

// constHasher maps every key to the same file.
type constHasher struct{}

func (constHasher) Key(string) string { return "collision" }

func newStore(t *testing.T, opts ...cas.Option) *cas.Store {
	t.Helper()
	store, err := cas.NewStore(filepath.Join(t.TempDir(), domain.DefaultStorePath()), hasher.New(), opts...)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	ok, err := store.Has(ctx, "base_3")
	if err != nil || ok {
		t.Fatalf("expected missing entry, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "base_3", map[string]any{"total": 18, "name": "c"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ok, err = store.Has(ctx, "base_3")
	if err != nil || !ok {
		t.Fatalf("expected stored entry, got ok=%v err=%v", ok, err)
	}

	got, err := store.Get(ctx, "base_3")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map value, got %T", got)
	}
	if m["total"] != float64(18) || m["name"] != "c" {
		t.Errorf("unexpected value %v", m)
	}
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")

	first, err := cas.NewStore(dir, hasher.New())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := first.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := cas.NewStore(dir, hasher.New())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	got, err := second.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("expected persisted value v, got %v (err %v)", got, err)
	}

	if _, err := os.Stat(filepath.Join(dir, hasher.New().Key("k")+".json")); err != nil {
		t.Errorf("expected entry file to exist: %v", err)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := newStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestStore_KeyCollision(t *testing.T) {
	ctx := context.Background()
	store, err := cas.NewStore(t.TempDir(), constHasher{})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Set(ctx, "a", 1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ok, err := store.Has(ctx, "b")
	if err != nil || ok {
		t.Errorf("expected colliding key to be absent, got ok=%v err=%v", ok, err)
	}
	if _, err := store.Get(ctx, "b"); !errors.Is(err, domain.ErrEntryKeyMismatch) {
		t.Errorf("expected ErrEntryKeyMismatch, got %v", err)
	}
}

func TestStore_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	store, err := cas.NewStore(dir, constHasher{})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "collision.json"), []byte("{not json"), domain.FilePerm); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Has(context.Background(), "a"); !errors.Is(err, domain.ErrStoreUnmarshalFailed) {
		t.Errorf("expected ErrStoreUnmarshalFailed, got %v", err)
	}
}

func TestStore_UnencodableValue(t *testing.T) {
	store := newStore(t)
	err := store.Set(context.Background(), "k", make(chan int))
	if !errors.Is(err, domain.ErrStoreMarshalFailed) {
		t.Errorf("expected ErrStoreMarshalFailed, got %v", err)
	}
}

func TestStore_ListAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newStore(t, cas.WithClock(func() time.Time { return now }))

	if infos, err := store.List(ctx); err != nil || len(infos) != 0 {
		t.Fatalf("expected empty listing before first write, got %v (err %v)", infos, err)
	}

	if err := store.Set(ctx, "old", 1); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)
	if err := store.Set(ctx, "new", 2); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Size == 0 || info.Path == "" {
			t.Errorf("incomplete entry info %+v", info)
		}
	}

	removed, err := store.Purge(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 purged entry, got %d", removed)
	}
	if ok, _ := store.Has(ctx, "old"); ok {
		t.Error("expected old entry to be purged")
	}
	if ok, _ := store.Has(ctx, "new"); !ok {
		t.Error("expected new entry to survive")
	}

	removed, err = store.Purge(ctx, 0)
	if err != nil || removed != 1 {
		t.Errorf("expected purge of remaining entry, got %d (err %v)", removed, err)
	}
}

func TestNewStore_RequiresDir(t *testing.T) {
	if _, err := cas.NewStore("", hasher.New()); !errors.Is(err, domain.ErrInvalidStorageSpec) {
		t.Errorf("expected ErrInvalidStorageSpec, got %v", err)
	}
}

func TestStore_ConcurrentRewriteIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if err := store.Set(ctx, "base_3", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- store.Set(ctx, "base_3", map[string]any{"run": i})
		}()
		go func() {
			defer wg.Done()
			_, err := store.Get(ctx, "base_3")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent access failed: %v", err)
		}
	}

	files, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected only the entry file to remain, got %d files", len(files))
	}
}
