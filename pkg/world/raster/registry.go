package raster

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Loader produces a fully populated Map for an identifier. Implementations
// must be safe for concurrent use.
type Loader interface {
	Load(ctx context.Context, id ID, kind Kind) (*Map, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id ID, kind Kind) (*Map, error)

func (f LoaderFunc) Load(ctx context.Context, id ID, kind Kind) (*Map, error) {
	return f(ctx, id, kind)
}

type refKey struct {
	id   ID
	kind Kind
}

// Registry hands out one Ref per (identifier, kind) pair. Entries are created
// on first request and live as long as the Registry; a map is decoded at most
// once no matter how many goroutines initialise its Ref concurrently.
type Registry struct {
	loader Loader

	mu   sync.Mutex
	refs map[refKey]*Ref
}

// NewRegistry creates a Registry backed by loader.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader: loader,
		refs:   make(map[refKey]*Ref),
	}
}

// Acquire returns the Ref for (id, kind), creating an uninitialised one if
// this is the first request.
func (r *Registry) Acquire(id ID, kind Kind) (*Ref, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	key := refKey{id: id, kind: kind}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.refs[key]; ok {
		return ref, nil
	}
	ref := &Ref{id: id, kind: kind, loader: r.loader}
	r.refs[key] = ref
	return ref, nil
}

// Len returns the number of entries created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refs)
}

// Ref is a lazily loaded map. The first Init call loads the map; later calls
// return the same result, including a failure. Failed loads are not retried.
type Ref struct {
	id     ID
	kind   Kind
	loader Loader

	once sync.Once
	m    atomic.Pointer[Map]
	err  error
}

func (r *Ref) ID() ID     { return r.id }
func (r *Ref) Kind() Kind { return r.kind }

// Init loads the map if no earlier call did. The outcome is kept for every
// later call, so the load ignores cancellation of ctx and only a failure of
// the resource itself sticks.
func (r *Ref) Init(ctx context.Context) (*Map, error) {
	r.once.Do(func() {
		if r.loader == nil {
			r.err = fmt.Errorf("%w: %s: no loader configured", ErrNotFound, r.id)
			return
		}
		m, err := r.loader.Load(context.WithoutCancel(ctx), r.id, r.kind)
		if err != nil {
			r.err = fmt.Errorf("load %s map %s: %w", r.kind, r.id, err)
			return
		}
		r.m.Store(m)
	})
	return r.m.Load(), r.err
}

// Map returns the loaded map, or false when Init has not succeeded.
func (r *Ref) Map() (*Map, bool) {
	m := r.m.Load()
	return m, m != nil
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry. Unless SetDefault ran first it
// loads images from the "resources" directory.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry(NewImageLoader("resources"))
	}
	return defaultRegistry
}

// SetDefault replaces the process-wide registry. Call it once during start-up
// before any generator acquires maps.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}
