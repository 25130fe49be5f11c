package autowire

import (
	"context"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/junioryono/autowire/internal/graph"
	"github.com/junioryono/autowire/internal/typeinfo"
)

// Factory produces the value of a binding. It receives the owning container
// so it can fetch other beans.
type Factory func(ctx context.Context, c *Container) (any, error)

// Binding couples one identifier to a construction recipe and a lifetime.
//
// A binding starts unbound, becomes bound once a factory is set with To,
// ToSelf, ToValue or ToFactory, and a singleton binding is realized once its
// first creation has been published. All methods are safe for concurrent use
// and the setters return the binding for chaining:
//
//	c.Bind("clock").ToFactory(newClock).IsSingleton(false).Tag("infra")
type Binding struct {
	id        ID
	container *Container

	mu       sync.Mutex
	factory  Factory
	target   reflect.Type // concrete type produced, when known
	lifetime Lifetime
	result   *result // singleton only; published before the factory runs
}

// result is one creation, possibly still in flight.
type result struct {
	done  chan struct{}
	value any
	err   error
}

func (r *result) wait(ctx context.Context) (any, error) {
	select {
	case <-r.done:
		return r.value, r.err
	default:
	}

	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newBinding(c *Container, id ID) *Binding {
	return &Binding{
		id:        id,
		container: c,
		lifetime:  Singleton,
	}
}

// ID returns the identifier of the binding.
func (b *Binding) ID() ID {
	return b.id
}

// Lifetime returns the current lifetime policy.
func (b *Binding) Lifetime() Lifetime {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lifetime
}

// Target returns the concrete type the binding produces, or nil when the
// binding uses an arbitrary factory.
func (b *Binding) Target() reflect.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

// IsBound reports whether a factory is set.
func (b *Binding) IsBound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.factory != nil
}

// IsRealized reports whether a singleton value was created successfully and
// is cached.
func (b *Binding) IsRealized() bool {
	b.mu.Lock()
	r := b.result
	b.mu.Unlock()

	if r == nil {
		return false
	}
	select {
	case <-r.done:
		return r.err == nil
	default:
		return false
	}
}

// To binds the identifier to a new zero value of t, returned as a pointer.
// Pointer levels of t are ignored, so To(T) and To(*T) both produce *T.
func (b *Binding) To(t reflect.Type) *Binding {
	base := typeinfo.Normalize(t)

	b.mu.Lock()
	defer b.mu.Unlock()

	if base != nil && base.Kind() != reflect.Interface {
		b.target = reflect.PointerTo(base)
	} else {
		b.target = nil
	}
	b.factory = func(context.Context, *Container) (any, error) {
		if base == nil || base.Kind() == reflect.Interface {
			return nil, &InstantiationError{Type: t}
		}
		return reflect.New(base).Interface(), nil
	}
	b.result = nil
	return b
}

// ToSelf binds a type identifier to a new instance of that type.
// Bindings whose identifier is not a reflect.Type fail at creation time.
func (b *Binding) ToSelf() *Binding {
	if t, ok := b.id.(reflect.Type); ok {
		return b.To(t)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = nil
	b.factory = func(context.Context, *Container) (any, error) {
		return nil, &InstantiationError{ID: b.id}
	}
	b.result = nil
	return b
}

// ToValue binds the identifier to a fixed value. Every request returns v.
func (b *Binding) ToValue(v any) *Binding {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.target = nil
	if v != nil {
		b.target = reflect.TypeOf(v)
	}
	b.factory = func(context.Context, *Container) (any, error) {
		return v, nil
	}
	b.result = nil
	return b
}

// ToFactory binds the identifier to fn. A nil fn leaves the binding unbound.
func (b *Binding) ToFactory(fn Factory) *Binding {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.target = nil
	b.factory = fn
	b.result = nil
	return b
}

// IsSingleton switches between the Singleton and Transient lifetimes.
// An already cached value is kept.
func (b *Binding) IsSingleton(flag bool) *Binding {
	if flag {
		return b.WithLifetime(Singleton)
	}
	return b.WithLifetime(Transient)
}

// WithLifetime sets the lifetime policy. An already cached value is kept.
func (b *Binding) WithLifetime(l Lifetime) *Binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lifetime = l
	return b
}

// Tag adds the binding to the given tag groups of its container.
func (b *Binding) Tag(keys ...string) *Binding {
	b.container.tagBinding(b, keys...)
	return b
}

// Create runs the factory once, bypassing the singleton cache. Values that
// may carry injection points are autowired with Container.Resolve before
// they are returned. Factory errors are returned unchanged.
func (b *Binding) Create(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkCycle(ctx, b.id); err != nil {
		return nil, err
	}

	b.mu.Lock()
	factory := b.factory
	b.mu.Unlock()

	if factory == nil {
		return nil, &UnboundError{ID: b.id}
	}

	log := b.container.Logger()
	start := time.Now()
	ctx = withCreation(ctx, b.id)

	value, err := b.invoke(ctx, factory)
	if err != nil {
		log.Debug().Err(err).Str("id", formatID(b.id)).Msg("bean creation failed")
		return nil, err
	}

	if needsResolve(value) {
		if err := b.container.Resolve(ctx, value); err != nil {
			log.Debug().Err(err).Str("id", formatID(b.id)).Msg("bean autowiring failed")
			return nil, err
		}
	}

	log.Debug().
		Str("id", formatID(b.id)).
		Dur("duration", time.Since(start)).
		Msg("bean created")
	return value, nil
}

func (b *Binding) invoke(ctx context.Context, factory Factory) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = &FactoryPanicError{ID: b.id, Panic: r, Stack: debug.Stack()}
		}
	}()

	return factory(ctx, b.container)
}

// Get returns the value of the binding.
//
// For singletons the first call publishes its in-flight creation before the
// factory runs, so every concurrent caller waits for that same creation and
// the factory runs once. A failed creation is dropped once it settles, which
// lets a later call retry. Transient bindings create a new value every time.
//
// Every caller, the first included, gives up when its own ctx is done; the
// creation itself keeps running and later callers still share it.
func (b *Binding) Get(ctx context.Context) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkCycle(ctx, b.id); err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.lifetime == Transient {
		b.mu.Unlock()
		return b.Create(ctx)
	}
	if r := b.result; r != nil {
		b.mu.Unlock()
		return r.wait(ctx)
	}
	r := &result{done: make(chan struct{})}
	b.result = r
	b.mu.Unlock()

	// The creation is shared, so it runs apart from this caller and no
	// single caller's cancellation ends it.
	go func() {
		r.value, r.err = b.Create(context.WithoutCancel(ctx))
		if r.err != nil {
			b.mu.Lock()
			if b.result == r {
				b.result = nil
			}
			b.mu.Unlock()
		}
		close(r.done)
	}()

	return r.wait(ctx)
}

// needsResolve reports whether v may carry injection points.
func needsResolve(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if typeinfo.IsPrimitive(rv.Kind()) {
		return false
	}
	if typeinfo.IsNilable(rv.Type()) && rv.IsNil() {
		return false
	}
	return true
}

// creationPath is the chain of bindings being created on the current call
// path, innermost first.
type creationPath struct {
	id     ID
	parent *creationPath
}

type creationPathKey struct{}

func withCreation(ctx context.Context, id ID) context.Context {
	parent, _ := ctx.Value(creationPathKey{}).(*creationPath)
	return context.WithValue(ctx, creationPathKey{}, &creationPath{id: id, parent: parent})
}

// checkCycle fails when id is already being created further up the call path.
func checkCycle(ctx context.Context, id ID) error {
	p, _ := ctx.Value(creationPathKey{}).(*creationPath)

	var chain []graph.NodeKey
	for ; p != nil; p = p.parent {
		chain = append(chain, graph.NodeKey{ID: p.id})
		if p.id != id {
			continue
		}
		// chain is innermost first; report it outermost first.
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
		return &CircularDependencyError{Node: graph.NodeKey{ID: id}, Path: chain}
	}
	return nil
}
