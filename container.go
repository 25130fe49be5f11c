package autowire

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/junioryono/autowire/annotation"
	"github.com/junioryono/autowire/internal/typeinfo"
)

// Container owns the binding table and the tag index. Both only grow: a
// binding is created at most once per identifier and is never removed.
//
// A new container binds itself under TypeOf[*Container](), so factories and
// injection points can ask for the current container like any other bean.
type Container struct {
	registry *Registry
	logger   atomic.Pointer[zerolog.Logger]

	mu       sync.RWMutex
	bindings map[ID]*Binding
	order    []*Binding
	tags     map[string][]*Binding
}

// New creates a container. Without WithRegistry it gets a registry of its own,
// reachable through Registry.
func New(opts ...Option) *Container {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	c := &Container{
		registry: o.registry,
		bindings: make(map[ID]*Binding),
		tags:     make(map[string][]*Binding),
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if o.logger != nil {
		c.SetLogger(*o.logger)
	} else {
		c.SetLogger(zerolog.Nop())
	}

	c.Bind(TypeOf[*Container]()).ToValue(c)
	return c
}

// Registry returns the metadata registry the container reads markers from.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Logger returns the container's logger.
func (c *Container) Logger() *zerolog.Logger {
	return c.logger.Load()
}

// SetLogger replaces the container's logger. Events already in progress may
// still go to the previous one.
func (c *Container) SetLogger(logger zerolog.Logger) {
	c.logger.Store(&logger)
}

// Bind returns the binding for id, creating an unbound one on first use.
// It panics if id is nil or not comparable.
func (c *Container) Bind(id ID) *Binding {
	if err := validateID(id); err != nil {
		panic(err)
	}

	c.mu.RLock()
	b, ok := c.bindings[id]
	c.mu.RUnlock()
	if ok {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check pattern
	if b, ok := c.bindings[id]; ok {
		return b
	}

	b = newBinding(c, id)
	c.bindings[id] = b
	c.order = append(c.order, b)

	c.Logger().Debug().Str("id", formatID(id)).Msg("binding created")
	return b
}

// Lookup returns the binding for id without creating one.
func (c *Container) Lookup(id ID) (*Binding, bool) {
	if validateID(id) != nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[id]
	return b, ok
}

// Has reports whether id has a binding.
func (c *Container) Has(id ID) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Bindings returns every binding in creation order.
func (c *Container) Bindings() []*Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Tag adds the binding of id to each tag group. A binding appears at most
// once per tag; groups keep insertion order.
func (c *Container) Tag(id ID, keys ...string) error {
	b, ok := c.Lookup(id)
	if !ok {
		return &UnregisteredError{ID: id, Operation: "tag"}
	}

	c.tagBinding(b, keys...)
	return nil
}

func (c *Container) tagBinding(b *Binding, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if slices.Contains(c.tags[key], b) {
			continue
		}
		c.tags[key] = append(c.tags[key], b)
		c.Logger().Debug().Str("id", formatID(b.id)).Str("tag", key).Msg("binding tagged")
	}
}

// Tags returns the known tag names, sorted.
func (c *Container) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.tags))
	for key := range c.tags {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// GetBean returns the value bound to id.
func (c *Container) GetBean(ctx context.Context, id ID) (any, error) {
	b, ok := c.Lookup(id)
	if !ok {
		return nil, &UnregisteredError{ID: id, Operation: "get"}
	}
	return b.Get(ctx)
}

// GetBeansByTag resolves every binding under key concurrently and returns
// the values in tag order. An unknown tag yields an empty slice.
func (c *Container) GetBeansByTag(ctx context.Context, key string) ([]any, error) {
	c.mu.RLock()
	group := slices.Clone(c.tags[key])
	c.mu.RUnlock()

	out := make([]any, len(group))
	if len(group) == 0 {
		return out, nil
	}

	var g errgroup.Group
	for i, b := range group {
		g.Go(func() error {
			value, err := b.Get(ctx)
			if err != nil {
				return err
			}
			out[i] = value
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Register binds the marked type t. The binding is keyed by the identifier
// declared with Component, or by the pointer type *T otherwise, constructs a
// new *T and carries the declared tags. It returns nil when t was never marked.
func (c *Container) Register(t reflect.Type) *Binding {
	var (
		id   ID
		tags []string
	)
	found := c.registry.Inspect(t, func(rec *Injectable) {
		id = rec.ID
		tags = slices.Clone(rec.Tags)
	})
	if !found {
		return nil
	}

	if id == nil {
		id = reflect.PointerTo(typeinfo.Normalize(t))
	}

	b := c.Bind(id).To(t).Tag(tags...)
	c.Logger().Debug().
		Str("id", formatID(id)).
		Strs("tags", tags).
		Msg("component registered")
	return b
}

// RegisterComponents registers every type that carries a type-level marker,
// in the order the markers were first applied.
func (c *Container) RegisterComponents() []*Binding {
	var out []*Binding
	for _, t := range c.registry.Targets(annotation.Class) {
		if b := c.Register(t); b != nil {
			out = append(out, b)
		}
	}
	return out
}
