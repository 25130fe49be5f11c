package autowire

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/junioryono/autowire/annotation"
	"github.com/junioryono/autowire/internal/typeinfo"
)

// TagName is the struct tag read by ScanTags.
const TagName = "autowire"

// Injectable is the metadata record the container keeps for a marked type.
type Injectable struct {
	// ID is the identifier declared with Component; nil when the type only
	// has member markers.
	ID ID

	// Tags are the tag groups declared with Component.
	Tags []string

	// Properties maps a field name to the identifier injected into it.
	Properties map[string]ID

	// Methods maps a method name to the identifier whose value is passed as
	// the method's only argument.
	Methods map[string]ID
}

func newInjectable() *Injectable {
	return &Injectable{
		Properties: make(map[string]ID),
		Methods:    make(map[string]ID),
	}
}

// injection is one injection point of a record.
type injection struct {
	member string
	id     ID
	method bool
}

// injections returns the record's injection points ordered by member name.
func (rec *Injectable) injections() []injection {
	out := make([]injection, 0, len(rec.Properties)+len(rec.Methods))
	for member, id := range rec.Properties {
		out = append(out, injection{member: member, id: id})
	}
	for member, id := range rec.Methods {
		out = append(out, injection{member: member, id: id, method: true})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].member != out[j].member {
			return out[i].member < out[j].member
		}
		return !out[i].method && out[j].method
	})
	return out
}

// Registry holds the injection records of marked types. Create one at
// startup, apply markers to it, and hand it to the container with WithRegistry.
//
//	reg := autowire.NewRegistry()
//	err := errors.Join(
//	    reg.Mark(annotation.OnType[UserService](), reg.Component(autowire.WithTags("service"))),
//	    reg.Mark(annotation.OnField[UserService]("DB"), reg.Autowired("db")),
//	    reg.Mark(annotation.OnMethod[UserService]("SetClock"), reg.Autowired(nil)),
//	)
//	c := autowire.New(autowire.WithRegistry(reg))
//	c.RegisterComponents()
type Registry struct {
	*annotation.Registry[Injectable]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{Registry: annotation.New(newInjectable)}
}

// ComponentOption configures the Component marker.
type ComponentOption func(*componentOptions)

type componentOptions struct {
	id   ID
	tags []string
}

// WithID declares the identifier the component is bound under.
func WithID(id ID) ComponentOption {
	return func(o *componentOptions) {
		o.id = id
	}
}

// WithTags declares tag groups for the component.
func WithTags(tags ...string) ComponentOption {
	return func(o *componentOptions) {
		o.tags = append(o.tags, tags...)
	}
}

// Component returns a type-level marker declaring the type as a bindable
// component. Without WithID the component is identified by its pointer
// type, which is what Register binds it to construct.
func (r *Registry) Component(opts ...ComponentOption) annotation.Marker {
	o := &componentOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return r.Export(func(rec *Injectable, occ annotation.Occurrence) error {
		if occ.Scope != annotation.Class {
			return annotation.ErrScopeNotSupported
		}

		id := o.id
		if id == nil {
			id = reflect.PointerTo(occ.Target)
		}
		if err := validateID(id); err != nil {
			return err
		}

		rec.ID = id
		for _, tag := range o.tags {
			if !slices.Contains(rec.Tags, tag) {
				rec.Tags = append(rec.Tags, tag)
			}
		}
		return nil
	})
}

// Autowired returns a member-level marker declaring an injection point.
// On a field the resolved value is assigned; on a method the method is called
// with the resolved value as its only argument. A nil id means the member
// name is the identifier. Parameter sites are accepted and ignored.
func (r *Registry) Autowired(id ID) annotation.Marker {
	return r.Export(func(rec *Injectable, occ annotation.Occurrence) error {
		key := id
		if key == nil {
			key = occ.Member
		}
		if err := validateID(key); err != nil {
			return err
		}

		switch occ.Scope {
		case annotation.Property:
			rec.Properties[occ.Member] = key
		case annotation.Method:
			if err := checkInjectableMethod(occ.Descriptor.Type); err != nil {
				return err
			}
			rec.Methods[occ.Member] = key
		case annotation.Parameter:
		default:
			return annotation.ErrScopeNotSupported
		}
		return nil
	})
}

// checkInjectableMethod accepts any method taking exactly one argument.
// Results are ignored except a trailing error, which fails the injection.
func checkInjectableMethod(t reflect.Type) error {
	if t.NumIn() != 2 || t.IsVariadic() {
		return fmt.Errorf("%w: method must take exactly one argument", ErrInvalidInjection)
	}
	return nil
}

var errorType = reflect.TypeFor[error]()

// ScanTags applies Autowired to every field of t carrying an autowire struct
// tag, including fields promoted from embedded structs:
//
//	type Handler struct {
//	    DB    *sql.DB  `autowire:"db"`
//	    Clock Clock    `autowire:""`  // identifier "Clock"
//	    Cache *Cache   `autowire:"-"` // ignored
//	}
func (r *Registry) ScanTags(t reflect.Type) error {
	info := typeinfo.Of(t)
	if info == nil {
		return &annotation.SiteError{Cause: annotation.ErrNilTarget}
	}

	for _, f := range info.Fields() {
		value, ok := f.Tag.Lookup(TagName)
		if !ok || value == "-" {
			continue
		}

		var id ID
		if value != "" {
			id = value
		}
		if err := r.Mark(annotation.SiteOf(t, f.Name), r.Autowired(id)); err != nil {
			return err
		}
	}
	return nil
}
