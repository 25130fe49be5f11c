// Package typeinfo caches the reflection facts the injector needs about a
// marked type: its settable fields and the method set of its pointer.
package typeinfo

import (
	"reflect"
	"slices"
	"sync"

	"github.com/muir/reflectutils"
)

// cache is a thread-safe map[reflect.Type]*Info.
var cache sync.Map

// Info holds pre-computed reflection information about a normalized type.
type Info struct {
	// Type is the normalized (non-pointer) type.
	Type reflect.Type

	// Pointer is the pointer type whose method set is searched.
	Pointer reflect.Type

	// Name is a human readable name for error messages.
	Name string

	fields  map[string]Field
	methods map[string]reflect.Method
}

// Field describes one struct field reachable from the root type,
// including promoted fields of embedded structs.
type Field struct {
	Name     string
	Index    []int
	Type     reflect.Type
	Tag      reflect.StructTag
	Exported bool
}

// Normalize strips every pointer level so that a type and pointers to it
// share one identity.
func Normalize(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Of returns cached type information or creates it if not present.
func Of(t reflect.Type) *Info {
	t = Normalize(t)
	if t == nil {
		return nil
	}

	if cached, ok := cache.Load(t); ok {
		return cached.(*Info)
	}

	actual, _ := cache.LoadOrStore(t, build(t))
	return actual.(*Info)
}

func build(t reflect.Type) *Info {
	info := &Info{
		Type:    t,
		Name:    reflectutils.TypeName(t),
		fields:  make(map[string]Field),
		methods: make(map[string]reflect.Method),
	}

	if t.Kind() != reflect.Interface {
		info.Pointer = reflect.PointerTo(t)
		for i := 0; i < info.Pointer.NumMethod(); i++ {
			m := info.Pointer.Method(i)
			info.methods[m.Name] = m
		}
	}

	if t.Kind() == reflect.Struct {
		reflectutils.WalkStructElements(t, func(f reflect.StructField) bool {
			existing, ok := info.fields[f.Name]
			// Shallower fields shadow promoted ones, as in Go selectors.
			if !ok || len(f.Index) < len(existing.Index) {
				info.fields[f.Name] = Field{
					Name:     f.Name,
					Index:    f.Index,
					Type:     f.Type,
					Tag:      f.Tag,
					Exported: f.IsExported(),
				}
			}
			// Only embedded structs promote their fields.
			return f.Anonymous
		})
	}

	return info
}

// Field looks up a field by name.
func (i *Info) Field(name string) (Field, bool) {
	f, ok := i.fields[name]
	return f, ok
}

// Method looks up an exported method of the pointer type by name.
func (i *Info) Method(name string) (reflect.Method, bool) {
	m, ok := i.methods[name]
	return m, ok
}

// Fields returns every visible field ordered by index path.
func (i *Info) Fields() []Field {
	out := make([]Field, 0, len(i.fields))
	for _, f := range i.fields {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b Field) int {
		return slices.Compare(a.Index, b.Index)
	})
	return out
}

// IsNilable reports whether a value of type t may be nil.
func IsNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether values of kind k can never carry injection points.
func IsPrimitive(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128, reflect.String:
		return true
	default:
		return false
	}
}
