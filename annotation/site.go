package annotation

import (
	"fmt"
	"reflect"

	"github.com/junioryono/autowire/internal/typeinfo"
)

// Scope is the declaration scope a marker was applied at.
type Scope int

const (
	// Class marks the type itself.
	Class Scope = iota

	// Property marks a struct field.
	Property

	// Method marks a method of the type's pointer method set.
	Method

	// Parameter marks one argument of a method.
	Parameter
)

// String returns the string representation of the Scope.
func (s Scope) String() string {
	switch s {
	case Class:
		return "Class"
	case Property:
		return "Property"
	case Method:
		return "Method"
	case Parameter:
		return "Parameter"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Site is the call site a marker is applied to. Build one with OnType,
// OnField, OnMethod or OnParam rather than by hand.
type Site struct {
	// Target is the marked type. Pointer levels are ignored.
	Target reflect.Type

	// Member is the field or method name; empty for type-level sites.
	Member string

	// Descriptor is set for method and parameter sites.
	Descriptor *reflect.Method

	// ParamIndex is the argument index for parameter sites, -1 otherwise.
	// The receiver is not counted.
	ParamIndex int
}

// OnType returns the type-level site of T.
func OnType[T any]() Site {
	return Site{Target: reflect.TypeFor[T](), ParamIndex: -1}
}

// OnField returns the property site for the named field of T.
func OnField[T any](name string) Site {
	return Site{Target: reflect.TypeFor[T](), Member: name, ParamIndex: -1}
}

// OnMethod returns the method site for the named method of *T.
// A method that cannot be found leaves Descriptor nil and fails when applied.
func OnMethod[T any](name string) Site {
	return methodSite(reflect.TypeFor[T](), name, -1)
}

// OnParam returns the parameter site for argument index of the named method of *T.
func OnParam[T any](name string, index int) Site {
	return methodSite(reflect.TypeFor[T](), name, index)
}

// SiteOf builds a site from a runtime type. An empty member yields a type-level
// site, a member naming a method yields a method site, anything else a property site.
func SiteOf(target reflect.Type, member string) Site {
	if member == "" || target == nil {
		return Site{Target: target, ParamIndex: -1}
	}
	if info := typeinfo.Of(target); info != nil {
		if _, ok := info.Method(member); ok {
			return methodSite(target, member, -1)
		}
	}
	return Site{Target: target, Member: member, ParamIndex: -1}
}

func methodSite(target reflect.Type, name string, index int) Site {
	site := Site{Target: target, Member: name, ParamIndex: index}
	if info := typeinfo.Of(target); info != nil {
		if m, ok := info.Method(name); ok {
			site.Descriptor = &m
		}
	}
	return site
}

// Scope classifies the site: no member is a type-level site, a member with no
// descriptor a property, a descriptor a method, and a parameter index a parameter.
func (s Site) Scope() Scope {
	switch {
	case s.Member == "":
		return Class
	case s.ParamIndex >= 0:
		return Parameter
	case s.Descriptor != nil:
		return Method
	default:
		return Property
	}
}

// validate checks that the member named by the site exists and can be injected.
func (s Site) validate() error {
	if s.Target == nil {
		return ErrNilTarget
	}
	info := typeinfo.Of(s.Target)

	switch s.Scope() {
	case Property:
		f, ok := info.Field(s.Member)
		if !ok {
			return ErrMemberNotFound
		}
		if !f.Exported {
			return ErrMemberNotExported
		}
	case Method, Parameter:
		if s.Descriptor == nil {
			return ErrMemberNotFound
		}
		// The method type includes the receiver.
		if s.ParamIndex >= 0 && s.ParamIndex >= s.Descriptor.Type.NumIn()-1 {
			return ErrParamOutOfRange
		}
	}

	return nil
}

func (s Site) String() string {
	name := "<nil>"
	if s.Target != nil {
		name = typeinfo.Of(s.Target).Name
	}
	switch s.Scope() {
	case Class:
		return name
	case Parameter:
		return fmt.Sprintf("%s.%s#%d", name, s.Member, s.ParamIndex)
	default:
		return name + "." + s.Member
	}
}
