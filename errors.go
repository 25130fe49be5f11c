package autowire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/autowire/internal/graph"
	"github.com/junioryono/autowire/internal/typeinfo"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below unwrap to these, so callers can test with errors.Is.

var (
	// Binding errors.
	ErrUnbound         = errors.New("binding has no factory")
	ErrUnregistered    = errors.New("identifier is not registered")
	ErrNotInstantiable = errors.New("type cannot be instantiated")

	// Identifier errors.
	ErrNilIdentifier           = errors.New("identifier cannot be nil")
	ErrIdentifierNotComparable = errors.New("identifier must be comparable")

	// Injection errors.
	ErrNotAddressable   = errors.New("instance with injection points must be a non-nil pointer")
	ErrInvalidInjection = errors.New("member cannot be injected")
)

var (
	_ error = (*UnboundError)(nil)
	_ error = (*UnregisteredError)(nil)
	_ error = (*InstantiationError)(nil)
	_ error = (*InjectionError)(nil)
	_ error = (*TypeMismatchError)(nil)
	_ error = (*FactoryPanicError)(nil)
	_ error = (*CircularDependencyError)(nil)
)

// UnboundError is returned when a binding is asked to create a value before
// any of To, ToSelf, ToValue or ToFactory was called.
type UnboundError struct {
	ID ID
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("binding %s has no factory (call To, ToSelf, ToValue or ToFactory)", formatID(e.ID))
}

func (e *UnboundError) Unwrap() error {
	return ErrUnbound
}

// UnregisteredError is returned when an identifier has no binding.
type UnregisteredError struct {
	ID        ID
	Operation string // "get", "tag", "validate"
	Requester ID     // set by Validate: the binding that declared the dependency
}

func (e *UnregisteredError) Error() string {
	if e.Requester != nil {
		return fmt.Sprintf("%s: %s is not registered (required by %s)", e.Operation, formatID(e.ID), formatID(e.Requester))
	}
	return fmt.Sprintf("%s: %s is not registered", e.Operation, formatID(e.ID))
}

func (e *UnregisteredError) Unwrap() error {
	return ErrUnregistered
}

// InstantiationError is returned by To and ToSelf bindings that have no
// concrete type to construct.
type InstantiationError struct {
	Type reflect.Type
	ID   ID // set by ToSelf when the identifier is not a type
}

func (e *InstantiationError) Error() string {
	if e.Type == nil && e.ID != nil {
		return fmt.Sprintf("cannot construct %s: identifier is not a type", formatID(e.ID))
	}
	return fmt.Sprintf("cannot construct %s: only concrete types can be instantiated", formatType(e.Type))
}

func (e *InstantiationError) Unwrap() error {
	return ErrNotInstantiable
}

// InjectionError reports a structural problem with one injection point:
// the member cannot be set or called, or the resolved value does not fit.
// Errors produced while resolving the injected identifier itself are
// returned as they are.
type InjectionError struct {
	Target reflect.Type
	Member string
	ID     ID
	Cause  error
}

func (e *InjectionError) Error() string {
	target := "<nil>"
	if e.Target != nil {
		target = typeinfo.Of(e.Target).Name
	}
	if e.Member == "" {
		return fmt.Sprintf("cannot inject into %s: %v", target, e.Cause)
	}
	return fmt.Sprintf("cannot inject %s into %s.%s: %v", formatID(e.ID), target, e.Member, e.Cause)
}

func (e *InjectionError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates a resolved value does not fit where it is used.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "field assignment", "method argument", "type assertion"
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// FactoryPanicError indicates a factory panicked during creation.
// It captures the panic value and stack trace for debugging.
type FactoryPanicError struct {
	ID    ID
	Panic any
	Stack []byte
}

func (e *FactoryPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("factory for %s panicked: %v\n", formatID(e.ID), e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// CircularDependencyError reports a binding that depends on itself, either
// found by Validate or detected while creating values.
type CircularDependencyError = graph.CircularDependencyError

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return formatID(t)
}
