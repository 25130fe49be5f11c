package autowire

import (
	"context"
	"fmt"
	"reflect"

	"github.com/junioryono/autowire/internal/typeinfo"
)

// Get returns the bean bound to id as a T.
//
// Example:
//
//	db, err := autowire.Get[*sql.DB](ctx, c, "db")
//	if err != nil {
//	    // Handle error
//	}
func Get[T any](ctx context.Context, c *Container, id ID) (T, error) {
	var zero T

	value, err := c.GetBean(ctx, id)
	if err != nil {
		return zero, err
	}

	return assertAs[T](value, "type assertion")
}

// GetByType returns the bean bound to TypeOf[T]().
//
// Example:
//
//	svc, err := autowire.GetByType[*UserService](ctx, c)
func GetByType[T any](ctx context.Context, c *Container) (T, error) {
	return Get[T](ctx, c, TypeOf[T]())
}

// MustGet returns the bean bound to id as a T.
// It panics if the bean cannot be produced. This is meant for program
// startup, where a missing bean is fatal.
func MustGet[T any](ctx context.Context, c *Container, id ID) T {
	value, err := Get[T](ctx, c, id)
	if err != nil {
		panic(fmt.Sprintf("failed to get bean %s: %v", formatID(id), err))
	}

	return value
}

// BindType returns the binding for TypeOf[T]().
//
// Example:
//
//	autowire.BindType[*UserService](c).ToSelf()
func BindType[T any](c *Container) *Binding {
	return c.Bind(TypeOf[T]())
}

// GetAllByTag returns every bean tagged key as a T, in tag order.
//
// Example:
//
//	handlers, err := autowire.GetAllByTag[http.Handler](ctx, c, "routes")
func GetAllByTag[T any](ctx context.Context, c *Container, key string) ([]T, error) {
	values, err := c.GetBeansByTag(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(values))
	for i, value := range values {
		v, err := assertAs[T](value, fmt.Sprintf("type assertion for tag %q item %d", key, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

func assertAs[T any](value any, use string) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}

	var zero T
	if value == nil && typeinfo.IsNilable(TypeOf[T]()) {
		return zero, nil
	}
	return zero, &TypeMismatchError{
		Expected: TypeOf[T](),
		Actual:   reflect.TypeOf(value),
		Context:  use,
	}
}
