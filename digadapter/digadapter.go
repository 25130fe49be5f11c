// Package digadapter moves beans between an autowire container and a
// go.uber.org/dig container, so both can be used in one program.
package digadapter

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"github.com/junioryono/autowire"
)

// Factory returns an autowire factory that takes a T out of dc. dig builds
// each type once, so the factory yields the same value on every call.
func Factory[T any](dc *dig.Container) autowire.Factory {
	return func(context.Context, *autowire.Container) (any, error) {
		var out T
		if err := dc.Invoke(func(v T) { out = v }); err != nil {
			return nil, fmt.Errorf("dig: failed to get %s: %w", autowire.TypeOf[T](), err)
		}
		return out, nil
	}
}

// Import binds TypeOf[T]() in c to the T provided by dc. Values whose type
// carries markers are autowired like any other bean.
func Import[T any](c *autowire.Container, dc *dig.Container) *autowire.Binding {
	return autowire.BindType[T](c).ToFactory(Factory[T](dc))
}

// Provide makes the bean bound to id in c available to dig constructors as a T.
// The bean is fetched when dig first needs it.
func Provide[T any](dc *dig.Container, c *autowire.Container, id autowire.ID) error {
	return dc.Provide(func() (T, error) {
		return autowire.Get[T](context.Background(), c, id)
	})
}
