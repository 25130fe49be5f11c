package autowire

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/junioryono/autowire/internal/typeinfo"
)

// Resolve fulfils the injection points declared for the type of instance.
//
// Instances whose type carries no record are left untouched; that is the
// common case, not an error. Otherwise every injected identifier is fetched
// concurrently with GetBean and then assigned to its field or passed to its
// method. Members are applied one at a time, in no particular order.
// Resolve waits for every injection to settle and returns the first error.
// Injections that already succeeded stay applied.
func (c *Container) Resolve(ctx context.Context, instance any) error {
	if instance == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t := reflect.TypeOf(instance)
	var plan []injection
	if !c.registry.Inspect(t, func(rec *Injectable) { plan = rec.injections() }) || len(plan) == 0 {
		return nil
	}

	info := typeinfo.Of(t)
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem() != info.Type {
		return &InjectionError{Target: t, Cause: ErrNotAddressable}
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, inj := range plan {
		g.Go(func() error {
			value, err := c.GetBean(ctx, inj.id)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if inj.method {
				return c.invokeMethod(v, info, inj, value)
			}
			return c.assignField(v, info, inj, value)
		})
	}

	if err := g.Wait(); err != nil {
		c.Logger().Debug().Err(err).Str("type", info.Name).Msg("autowiring failed")
		return err
	}
	return nil
}

func (c *Container) assignField(v reflect.Value, info *typeinfo.Info, inj injection, value any) error {
	fail := func(cause error) error {
		return &InjectionError{Target: info.Type, Member: inj.member, ID: inj.id, Cause: cause}
	}

	f, ok := info.Field(inj.member)
	if !ok {
		return fail(ErrInvalidInjection)
	}

	field, err := v.Elem().FieldByIndexErr(f.Index)
	if err != nil {
		return fail(err)
	}
	if !field.CanSet() {
		return fail(ErrInvalidInjection)
	}

	arg, err := argument(field.Type(), value, "field assignment")
	if err != nil {
		return fail(err)
	}

	field.Set(arg)
	return nil
}

func (c *Container) invokeMethod(v reflect.Value, info *typeinfo.Info, inj injection, value any) (err error) {
	fail := func(cause error) error {
		return &InjectionError{Target: info.Type, Member: inj.member, ID: inj.id, Cause: cause}
	}

	method := v.MethodByName(inj.member)
	if !method.IsValid() || method.Type().NumIn() != 1 {
		return fail(ErrInvalidInjection)
	}

	arg, err := argument(method.Type().In(0), value, "method argument")
	if err != nil {
		return fail(err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fail(fmt.Errorf("method panicked: %v", r))
		}
	}()

	out := method.Call([]reflect.Value{arg})
	if n := len(out); n > 0 && out[n-1].Type() == errorType && !out[n-1].IsNil() {
		return out[n-1].Interface().(error)
	}
	return nil
}

// argument converts a resolved value into a value assignable to t.
func argument(t reflect.Type, value any, use string) (reflect.Value, error) {
	if value == nil {
		if typeinfo.IsNilable(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &TypeMismatchError{Expected: t, Context: use}
	}

	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, &TypeMismatchError{Expected: t, Actual: rv.Type(), Context: use}
	}
	return rv, nil
}
