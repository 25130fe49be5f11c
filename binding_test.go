package autowire

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinding_ToValue(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the value", func(t *testing.T) {
		c := New()
		c.Bind("greeting").ToValue("hello")

		got, err := c.GetBean(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("same reference on every call", func(t *testing.T) {
		c := New()
		w := &TWidget{Name: "w"}
		c.Bind("widget").ToValue(w)

		for _, lifetime := range []Lifetime{Singleton, Transient} {
			c.Bind("widget").WithLifetime(lifetime)
			for range 3 {
				got, err := c.GetBean(ctx, "widget")
				require.NoError(t, err)
				assert.Same(t, w, got)
			}
		}
	})

	t.Run("nil value", func(t *testing.T) {
		c := New()
		c.Bind("nothing").ToValue(nil)

		got, err := c.GetBean(ctx, "nothing")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Nil(t, c.Bind("nothing").Target())
	})

	t.Run("records the target type", func(t *testing.T) {
		c := New()
		b := c.Bind("widget").ToValue(&TWidget{})
		assert.Equal(t, TypeOf[*TWidget](), b.Target())
	})
}

func TestBinding_ToSelf(t *testing.T) {
	ctx := context.Background()

	t.Run("pointer type identifier", func(t *testing.T) {
		c := New()
		c.Bind(TypeOf[*TWidget]()).ToSelf()

		got, err := c.GetBean(ctx, TypeOf[*TWidget]())
		require.NoError(t, err)
		assert.IsType(t, &TWidget{}, got)
	})

	t.Run("struct type identifier still produces a pointer", func(t *testing.T) {
		c := New()
		b := c.Bind(TypeOf[TWidget]()).ToSelf()
		assert.Equal(t, TypeOf[*TWidget](), b.Target())

		got, err := c.GetBean(ctx, TypeOf[TWidget]())
		require.NoError(t, err)
		assert.IsType(t, &TWidget{}, got)
	})

	t.Run("non-type identifier fails at creation", func(t *testing.T) {
		c := New()
		c.Bind("widget").ToSelf()

		_, err := c.GetBean(ctx, "widget")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotInstantiable)

		var instErr *InstantiationError
		require.ErrorAs(t, err, &instErr)
		assert.Equal(t, "widget", instErr.ID)
	})

	t.Run("interface type fails at creation", func(t *testing.T) {
		c := New()
		c.Bind(TypeOf[TGreeter]()).ToSelf()

		_, err := c.GetBean(ctx, TypeOf[TGreeter]())
		assert.ErrorIs(t, err, ErrNotInstantiable)
	})
}

func TestBinding_To(t *testing.T) {
	c := New()
	c.Bind(TypeOf[TGreeter]()).To(TypeOf[TEnglish]())

	got, err := Get[TGreeter](context.Background(), c, TypeOf[TGreeter]())
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Greet())
}

func TestBinding_Unbound(t *testing.T) {
	c := New()
	b := c.Bind("later")
	assert.False(t, b.IsBound())

	_, err := c.GetBean(context.Background(), "later")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbound)

	var unbound *UnboundError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "later", unbound.ID)

	t.Run("nil factory leaves the binding unbound", func(t *testing.T) {
		b.ToFactory(nil)
		assert.False(t, b.IsBound())
	})
}

func TestBinding_Singleton(t *testing.T) {
	ctx := context.Background()

	t.Run("factory runs once", func(t *testing.T) {
		c := New()
		var calls atomic.Int64
		c.Bind("w").ToFactory(countingFactory(&calls))

		first, err := c.GetBean(ctx, "w")
		require.NoError(t, err)
		second, err := c.GetBean(ctx, "w")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int64(1), calls.Load())
		assert.True(t, c.Bind("w").IsRealized())
	})

	t.Run("concurrent callers share one creation", func(t *testing.T) {
		c := New()
		var calls atomic.Int64
		gate := make(chan struct{})
		entered := make(chan struct{})

		c.Bind("n").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			if calls.Add(1) == 1 {
				close(entered)
			}
			<-gate
			return &TWidget{Name: "v1"}, nil
		})

		const n = 50
		results := make([]any, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = c.GetBean(ctx, "n")
			}()
		}

		<-entered
		assert.False(t, c.Bind("n").IsRealized())
		time.Sleep(10 * time.Millisecond)
		close(gate)
		wg.Wait()

		assert.Equal(t, int64(1), calls.Load())
		for i := range n {
			require.NoError(t, errs[i])
			assert.Same(t, results[0], results[i])
		}
	})

	t.Run("failed creation is not cached", func(t *testing.T) {
		c := New()
		errBoom := errors.New("boom")
		var calls atomic.Int64

		c.Bind("flaky").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			if calls.Add(1) == 1 {
				return nil, errBoom
			}
			return &TWidget{}, nil
		})

		_, err := c.GetBean(ctx, "flaky")
		assert.Equal(t, errBoom, err, "factory errors are returned unchanged")
		assert.False(t, c.Bind("flaky").IsRealized())

		got, err := c.GetBean(ctx, "flaky")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.True(t, c.Bind("flaky").IsRealized())
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("waiter honours its context", func(t *testing.T) {
		c := New()
		gate := make(chan struct{})
		entered := make(chan struct{})

		c.Bind("slow").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			close(entered)
			<-gate
			return &TWidget{}, nil
		})

		done := make(chan error, 1)
		go func() {
			_, err := c.GetBean(ctx, "slow")
			done <- err
		}()
		<-entered

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.GetBean(cancelled, "slow")
		assert.ErrorIs(t, err, context.Canceled)

		close(gate)
		require.NoError(t, <-done)
		assert.True(t, c.Bind("slow").IsRealized())
	})

	t.Run("first caller's deadline does not cancel the creation", func(t *testing.T) {
		c := New()
		entered := make(chan struct{})

		c.Bind("slow").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			close(entered)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(100 * time.Millisecond):
				return &TWidget{Name: "done"}, nil
			}
		})

		short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		first := make(chan error, 1)
		go func() {
			_, err := c.GetBean(short, "slow")
			first <- err
		}()
		<-entered

		got, err := c.GetBean(ctx, "slow")
		require.NoError(t, err)
		assert.Equal(t, "done", got.(*TWidget).Name)
		assert.ErrorIs(t, <-first, context.DeadlineExceeded)
		assert.True(t, c.Bind("slow").IsRealized())
	})

	t.Run("rebinding drops the cached value", func(t *testing.T) {
		c := New()
		first := &TWidget{Name: "first"}
		second := &TWidget{Name: "second"}

		c.Bind("w").ToValue(first)
		got, err := c.GetBean(ctx, "w")
		require.NoError(t, err)
		assert.Same(t, first, got)

		c.Bind("w").ToValue(second)
		got, err = c.GetBean(ctx, "w")
		require.NoError(t, err)
		assert.Same(t, second, got)
	})
}

func TestBinding_Transient(t *testing.T) {
	ctx := context.Background()
	c := New()
	var calls atomic.Int64

	b := c.Bind("t").ToFactory(countingFactory(&calls)).IsSingleton(false)
	assert.Equal(t, Transient, b.Lifetime())

	first, err := c.GetBean(ctx, "t")
	require.NoError(t, err)
	second, err := c.GetBean(ctx, "t")
	require.NoError(t, err)

	assert.Equal(t, first, second, "structurally equal")
	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2), calls.Load())
	assert.False(t, b.IsRealized())

	t.Run("back to singleton", func(t *testing.T) {
		b.IsSingleton(true)
		assert.Equal(t, Singleton, b.Lifetime())

		a, err := c.GetBean(ctx, "t")
		require.NoError(t, err)
		z, err := c.GetBean(ctx, "t")
		require.NoError(t, err)
		assert.Same(t, a, z)
	})
}

func TestBinding_Create(t *testing.T) {
	ctx := context.Background()
	c := New()
	var calls atomic.Int64
	b := c.Bind("w").ToFactory(countingFactory(&calls))

	cached, err := b.Get(ctx)
	require.NoError(t, err)

	fresh, err := b.Create(ctx)
	require.NoError(t, err)
	assert.NotSame(t, cached, fresh)

	again, err := b.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, cached, again)
	assert.Equal(t, int64(2), calls.Load())
}

func TestBinding_FactoryPanic(t *testing.T) {
	c := New()
	c.Bind("bad").ToFactory(func(ctx context.Context, c *Container) (any, error) {
		panic("kaboom")
	})

	_, err := c.GetBean(context.Background(), "bad")
	require.Error(t, err)

	var panicErr *FactoryPanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "kaboom", panicErr.Panic)
	assert.Equal(t, "bad", panicErr.ID)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Contains(t, err.Error(), "panicked: kaboom")
}

func TestBinding_CycleDetection(t *testing.T) {
	ctx := context.Background()

	t.Run("two singletons", func(t *testing.T) {
		c := New()
		c.Bind("a").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			return c.GetBean(ctx, "b")
		})
		c.Bind("b").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			return c.GetBean(ctx, "a")
		})

		_, err := c.GetBean(ctx, "a")
		require.Error(t, err)

		var cycle *CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		require.Len(t, cycle.Path, 2)
		assert.Equal(t, "a", cycle.Path[0].ID)
		assert.Equal(t, "b", cycle.Path[1].ID)

		// The failed creation is not cached, so the cycle is reported again.
		_, err = c.GetBean(ctx, "a")
		assert.ErrorAs(t, err, &cycle)
	})

	t.Run("self-referencing transient", func(t *testing.T) {
		c := New()
		c.Bind("self").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			return c.GetBean(ctx, "self")
		}).IsSingleton(false)

		_, err := c.GetBean(ctx, "self")
		var cycle *CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, "self", cycle.Node.ID)
	})

	t.Run("siblings are not a cycle", func(t *testing.T) {
		c := New()
		c.Bind("leaf").ToValue(&TWidget{})
		c.Bind("root").ToFactory(func(ctx context.Context, c *Container) (any, error) {
			if _, err := c.GetBean(ctx, "leaf"); err != nil {
				return nil, err
			}
			return c.GetBean(ctx, "leaf")
		})

		_, err := c.GetBean(ctx, "root")
		assert.NoError(t, err)
	})
}

func TestBinding_Tag(t *testing.T) {
	c := New()
	b := c.Bind("w").ToValue(&TWidget{}).Tag("a", "b").Tag("a")

	assert.Equal(t, []string{"a", "b"}, c.Tags())

	got, err := c.GetBeansByTag(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, got, 1)

	want, err := b.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got[0])
}
