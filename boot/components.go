package boot

import (
	"context"
	"fmt"
)

// Components returns a booter that registers every marked component and
// validates the resulting dependency graph before the rest of the chain runs.
func Components() Booter {
	return func(ctx context.Context, app *App, next Next) error {
		bindings := app.RegisterComponents()
		if err := app.Validate(); err != nil {
			return err
		}

		app.Logger().Debug().Int("components", len(bindings)).Msg("components registered")
		return next(ctx)
	}
}

// Eager returns a booter that creates every bean under the given tags once
// the rest of the chain has finished, so broken wiring fails startup rather
// than the first request.
func Eager(tags ...string) Booter {
	return func(ctx context.Context, app *App, next Next) error {
		if err := next(ctx); err != nil {
			return err
		}

		for _, tag := range tags {
			if _, err := app.GetBeansByTag(ctx, tag); err != nil {
				return fmt.Errorf("eager tag %q: %w", tag, err)
			}
		}
		return nil
	}
}
