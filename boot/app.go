package boot

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/junioryono/autowire"
)

// ErrNextCalledTwice is returned when a booter calls next more than once.
var ErrNextCalledTwice = errors.New("next() called multiple times")

// Next runs the rest of the booter chain.
type Next func(ctx context.Context) error

// Booter is one startup step. Work done before calling next runs on the way
// in, work after it on the way out, once every later booter has finished.
// Not calling next stops the chain.
type Booter func(ctx context.Context, app *App, next Next) error

// App is a container with an ordered list of startup steps.
// It binds itself under TypeOf[*App]().
type App struct {
	*autowire.Container

	mu      sync.Mutex
	booters []Booter
}

// New creates an application on a fresh container.
func New(opts ...autowire.Option) *App {
	app := &App{Container: autowire.New(opts...)}
	app.Bind(autowire.TypeOf[*App]()).ToValue(app)
	return app
}

// Use appends booters to the startup chain.
func (a *App) Use(booters ...Booter) *App {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, b := range booters {
		if b != nil {
			a.booters = append(a.booters, b)
		}
	}
	return a
}

// Start runs the booters in the order they were added. The first error
// stops the chain and is returned to every booter still waiting on next.
func (a *App) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a.mu.Lock()
	booters := slices.Clone(a.booters)
	a.mu.Unlock()

	start := time.Now()

	// Booters may replace the logger, so it is read once they have run.
	if err := compose(booters)(ctx, a); err != nil {
		a.Logger().Error().Err(err).Msg("application start failed")
		return err
	}

	a.Logger().Info().
		Int("booters", len(booters)).
		Dur("duration", time.Since(start)).
		Msg("application started")
	return nil
}

func compose(booters []Booter) func(ctx context.Context, app *App) error {
	return func(ctx context.Context, app *App) error {
		index := -1

		var dispatch func(ctx context.Context, i int) error
		dispatch = func(ctx context.Context, i int) error {
			if i <= index {
				return ErrNextCalledTwice
			}
			index = i
			if i == len(booters) {
				return nil
			}
			return booters[i](ctx, app, func(ctx context.Context) error {
				return dispatch(ctx, i+1)
			})
		}

		return dispatch(ctx, 0)
	}
}
