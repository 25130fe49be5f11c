package autowire

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/junioryono/autowire/annotation"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TWidget is a plain type with no markers.
type TWidget struct {
	Name string
}

// TSettings stands in for a configuration object.
type TSettings struct {
	Value int
}

// TService is a component with one property and one method injection.
type TService struct {
	Settings *TSettings
	Greeting string

	fromMethod *TSettings
	calls      int
}

func (s *TService) SetSettings(v *TSettings) {
	s.fromMethod = v
	s.calls++
}

// TScenario has a single property injection, named X.
type TScenario struct {
	X int
}

// TBase is embedded to test promoted fields.
type TBase struct {
	Clock string
}

type TEmbedding struct {
	TBase
	Own string
}

// TCircularA and TCircularB inject each other.
type TCircularA struct{ B *TCircularB }
type TCircularB struct{ A *TCircularA }

// TGreeter is an interface used for tag lookups.
type TGreeter interface {
	Greet() string
}

type TEnglish struct{}

func (*TEnglish) Greet() string { return "hello" }

type TFrench struct{}

func (*TFrench) Greet() string { return "bonjour" }

// ============================================================================
// Helpers
// ============================================================================

// mark applies markers at site and fails the test on error.
func mark(t *testing.T, site annotation.Site, markers ...annotation.Marker) {
	t.Helper()
	require.NoError(t, annotation.Apply(site, markers...))
}

// newTestContainer returns a container and the registry it reads markers from.
func newTestContainer(t *testing.T) (*Container, *Registry) {
	t.Helper()
	reg := NewRegistry()
	return New(WithRegistry(reg)), reg
}

// countingFactory returns a factory that builds a new *TWidget on every call
// and counts the calls.
func countingFactory(calls *atomic.Int64) Factory {
	return func(ctx context.Context, c *Container) (any, error) {
		calls.Add(1)
		return &TWidget{}, nil
	}
}
