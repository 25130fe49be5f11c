package autowire

import (
	"io"

	"github.com/junioryono/autowire/internal/graph"
)

// dependencyGraph builds the static graph between bindings. A binding depends
// on every identifier injected into the type it constructs. Factory bindings
// are opaque: whatever the factory fetches is only known at creation time.
func (c *Container) dependencyGraph() *graph.DependencyGraph {
	g := graph.NewDependencyGraph()

	for _, b := range c.Bindings() {
		var deps []any
		if target := b.Target(); target != nil {
			c.registry.Inspect(target, func(rec *Injectable) {
				for _, inj := range rec.injections() {
					deps = append(deps, inj.id)
				}
			})
		}
		g.AddNode(b.ID(), formatID(b.ID()), deps...)
	}

	return g
}

// Validate checks the static dependency graph. It reports the first injected
// identifier that has no binding as an *UnregisteredError naming the binding
// that needs it, then looks for cycles.
//
// Validate does not create any value. Call it after all bindings are set up:
//
//	c.RegisterComponents()
//	if err := c.Validate(); err != nil {
//	    log.Fatal(err)
//	}
func (c *Container) Validate() error {
	g := c.dependencyGraph()

	for _, missing := range g.Undeclared() {
		var requester ID
		if dependents := g.GetDependents(missing.ID); len(dependents) > 0 {
			requester = dependents[0].ID
		}
		err := &UnregisteredError{ID: missing.ID, Operation: "validate", Requester: requester}
		c.Logger().Debug().Err(err).Msg("validation failed")
		return err
	}

	if err := g.DetectCycles(); err != nil {
		c.Logger().Debug().Err(err).Msg("validation failed")
		return err
	}
	return nil
}

// WriteGraph writes the static dependency graph in Graphviz DOT format.
// Identifiers without a binding are drawn in red.
func (c *Container) WriteGraph(w io.Writer) error {
	return graph.NewVisualizer(c.dependencyGraph()).WriteDOT(w)
}
