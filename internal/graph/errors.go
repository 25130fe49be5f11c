package graph

import "strings"

// CircularDependencyError reports a binding that depends on itself, directly
// or through Path. Path starts at the binding where the cycle was entered.
type CircularDependencyError struct {
	Node NodeKey
	Path []NodeKey
}

func (e *CircularDependencyError) Error() string {
	path := e.Path
	if len(path) == 0 {
		path = []NodeKey{e.Node}
	}

	ids := make([]string, 0, len(path)+1)
	for _, k := range path {
		ids = append(ids, k.String())
	}
	ids = append(ids, path[0].String())

	return "binding cycle: " + strings.Join(ids, " -> ") +
		" (bind one side with a factory that fetches the other on demand)"
}
