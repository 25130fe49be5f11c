package annotation

import (
	"reflect"
	"sync"

	"github.com/junioryono/autowire/internal/typeinfo"
)

// Occurrence records one application of a marker.
type Occurrence struct {
	Scope      Scope
	Target     reflect.Type // normalized
	Member     string
	Descriptor *reflect.Method
	ParamIndex int
}

// Mutator writes the effect of a marker into a record. It runs under the
// registry lock and must not call back into the registry.
type Mutator[T any] func(record *T, occ Occurrence) error

// Marker is a reusable annotation function applied at a declaration site.
type Marker func(site Site) error

// Registry attaches one record of type T to each normalized target type.
// Records are created lazily on the first marker and never removed.
//
// A registry is safe for concurrent use, but records handed out by Record
// should be treated as read-only once application startup is over.
type Registry[T any] struct {
	build func() *T

	mu          sync.RWMutex
	records     map[reflect.Type]*T
	occurrences []Occurrence
}

// New creates a registry whose records are produced by build.
func New[T any](build func() *T) *Registry[T] {
	if build == nil {
		build = func() *T { return new(T) }
	}

	return &Registry[T]{
		build:   build,
		records: make(map[reflect.Type]*T),
	}
}

// Normalize maps a type and every pointer to it onto one identity.
func Normalize(t reflect.Type) reflect.Type {
	return typeinfo.Normalize(t)
}

// Record returns the record of target, if any marker was ever applied to it.
func (r *Registry[T]) Record(target reflect.Type) (*T, bool) {
	target = Normalize(target)
	if target == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[target]
	return record, ok
}

// RecordOf returns the record of the dynamic type of instance.
func (r *Registry[T]) RecordOf(instance any) (*T, bool) {
	if instance == nil {
		return nil, false
	}
	return r.Record(reflect.TypeOf(instance))
}

// Inspect calls fn with the record of target while holding the read lock.
// It reports whether a record exists.
func (r *Registry[T]) Inspect(target reflect.Type, fn func(record *T)) bool {
	target = Normalize(target)
	if target == nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[target]
	if ok {
		fn(record)
	}
	return ok
}

// Tag obtains or creates the record of occ.Target, applies mutate to it and
// logs the occurrence. When mutate fails the occurrence is not logged and a
// record created for this call is dropped; mutators should therefore check
// the occurrence before writing.
func (r *Registry[T]) Tag(occ Occurrence, mutate Mutator[T]) error {
	occ.Target = Normalize(occ.Target)
	if occ.Target == nil {
		return ErrNilTarget
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[occ.Target]
	if !ok {
		record = r.build()
	}

	if mutate != nil {
		if err := mutate(record, occ); err != nil {
			return err
		}
	}

	r.records[occ.Target] = record
	r.occurrences = append(r.occurrences, occ)
	return nil
}

// Occurrences returns the log of applied markers, optionally filtered by scope.
func (r *Registry[T]) Occurrences(scopes ...Scope) []Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Occurrence, 0, len(r.occurrences))
	for _, occ := range r.occurrences {
		if len(scopes) == 0 || containsScope(scopes, occ.Scope) {
			out = append(out, occ)
		}
	}
	return out
}

// Targets returns each distinct target marked at scope, in first-marked order.
func (r *Registry[T]) Targets(scope Scope) []reflect.Type {
	seen := make(map[reflect.Type]struct{})
	var out []reflect.Type
	for _, occ := range r.Occurrences(scope) {
		if _, ok := seen[occ.Target]; ok {
			continue
		}
		seen[occ.Target] = struct{}{}
		out = append(out, occ.Target)
	}
	return out
}

// Len returns the number of records.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Export returns a marker that first applies every marker in composeWith at the
// same site, in order, then records mutate against the site's target.
func (r *Registry[T]) Export(mutate Mutator[T], composeWith ...Marker) Marker {
	return func(site Site) error {
		for _, m := range composeWith {
			if m == nil {
				continue
			}
			if err := m(site); err != nil {
				return err
			}
		}

		if err := site.validate(); err != nil {
			return &SiteError{Site: site, Cause: err}
		}

		occ := Occurrence{
			Scope:      site.Scope(),
			Target:     site.Target,
			Member:     site.Member,
			Descriptor: site.Descriptor,
			ParamIndex: site.ParamIndex,
		}
		if err := r.Tag(occ, mutate); err != nil {
			return &SiteError{Site: site, Cause: err}
		}
		return nil
	}
}

// Mark applies markers at site in order. See Apply.
func (r *Registry[T]) Mark(site Site, markers ...Marker) error {
	return Apply(site, markers...)
}

// Apply applies several markers at one site, stopping at the first error.
// Writes made by markers that already ran are kept.
func Apply(site Site, markers ...Marker) error {
	for _, m := range markers {
		if m == nil {
			continue
		}
		if err := m(site); err != nil {
			return err
		}
	}
	return nil
}

func containsScope(scopes []Scope, s Scope) bool {
	for _, candidate := range scopes {
		if candidate == s {
			return true
		}
	}
	return false
}
