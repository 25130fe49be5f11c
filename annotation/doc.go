// Package annotation is a small metadata registry for declaration-site markers.
//
// Go has no decorators, so markers are plain functions applied during startup
// to a Site describing the declaration they annotate:
//
//	reg := annotation.New(func() *Route { return &Route{} })
//
//	GET := func(path string) annotation.Marker {
//	    return reg.Export(func(r *Route, occ annotation.Occurrence) error {
//	        r.Handlers[occ.Member] = path
//	        return nil
//	    })
//	}
//
//	err := reg.Mark(annotation.OnMethod[UserController]("List"), GET("/users"))
//
// Each registry keeps exactly one record per target type. A type and every
// pointer to it share the record, so type-level and member-level markers
// converge. Every application is also appended to an occurrence log which
// callers use to enumerate, for example, every type-level marker ever applied.
//
// Export composes markers: the markers passed as composeWith run first at the
// same site, which lets a high-level marker be written in terms of lower-level
// ones, possibly from other registries.
package annotation
