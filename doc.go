// Package autowire provides an identifier-keyed dependency injection container
// driven by metadata markers.
//
// # Overview
//
// Types declare what they need by carrying markers in a Registry. The
// container turns marked types into bindings and fills their injection points
// whenever it creates a value. The library provides:
//   - Bindings keyed by any comparable identifier: strings, tokens or types
//   - Singleton and Transient lifetimes
//   - Field and single-argument method injection
//   - Tag groups that resolve many beans at once
//   - Static validation of the dependency graph
//   - Safe concurrent use, with at most one creation per singleton
//
// # Basic Usage
//
// Bind identifiers to recipes and ask for beans:
//
//	c := autowire.New()
//	c.Bind("dsn").ToValue("postgres://localhost/app")
//	c.Bind("db").ToFactory(func(ctx context.Context, c *autowire.Container) (any, error) {
//	    dsn, err := autowire.Get[string](ctx, c, "dsn")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sql.Open("pgx", dsn)
//	})
//
//	db, err := autowire.Get[*sql.DB](ctx, c, "db")
//
// # Markers
//
// Markers are recorded in a Registry before the container is created:
//
//	type UserService struct {
//	    DB    *sql.DB
//	    clock Clock
//	}
//
//	func (s *UserService) SetClock(c Clock) { s.clock = c }
//
//	reg := autowire.NewRegistry()
//	err := errors.Join(
//	    reg.Mark(annotation.OnType[UserService](), reg.Component(autowire.WithTags("service"))),
//	    reg.Mark(annotation.OnField[UserService]("DB"), reg.Autowired("db")),
//	    reg.Mark(annotation.OnMethod[UserService]("SetClock"), reg.Autowired("clock")),
//	)
//
//	c := autowire.New(autowire.WithRegistry(reg))
//	c.RegisterComponents()
//
//	svc, err := autowire.GetByType[*UserService](ctx, c)
//
// Struct tags are an alternative source for field markers:
//
//	type Handler struct {
//	    Users *UserService `autowire:""`
//	}
//
//	err := reg.ScanTags(autowire.TypeOf[Handler]())
//
// # Identifiers
//
// Any non-nil comparable value identifies a binding. Types bound by Register
// and Component are keyed by their pointer type, so a component T is fetched
// with TypeOf[*T](). NewToken creates identifiers that never collide.
//
// # Lifetimes
//
//   - Singleton: the first Get creates the value and every later Get returns it.
//     Concurrent callers share one creation. A failed creation is not cached.
//   - Transient: every Get creates a new value.
//
// # Tags
//
// Bindings can join any number of tag groups:
//
//	c.Bind("users").ToSelf().Tag("routes")
//	handlers, err := autowire.GetAllByTag[http.Handler](ctx, c, "routes")
//
// # Error Handling
//
// Typed errors unwrap to sentinels for use with errors.Is:
//   - UnregisteredError (ErrUnregistered): no binding for an identifier
//   - UnboundError (ErrUnbound): a binding without a factory
//   - InjectionError: an injection point could not be applied
//   - TypeMismatchError: a value does not fit where it is used
//   - FactoryPanicError: a factory panicked
//   - CircularDependencyError: a binding depends on itself
//
// Errors returned by factories are passed through unchanged.
//
// # Best Practices
//
//   - Apply markers and register components during startup
//   - Call Validate before serving traffic
//   - Prefer tokens over strings for identifiers shared across packages
package autowire
