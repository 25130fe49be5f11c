package autowire

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/muir/reflectutils"
)

// ID is an opaque key that addresses one Binding. Any non-nil comparable
// value works; the usual choices are strings, tokens from NewToken and types
// from TypeOf. Identifiers are compared with ==, never parsed.
type ID = any

// Token is a unique identifier. Two tokens are never equal, even when they
// share a name, so packages can publish identifiers that cannot collide.
//
//	var DatabaseURL = autowire.NewToken("database-url")
//	c.Bind(DatabaseURL).ToValue("postgres://...")
type Token struct {
	name string
	uid  string
}

// NewToken creates a token. The name is only used for display.
func NewToken(name string) *Token {
	return &Token{name: name, uid: uuid.NewString()}
}

// Name returns the display name of the token.
func (t *Token) Name() string {
	return t.name
}

// String returns the token name with a short unique suffix.
func (t *Token) String() string {
	return fmt.Sprintf("Token(%s#%s)", t.name, t.uid[:8])
}

// TypeOf returns the reflect.Type of T, for use as an identifier or a
// registration target.
//
//	c.Bind(autowire.TypeOf[*UserService]()).ToSelf()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// validateID reports why id cannot be used as a binding table key.
func validateID(id ID) error {
	if id == nil {
		return ErrNilIdentifier
	}
	if !reflect.TypeOf(id).Comparable() {
		return ErrIdentifierNotComparable
	}
	return nil
}

// formatID formats an identifier for logs and error messages.
func formatID(id ID) string {
	switch v := id.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", v)
	case reflect.Type:
		return reflectutils.TypeName(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v (%T)", v, v)
	}
}
