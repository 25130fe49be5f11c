package annotation

import (
	"errors"
	"fmt"
)

var (
	ErrNilTarget         = errors.New("marker target cannot be nil")
	ErrMemberNotFound    = errors.New("member not found")
	ErrMemberNotExported = errors.New("member is not exported")
	ErrParamOutOfRange   = errors.New("parameter index out of range")
	ErrScopeNotSupported = errors.New("marker does not apply at this scope")
)

var _ error = (*SiteError)(nil)

// SiteError reports a marker that could not be applied at a site.
type SiteError struct {
	Site  Site
	Cause error
}

func (e *SiteError) Error() string {
	return fmt.Sprintf("cannot mark %s (%s): %v", e.Site, e.Site.Scope(), e.Cause)
}

func (e *SiteError) Unwrap() error {
	return e.Cause
}
