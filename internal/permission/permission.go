// Package permission defines the batch authorization boundary used by search.
// The real policy lives outside this service; the contract must support
// denial without call-site changes, so callers always go through FilterAllowed.
package permission

import (
	"context"
	"errors"
)

// ErrPermissionDenied is reserved for implementations that reject a principal
// outright rather than returning a reduced id set.
var ErrPermissionDenied = errors.New("permission denied")

// Filter decides which documents a principal may see.
type Filter interface {
	// FilterAllowed returns the subset of ids the principal is allowed to
	// view. One batch call per result page, never one call per document.
	// An empty principal means an anonymous/internal caller.
	FilterAllowed(ctx context.Context, ids []string, principal string) ([]string, error)
}

// AllowAll is the demo implementation: every id passes. It keeps the batch
// shape of the contract so a real policy can be dropped in later.
type AllowAll struct{}

// NewAllowAll creates the permissive filter.
func NewAllowAll() *AllowAll {
	return &AllowAll{}
}

var _ Filter = (*AllowAll)(nil)

func (f *AllowAll) FilterAllowed(_ context.Context, ids []string, _ string) ([]string, error) {
	return ids, nil
}
