/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "context"

// Session binds operations to an in-flight transaction. A session is owned
// by exactly one unit of work and is released (commit or abort) before the
// unit of work returns. Concrete stores assert their own session type;
// handing a session to a store that did not create it is an error.
type Session interface {
	// Commit publishes every staged write atomically.
	Commit(ctx context.Context) error
	// Abort discards every staged write.
	Abort(ctx context.Context) error
}

// Filter is a structured predicate restricting which stored documents an
// operation visits. Keys are attribute names, values are matched for
// equality.
type Filter map[string]interface{}

// Pageable selects page PageNumber (1-based) of size Offset.
// A page number or offset of zero disables paging.
type Pageable struct {
	PageNumber int
	Offset     int
}

// Enabled reports whether the pageable actually restricts results.
func (p *Pageable) Enabled() bool {
	return p != nil && p.PageNumber > 0 && p.Offset > 0
}

// Sort is an ordering specification applied to find-all results.
type Sort struct {
	Field      string
	Descending bool
}

// Options is the immutable per-operation configuration. The zero value
// (or a nil pointer) runs the operation standalone with no filter,
// paging, or sort.
type Options struct {
	// Session binds the operation to an in-flight transaction.
	Session Session
	// Filters restricts which stored documents are visited.
	Filters Filter
	// Pageable applies 1-based paging to find-all results.
	Pageable *Pageable
	// SortBy orders find-all results.
	SortBy *Sort
	// UserID is stamped onto an auditable entity's last-writer metadata.
	UserID string
	// ExpectedVersion, when set, makes an update conditional on the stored
	// version matching. A mismatch fails with a condition error and writes
	// nothing. When nil the version is bumped without comparison.
	ExpectedVersion *int64
}

// EnsureOptions returns opts, or a fresh empty Options when opts is nil.
func EnsureOptions(opts *Options) *Options {
	if opts == nil {
		return &Options{}
	}
	return opts
}

// WithSession returns a copy of opts bound to the given session.
func (o *Options) WithSession(s Session) *Options {
	c := *EnsureOptions(o)
	c.Session = s
	return &c
}

// WithFilters returns a copy of opts with the given filter predicate.
func (o *Options) WithFilters(f Filter) *Options {
	c := *EnsureOptions(o)
	c.Filters = f
	return &c
}
