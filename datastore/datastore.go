/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/docrepo/storagemodels"
)

// DocumentStore is the storage collaborator the repository core requires:
// raw-document CRUD by id and by predicate within one logical collection,
// plus session-scoped multi-document transactions with commit/abort
// semantics. Implementations interpret opts.Session when present; every
// other option field is advisory per operation.
type DocumentStore interface {
	// GetByID returns the stored document with the given id, or nil when
	// no document matches.
	GetByID(ctx context.Context, id string, opts *storagemodels.Options) (storagemodels.RawDocument, error)

	// FindOne returns the first stored document matching opts.Filters in
	// natural storage order, or nil when nothing matches.
	FindOne(ctx context.Context, opts *storagemodels.Options) (storagemodels.RawDocument, error)

	// Find returns every stored document matching opts.Filters, with
	// opts.SortBy and opts.Pageable applied.
	Find(ctx context.Context, opts *storagemodels.Options) ([]storagemodels.RawDocument, error)

	// Stream emits every stored document matching opts.Filters on a
	// channel, page by page.
	Stream(ctx context.Context, opts *storagemodels.Options, sopts ...storagemodels.StreamOption) <-chan storagemodels.DocumentResult

	// Insert writes a new document. The document must carry its id
	// attribute; schema violations and id collisions are rejected.
	Insert(ctx context.Context, doc storagemodels.RawDocument, opts *storagemodels.Options) error

	// Update merges patch onto the stored document with the given id and
	// returns the merged result. Attributes absent from patch are left
	// unchanged. When bumpVersion is set the Version attribute is
	// incremented by exactly one as part of the same write; with
	// opts.ExpectedVersion set the write is conditional on the stored
	// version matching.
	Update(ctx context.Context, id string, patch storagemodels.RawDocument, bumpVersion bool, opts *storagemodels.Options) (storagemodels.RawDocument, error)

	// Delete physically removes the document with the given id, reporting
	// whether a document existed.
	Delete(ctx context.Context, id string, opts *storagemodels.Options) (bool, error)

	// StartSession opens a transaction session against the store. The
	// caller owns the session for its entire lifetime and must release it
	// through Commit or Abort exactly once.
	StartSession(ctx context.Context) (storagemodels.Session, error)
}
