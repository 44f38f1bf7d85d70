/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docrepo

import (
	"context"

	"github.com/suparena/docrepo/datastore"
	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/storagemodels"
)

// UnitOfWork is a sequence of repository operations executed under one
// transaction boundary. The unit receives operation options bound to the
// transaction's session and must thread them through every nested call.
type UnitOfWork[R any] func(txOpts *storagemodels.Options) (R, error)

// RunInTransaction starts a session against the store, invokes the unit
// of work with that session threaded through the options, commits on
// normal completion, and aborts on any error — which then propagates
// unchanged to the caller. The unit is never partially applied: either
// every write it issued is visible afterwards, or none is.
//
// When opts already carries a session the unit joins the enclosing
// transaction instead of opening a nested one; commit and abort stay
// with the outermost caller.
func RunInTransaction[R any](ctx context.Context, store datastore.DocumentStore, opts *storagemodels.Options, unit UnitOfWork[R]) (R, error) {
	var zero R
	opts = storagemodels.EnsureOptions(opts)

	if opts.Session != nil {
		return unit(opts)
	}

	sess, err := store.StartSession(ctx)
	if err != nil {
		return zero, errors.NewTransactionError("begin", err)
	}

	result, err := unit(opts.WithSession(sess))
	if err != nil {
		// The unit's error is the caller's error; an abort fault must not
		// mask it. Abort discards local staging only, so a failure here is
		// a session-lifecycle bug rather than lost data.
		_ = sess.Abort(ctx)
		return zero, err
	}

	if err := sess.Commit(ctx); err != nil {
		return zero, errors.NewTransactionError("commit", err)
	}
	return result, nil
}
