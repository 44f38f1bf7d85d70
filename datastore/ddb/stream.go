/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"

	"github.com/suparena/docrepo/storagemodels"
)

// Stream pages through the collection and emits matching documents on a
// channel as they arrive. The channel closes when the collection is
// exhausted, an error is emitted, or ctx is canceled. Sorting and paging
// options do not apply to streams; documents arrive in index order.
func (s *Store) Stream(ctx context.Context, opts *storagemodels.Options, sopts ...storagemodels.StreamOption) <-chan storagemodels.DocumentResult {
	opts = storagemodels.EnsureOptions(opts)

	streamOpts := storagemodels.DefaultStreamOptions()
	for _, apply := range sopts {
		apply(&streamOpts)
	}

	results := make(chan storagemodels.DocumentResult, streamOpts.BufferSize)

	go func() {
		defer close(results)

		input, err := s.collectionQueryInput(opts.Filters)
		if err != nil {
			emit(ctx, results, storagemodels.DocumentResult{Error: err})
			return
		}
		input.Limit = &streamOpts.PageSize

		var index int64
		pageNumber := 0
		for {
			pageNumber++
			out, err := s.queryWithRetry(ctx, input, streamOpts.MaxRetries)
			if err != nil {
				emit(ctx, results, storagemodels.DocumentResult{
					Error: err,
					Meta:  storagemodels.StreamMeta{Index: index, PageNumber: pageNumber},
				})
				return
			}

			for _, item := range out.Items {
				ok := emit(ctx, results, storagemodels.DocumentResult{
					Doc:  item,
					Meta: storagemodels.StreamMeta{Index: index, PageNumber: pageNumber},
				})
				if !ok {
					return
				}
				index++
			}

			if out.LastEvaluatedKey == nil {
				return
			}
			input.ExclusiveStartKey = out.LastEvaluatedKey
		}
	}()

	return results
}

// emit sends one result, reporting false when ctx ended first.
func emit(ctx context.Context, ch chan<- storagemodels.DocumentResult, r storagemodels.DocumentResult) bool {
	select {
	case ch <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
