/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/storagemodels"
)

// maxTransactItems is the DynamoDB TransactWriteItems limit.
const maxTransactItems = 100

// Session buffers writes as TransactWriteItems entries and keeps a local
// overlay so reads issued under the session observe its staged state.
// Commit publishes the whole set in a single atomic call.
//
// TransactWriteItems rejects a transaction touching the same item twice,
// so repeated writes to one id coalesce into a single staged entry: a
// later put replaces an earlier put's item (the first write's condition
// stands), and a delete supersedes a staged put outright.
type Session struct {
	store *Store

	mu      sync.Mutex
	items   []types.TransactWriteItem
	slots   map[string]int
	overlay map[string]storagemodels.RawDocument
	deleted map[string]struct{}
	done    bool
}

func newSession(s *Store) *Session {
	return &Session{
		store:   s,
		slots:   make(map[string]int),
		overlay: make(map[string]storagemodels.RawDocument),
		deleted: make(map[string]struct{}),
	}
}

// Commit sends every staged write in one TransactWriteItems call. An
// empty session commits trivially.
func (t *Session) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errors.NewTransactionError("commit", fmt.Errorf("session already finished"))
	}
	t.done = true

	if len(t.items) == 0 {
		return nil
	}
	if len(t.items) > maxTransactItems {
		return errors.NewTransactionError("commit",
			fmt.Errorf("%d staged writes exceed the transact limit of %d", len(t.items), maxTransactItems))
	}

	_, err := t.store.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{
		TransactItems: t.items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if stderrors.As(err, &canceled) {
			return fmt.Errorf("transaction canceled: %w", err)
		}
		return fmt.Errorf("transact write failed: %w", err)
	}
	return nil
}

// Abort discards the staged writes.
func (t *Session) Abort(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errors.NewTransactionError("abort", fmt.Errorf("session already finished"))
	}
	t.done = true
	t.items = nil
	t.overlay = nil
	t.deleted = nil
	return nil
}

// lookup reports the session's view of an id: the staged document, or
// nil with touched=true when the session deleted it.
func (t *Session) lookup(id string) (storagemodels.RawDocument, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, gone := t.deleted[id]; gone {
		return nil, true
	}
	if doc, ok := t.overlay[id]; ok {
		return doc, true
	}
	return nil, false
}

func (t *Session) stagePut(id string, item storagemodels.RawDocument, condition string, conditionNames map[string]string, conditionValues map[string]types.AttributeValue) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errors.NewTransactionError("stage", fmt.Errorf("session already finished"))
	}

	if idx, staged := t.slots[id]; staged {
		if prior := t.items[idx].Put; prior != nil {
			// Rewrite the staged item; the first write's condition still
			// describes the committed state the transaction depends on.
			prior.Item = item
		} else {
			// Put after a staged delete: the committed item existed when
			// the delete was staged, so the put replaces it in one write.
			exists := "attribute_exists(PK)"
			t.items[idx] = types.TransactWriteItem{Put: &types.Put{
				TableName:           &t.store.tableName,
				Item:                item,
				ConditionExpression: &exists,
			}}
		}
		t.overlay[id] = storagemodels.CloneDocument(item)
		delete(t.deleted, id)
		return nil
	}

	put := &types.Put{
		TableName:           &t.store.tableName,
		Item:                item,
		ConditionExpression: &condition,
	}
	if len(conditionNames) > 0 {
		put.ExpressionAttributeNames = conditionNames
	}
	if len(conditionValues) > 0 {
		put.ExpressionAttributeValues = conditionValues
	}
	t.items = append(t.items, types.TransactWriteItem{Put: put})
	t.slots[id] = len(t.items) - 1
	t.overlay[id] = storagemodels.CloneDocument(item)
	delete(t.deleted, id)
	return nil
}

func (t *Session) stageDelete(id string, key storagemodels.RawDocument) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return
	}

	del := types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: &t.store.tableName,
			Key:       key,
		},
	}
	if idx, staged := t.slots[id]; staged {
		t.items[idx] = del
	} else {
		t.items = append(t.items, del)
		t.slots[id] = len(t.items) - 1
	}
	delete(t.overlay, id)
	t.deleted[id] = struct{}{}
}
