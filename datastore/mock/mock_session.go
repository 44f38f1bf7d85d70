/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/storagemodels"
)

type writeKind int

const (
	writePut writeKind = iota
	writeDelete
)

type stagedWrite struct {
	kind writeKind
	id   string
	doc  storagemodels.RawDocument
}

// session stages writes against the store and applies them atomically on
// Commit under the store lock. The overlay maps ids touched by this
// session to their staged state (nil for a staged deletion) so reads and
// later writes within the unit of work see their own effects.
type session struct {
	store   *Store
	mu      sync.Mutex
	staged  []stagedWrite
	overlay map[string]storagemodels.RawDocument
	done    bool
}

// Commit applies every staged write in order. All writes become visible
// together; nothing is visible before.
func (s *session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return errors.NewTransactionError("commit", fmt.Errorf("session already released"))
	}
	s.done = true

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, w := range s.staged {
		switch w.kind {
		case writePut:
			s.store.put(w.id, w.doc)
		case writeDelete:
			s.store.remove(w.id)
		}
	}
	return nil
}

// Abort discards every staged write.
func (s *session) Abort(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return errors.NewTransactionError("abort", fmt.Errorf("session already released"))
	}
	s.done = true
	s.staged = nil
	s.overlay = nil
	return nil
}

// get reads through the session overlay, then the committed state.
func (s *session) get(id string) storagemodels.RawDocument {
	s.mu.Lock()
	if doc, touched := s.overlay[id]; touched {
		s.mu.Unlock()
		return storagemodels.CloneDocument(doc)
	}
	s.mu.Unlock()

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return storagemodels.CloneDocument(s.store.docs[id])
}

func (s *session) stageInsert(id string, doc storagemodels.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.view(id); existing != nil {
		return errors.NewAlreadyExistsError(s.store.kindOf(doc), id)
	}

	s.store.mu.RLock()
	err := s.store.validate(doc, id, s.overlay)
	s.store.mu.RUnlock()
	if err != nil {
		return err
	}

	doc = storagemodels.CloneDocument(doc)
	s.staged = append(s.staged, stagedWrite{kind: writePut, id: id, doc: doc})
	s.overlay[id] = doc
	return nil
}

func (s *session) stageUpdate(id string, patch storagemodels.RawDocument, bumpVersion bool, expectedVersion *int64) (storagemodels.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.view(id)
	if current == nil {
		return nil, errors.NewNotFoundError("document", id)
	}
	merged, err := mergePatch(current, patch, bumpVersion, expectedVersion)
	if err != nil {
		return nil, err
	}

	s.store.mu.RLock()
	err = s.store.validate(merged, id, s.overlay)
	s.store.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	s.staged = append(s.staged, stagedWrite{kind: writePut, id: id, doc: merged})
	s.overlay[id] = merged
	return storagemodels.CloneDocument(merged), nil
}

func (s *session) stageDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view(id) == nil {
		return false
	}
	s.staged = append(s.staged, stagedWrite{kind: writeDelete, id: id})
	s.overlay[id] = nil
	return true
}

// view resolves id through the overlay, then the committed state.
// Caller holds s.mu.
func (s *session) view(id string) storagemodels.RawDocument {
	if doc, touched := s.overlay[id]; touched {
		return doc
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return s.store.docs[id]
}
