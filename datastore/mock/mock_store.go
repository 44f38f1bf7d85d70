/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory DocumentStore implementation for testing.
package mock

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/registry"
	"github.com/suparena/docrepo/storagemodels"
)

// Store is an in-memory DocumentStore with the same session semantics as
// the DynamoDB implementation: writes issued under a session stay staged
// until Commit and disappear on Abort.
type Store struct {
	mu      sync.RWMutex
	catalog registry.Catalog
	docs    map[string]storagemodels.RawDocument
	order   []string

	insertErr error
	updateErr error
	deleteErr error
}

// NewDocumentStore creates an empty in-memory store validating against
// the given schema catalog.
func NewDocumentStore(cat registry.Catalog) *Store {
	return &Store{
		catalog: cat,
		docs:    make(map[string]storagemodels.RawDocument),
	}
}

// WithInsertError makes Insert operations return an error
func (s *Store) WithInsertError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertErr = err
	return s
}

// WithUpdateError makes Update operations return an error
func (s *Store) WithUpdateError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
	return s
}

// WithDeleteError makes Delete operations return an error
func (s *Store) WithDeleteError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
	return s
}

func (s *Store) injectedErr(pick func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick()
}

// GetByID returns the stored document with the given id, or nil.
func (s *Store) GetByID(ctx context.Context, id string, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)
	if sess, err := s.sessionOf(opts); err != nil {
		return nil, err
	} else if sess != nil {
		return sess.get(id), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return storagemodels.CloneDocument(s.docs[id]), nil
}

// FindOne returns the first committed document matching opts.Filters in
// insertion order, or nil.
func (s *Store) FindOne(ctx context.Context, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if matches(s.docs[id], opts.Filters) {
			return storagemodels.CloneDocument(s.docs[id]), nil
		}
	}
	return nil, nil
}

// Find returns every committed document matching opts.Filters, sorted and
// paged per opts.
func (s *Store) Find(ctx context.Context, opts *storagemodels.Options) ([]storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)

	s.mu.RLock()
	var out []storagemodels.RawDocument
	for _, id := range s.order {
		if matches(s.docs[id], opts.Filters) {
			out = append(out, storagemodels.CloneDocument(s.docs[id]))
		}
	}
	s.mu.RUnlock()

	if opts.SortBy != nil {
		sortDocs(out, opts.SortBy)
	}
	return pageDocs(out, opts.Pageable), nil
}

// Stream emits every committed document matching opts.Filters.
func (s *Store) Stream(ctx context.Context, opts *storagemodels.Options, sopts ...storagemodels.StreamOption) <-chan storagemodels.DocumentResult {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range sopts {
		opt(&options)
	}

	resultCh := make(chan storagemodels.DocumentResult, options.BufferSize)
	docs, err := s.Find(ctx, opts)

	go func() {
		defer close(resultCh)
		if err != nil {
			resultCh <- storagemodels.DocumentResult{Error: err}
			return
		}
		for i, doc := range docs {
			select {
			case <-ctx.Done():
				return
			case resultCh <- storagemodels.DocumentResult{
				Doc:  doc,
				Meta: storagemodels.StreamMeta{Index: int64(i), PageNumber: 1},
			}:
			}
		}
	}()

	return resultCh
}

// Insert writes a new document, or stages it when a session is bound.
func (s *Store) Insert(ctx context.Context, doc storagemodels.RawDocument, opts *storagemodels.Options) error {
	if err := s.injectedErr(func() error { return s.insertErr }); err != nil {
		return err
	}
	opts = storagemodels.EnsureOptions(opts)

	id := docID(doc)
	if id == "" {
		return errors.NewValidationError("Id", "document has no id attribute")
	}

	if sess, err := s.sessionOf(opts); err != nil {
		return err
	} else if sess != nil {
		return sess.stageInsert(id, doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; exists {
		return errors.NewAlreadyExistsError(s.kindOf(doc), id)
	}
	if err := s.validate(doc, id, nil); err != nil {
		return err
	}
	s.put(id, doc)
	return nil
}

// Update merges patch onto the stored document and returns the result,
// or stages the merged document when a session is bound.
func (s *Store) Update(ctx context.Context, id string, patch storagemodels.RawDocument, bumpVersion bool, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	if err := s.injectedErr(func() error { return s.updateErr }); err != nil {
		return nil, err
	}
	opts = storagemodels.EnsureOptions(opts)

	if sess, err := s.sessionOf(opts); err != nil {
		return nil, err
	} else if sess != nil {
		return sess.stageUpdate(id, patch, bumpVersion, opts.ExpectedVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.docs[id]
	if !exists {
		return nil, errors.NewNotFoundError("document", id)
	}
	merged, err := mergePatch(current, patch, bumpVersion, opts.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if err := s.validate(merged, id, nil); err != nil {
		return nil, err
	}
	s.docs[id] = merged
	return storagemodels.CloneDocument(merged), nil
}

// Delete physically removes a document, or stages the removal when a
// session is bound.
func (s *Store) Delete(ctx context.Context, id string, opts *storagemodels.Options) (bool, error) {
	if err := s.injectedErr(func() error { return s.deleteErr }); err != nil {
		return false, err
	}
	opts = storagemodels.EnsureOptions(opts)

	if sess, err := s.sessionOf(opts); err != nil {
		return false, err
	} else if sess != nil {
		return sess.stageDelete(id), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; !exists {
		return false, nil
	}
	s.remove(id)
	return true, nil
}

// StartSession opens a staged-write session against this store.
func (s *Store) StartSession(ctx context.Context) (storagemodels.Session, error) {
	return &session{
		store:   s,
		overlay: make(map[string]storagemodels.RawDocument),
	}, nil
}

// Helper methods for testing

// Count returns the number of committed documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// IDs returns the committed document ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Clear removes all committed documents.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]storagemodels.RawDocument)
	s.order = nil
}

// internal, caller holds s.mu

func (s *Store) put(id string, doc storagemodels.RawDocument) {
	if _, exists := s.docs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.docs[id] = storagemodels.CloneDocument(doc)
}

func (s *Store) remove(id string) {
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) kindOf(doc storagemodels.RawDocument) string {
	if attr, ok := doc[storagemodels.DiscriminatorKey].(*types.AttributeValueMemberS); ok {
		return attr.Value
	}
	return s.catalog.Supertype
}

// validate enforces the schema descriptor for the document's kind.
// extra, when non-nil, holds session-staged documents included in
// uniqueness checks; staged deletions appear as nil entries.
func (s *Store) validate(doc storagemodels.RawDocument, id string, extra map[string]storagemodels.RawDocument) error {
	schema, ok := s.catalog.Schemas[s.kindOf(doc)]
	if !ok {
		return nil
	}

	for _, field := range schema.Required {
		attr, present := doc[field]
		if !present {
			return errors.NewValidationError(field, "required attribute is missing")
		}
		if _, isNull := attr.(*types.AttributeValueMemberNULL); isNull {
			return errors.NewValidationError(field, "required attribute is null")
		}
	}

	for _, field := range schema.Unique {
		attr, present := doc[field]
		if !present {
			continue
		}
		check := func(otherID string, other storagemodels.RawDocument) error {
			if other == nil || otherID == id {
				return nil
			}
			if extra != nil {
				if staged, overridden := extra[otherID]; overridden {
					other = staged
					if other == nil {
						return nil
					}
				}
			}
			if existing, ok := other[field]; ok && reflect.DeepEqual(existing, attr) {
				return errors.NewValidationError(field, fmt.Sprintf("duplicate value for unique attribute (document %q)", otherID))
			}
			return nil
		}
		for otherID, other := range s.docs {
			if err := check(otherID, other); err != nil {
				return err
			}
		}
		for otherID, other := range extra {
			if _, committed := s.docs[otherID]; committed {
				continue // already checked through the override above
			}
			if otherID == id || other == nil {
				continue
			}
			if existing, ok := other[field]; ok && reflect.DeepEqual(existing, attr) {
				return errors.NewValidationError(field, fmt.Sprintf("duplicate value for unique attribute (document %q)", otherID))
			}
		}
	}
	return nil
}

func (s *Store) sessionOf(opts *storagemodels.Options) (*session, error) {
	if opts.Session == nil {
		return nil, nil
	}
	sess, ok := opts.Session.(*session)
	if !ok || sess.store != s {
		return nil, fmt.Errorf("session does not belong to this store")
	}
	return sess, nil
}

// document helpers

func docID(doc storagemodels.RawDocument) string {
	if attr, ok := doc["Id"].(*types.AttributeValueMemberS); ok {
		return attr.Value
	}
	return ""
}

func matches(doc storagemodels.RawDocument, filter storagemodels.Filter) bool {
	if doc == nil {
		return false
	}
	for field, want := range filter {
		attr, present := doc[field]
		if !present {
			return false
		}
		wantAttr, err := attributevalue.Marshal(want)
		if err != nil || !reflect.DeepEqual(attr, wantAttr) {
			return false
		}
	}
	return true
}

func mergePatch(current, patch storagemodels.RawDocument, bumpVersion bool, expectedVersion *int64) (storagemodels.RawDocument, error) {
	version := versionOf(current)
	if expectedVersion != nil && version != *expectedVersion {
		return nil, errors.NewConditionFailedError("update", "Version = :expected")
	}

	merged := storagemodels.CloneDocument(current)
	for k, v := range patch {
		merged[k] = v
	}
	if bumpVersion {
		merged["Version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(version+1, 10)}
	}
	return merged, nil
}

func versionOf(doc storagemodels.RawDocument) int64 {
	attr, ok := doc["Version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func sortDocs(docs []storagemodels.RawDocument, by *storagemodels.Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp := compareAttr(docs[i][by.Field], docs[j][by.Field])
		if by.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareAttr(a, b types.AttributeValue) int {
	av, aok := attrScalar(a)
	bv, bok := attrScalar(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	an, aerr := strconv.ParseFloat(av, 64)
	bn, berr := strconv.ParseFloat(bv, 64)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func attrScalar(attr types.AttributeValue) (string, bool) {
	switch v := attr.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, true
	case *types.AttributeValueMemberN:
		return v.Value, true
	case *types.AttributeValueMemberBOOL:
		return strconv.FormatBool(v.Value), true
	default:
		return "", false
	}
}

func pageDocs(docs []storagemodels.RawDocument, p *storagemodels.Pageable) []storagemodels.RawDocument {
	if !p.Enabled() {
		return docs
	}
	start := (p.PageNumber - 1) * p.Offset
	if start >= len(docs) {
		return nil
	}
	end := start + p.Offset
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}
