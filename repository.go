/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docrepo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/suparena/docrepo/codec"
	"github.com/suparena/docrepo/datastore"
	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/registry"
	"github.com/suparena/docrepo/storagemodels"
)

// Repository provides typed persistence for one closed entity family
// over a document store. It owns the insert-vs-update decision, the
// optimistic-version bookkeeping for auditable entities, and the
// translation of storage-layer faults into the public error contract.
//
// An entity instance moves Transient (no id) → Persisted (id assigned,
// stored) → Deleted (soft-deleted row, or physically removed).
type Repository[T storagemodels.Entity] struct {
	types *registry.TypeMap[T]
	codec *codec.Codec[T]
	store datastore.DocumentStore
}

// NewRepository builds a repository from a type map and a document store.
// Construction fails immediately when either collaborator is missing; the
// type map itself has already enforced that the supertype entry exists
// and that its name resolved.
func NewRepository[T storagemodels.Entity](types *registry.TypeMap[T], store datastore.DocumentStore) (*Repository[T], error) {
	if types == nil {
		return nil, errors.NewInvalidArgumentError("types", "type map is required")
	}
	if store == nil {
		return nil, errors.NewInvalidArgumentError("store", "document store is required")
	}
	return &Repository[T]{
		types: types,
		codec: codec.New(types),
		store: store,
	}, nil
}

// Types returns the repository's type map.
func (r *Repository[T]) Types() *registry.TypeMap[T] { return r.types }

// Store returns the repository's document store.
func (r *Repository[T]) Store() datastore.DocumentStore { return r.store }

// Save persists an entity: entities without an id are inserted, entities
// with an id are updated by merging their supplied fields onto the stored
// document. Storage validation failures and uniqueness violations surface
// as validation errors carrying the original cause. Returns the hydrated,
// persisted result, never the raw input.
func (r *Repository[T]) Save(ctx context.Context, entity T, opts *storagemodels.Options) (T, error) {
	var zero T
	if isNilEntity(entity) {
		return zero, errors.NewInvalidArgumentError("entity", "entity is nil")
	}

	if entity.EntityID() == "" {
		res, err := r.insert(ctx, entity, opts)
		if err != nil {
			return zero, translateInsertError(err, entity.EntityKind())
		}
		return res, nil
	}

	res, err := r.update(ctx, entity, opts)
	if err != nil {
		return zero, translateUpdateError(err)
	}
	return res, nil
}

// insert assigns an id, stamps audit metadata for auditable families,
// and writes the dehydrated document.
func (r *Repository[T]) insert(ctx context.Context, entity T, opts *storagemodels.Options) (T, error) {
	var zero T
	opts = storagemodels.EnsureOptions(opts)

	kind := entity.EntityKind()
	if !r.types.Contains(kind) {
		return zero, errors.NewInvalidArgumentError("entity",
			fmt.Sprintf("this repository was not configured to persist type %q", kind))
	}

	entity.SetEntityID(uuid.NewString())
	if a, ok := any(entity).(storagemodels.Auditable); ok {
		a.StampAudit(0, opts.UserID)
	}

	doc, err := r.codec.Dehydrate(entity)
	if err != nil {
		entity.SetEntityID("")
		return zero, err
	}
	if err := r.store.Insert(ctx, doc, opts); err != nil {
		// The caller keeps a transient instance; leaving the generated id
		// on it would route a retried Save to the update path.
		entity.SetEntityID("")
		return zero, err
	}
	return r.codec.Hydrate(doc)
}

// update merges the entity's supplied fields onto the stored document.
// Fields the entity leaves unset (nil pointers, empty optionals) are
// omitted from the marshaled patch and therefore left unchanged.
func (r *Repository[T]) update(ctx context.Context, entity T, opts *storagemodels.Options) (T, error) {
	var zero T
	opts = storagemodels.EnsureOptions(opts)
	id := entity.EntityID()

	a, auditable := any(entity).(storagemodels.Auditable)
	if auditable {
		// Refresh writer metadata pre-marshal; the version attribute is
		// stripped below and bumped by the store inside the write itself.
		a.StampAudit(a.AuditVersion(), opts.UserID)
	}

	doc, err := r.codec.Dehydrate(entity)
	if err != nil {
		return zero, err
	}

	patch := storagemodels.CloneDocument(doc)
	delete(patch, "Id")
	delete(patch, "Version")
	if opts.UserID == "" {
		delete(patch, "UpdatedBy")
	}

	updated, err := r.store.Update(ctx, id, patch, auditable, opts)
	if err != nil {
		if errors.IsNotFound(err) {
			return zero, errors.NewInvalidArgumentError("id",
				fmt.Sprintf("no stored document with id %q", id))
		}
		return zero, err
	}
	return r.codec.Hydrate(updated)
}

// FindByID returns the hydrated entity with the given id, or the zero
// entity when no document matches.
func (r *Repository[T]) FindByID(ctx context.Context, id string, opts *storagemodels.Options) (T, error) {
	var zero T
	if id == "" {
		return zero, errors.NewInvalidArgumentError("id", "id is required")
	}
	doc, err := r.store.GetByID(ctx, id, storagemodels.EnsureOptions(opts))
	if err != nil {
		return zero, err
	}
	return r.codec.Hydrate(doc)
}

// FindOne returns the first entity matching the predicate in natural
// storage order, or the zero entity when nothing matches. The predicate
// comes from filters, falling back to opts.Filters; supplying neither is
// an invalid argument.
func (r *Repository[T]) FindOne(ctx context.Context, filters storagemodels.Filter, opts *storagemodels.Options) (T, error) {
	var zero T
	opts = storagemodels.EnsureOptions(opts)

	if filters == nil {
		filters = opts.Filters
	}
	if filters == nil {
		return zero, errors.NewInvalidArgumentError("filters", "a filter predicate is required")
	}

	doc, err := r.store.FindOne(ctx, opts.WithFilters(filters))
	if err != nil {
		return zero, err
	}
	return r.codec.Hydrate(doc)
}

// FindAll returns every entity matching opts.Filters with opts.SortBy and
// opts.Pageable applied, preserving storage-query order. An empty result
// is a nil slice, not an error.
func (r *Repository[T]) FindAll(ctx context.Context, opts *storagemodels.Options) ([]T, error) {
	opts = storagemodels.EnsureOptions(opts)
	if p := opts.Pageable; p != nil && (p.PageNumber < 0 || p.Offset < 0) {
		return nil, errors.NewInvalidArgumentError("pageable",
			fmt.Sprintf("page number %d and offset %d must not be negative", p.PageNumber, p.Offset))
	}

	docs, err := r.store.Find(ctx, opts)
	if err != nil {
		return nil, err
	}

	var out []T
	for _, doc := range docs {
		entity, err := r.codec.Hydrate(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// DeleteByID physically removes the document with the given id, reporting
// whether a document existed.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string, opts *storagemodels.Options) (bool, error) {
	if id == "" {
		return false, errors.NewInvalidArgumentError("id", "id is required")
	}
	return r.store.Delete(ctx, id, storagemodels.EnsureOptions(opts))
}

// DeleteAllMatching soft-deletes every entity matching the filter and
// writes them back as one batch inside a transaction, returning the count
// written. A nil filter fails fast: an unfiltered bulk delete is almost
// always an accident. If any element of the batch fails validation the
// whole transaction aborts and zero entities are deleted.
func (r *Repository[T]) DeleteAllMatching(ctx context.Context, filters storagemodels.Filter, opts *storagemodels.Options) (int, error) {
	if filters == nil {
		return 0, errors.NewInvalidArgumentError("filters", "filters must not be nil for a bulk delete")
	}

	return RunInTransaction(ctx, r.store, opts, func(txOpts *storagemodels.Options) (int, error) {
		// The stream is abandoned mid-iteration when an element fails;
		// cancellation is the only way its producer learns to stop.
		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		count := 0
		for res := range r.store.Stream(streamCtx, txOpts.WithFilters(filters)) {
			if res.Error != nil {
				return 0, res.Error
			}
			entity, err := r.codec.Hydrate(res.Doc)
			if err != nil {
				return 0, err
			}
			entity.MarkDeleted()
			if _, err := r.Save(ctx, entity, txOpts); err != nil {
				return 0, err
			}
			count++
		}
		return count, nil
	})
}

// translateInsertError keeps internal hydration faults out of the insert
// path: an unregistered constructor surfacing here points at repository
// configuration, not stored data.
func translateInsertError(err error, kind string) error {
	switch {
	case errors.IsUnregisteredConstructor(err):
		return errors.NewInvalidArgumentError("entity",
			fmt.Sprintf("this repository was not configured to persist type %q", kind))
	case errors.IsAlreadyExists(err):
		return errors.NewValidationErrorCause("insert rejected by storage", err)
	default:
		return err
	}
}

func translateUpdateError(err error) error {
	if errors.IsAlreadyExists(err) {
		return errors.NewValidationErrorCause("update rejected by storage", err)
	}
	return err
}

// isNilEntity reports whether the entity interface value is nil or wraps
// a nil pointer.
func isNilEntity(e any) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
