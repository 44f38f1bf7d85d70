/*
Package docrepo provides a type-mapped repository layer for Go
applications, persisting a closed family of polymorphic entity variants
in one document collection without per-subtype marshalling or
transaction boilerplate.

A repository is built from two collaborators: a registry.TypeMap that
pairs each variant's constructor with its document schema, and a
datastore.DocumentStore over the backing document database. At read time
the stored discriminator attribute selects the exact variant that wrote
the document; at write time the repository owns insert-vs-update
dispatch, id generation, and version bookkeeping for auditable families.

Key Features:
  - Type-safe operations using Go generics over a closed variant family
  - Discriminator-driven hydration: one collection, many concrete types
  - Insert/update dispatch with partial-field merge on update
  - Optimistic version counters and writer stamping for auditable entities
  - All-or-nothing units of work over session-scoped store transactions
  - Semantic error types for better error handling
  - In-memory mock store with real transaction semantics for testing

Basic Usage:

	types, _ := registry.New(map[string]registry.Entry[Activity]{
	    registry.DefaultKey: {New: func() Activity { return &BaseActivity{} }},
	    "Call":              {New: func() Activity { return &CallActivity{} }},
	})

	repo, _ := docrepo.NewRepository[Activity](types, store)

	saved, err := repo.Save(ctx, &CallActivity{...}, nil)
	again, err := repo.FindByID(ctx, saved.EntityID(), nil)

	// Compound operations run atomically:
	n, err := repo.DeleteAllMatching(ctx, storagemodels.Filter{"Status": "stale"}, nil)

For more information, see the documentation at https://github.com/suparena/docrepo
*/
package docrepo
