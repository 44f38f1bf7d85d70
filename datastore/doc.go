/*
Package datastore defines the storage collaborator contract for docrepo.

The main interface is DocumentStore, collection-scoped raw-document CRUD
with predicate finds, streaming, and session-scoped transactions:

	type DocumentStore interface {
	    GetByID(ctx context.Context, id string, opts *storagemodels.Options) (storagemodels.RawDocument, error)
	    FindOne(ctx context.Context, opts *storagemodels.Options) (storagemodels.RawDocument, error)
	    Find(ctx context.Context, opts *storagemodels.Options) ([]storagemodels.RawDocument, error)
	    Stream(ctx context.Context, opts *storagemodels.Options, sopts ...storagemodels.StreamOption) <-chan storagemodels.DocumentResult
	    Insert(ctx context.Context, doc storagemodels.RawDocument, opts *storagemodels.Options) error
	    Update(ctx context.Context, id string, patch storagemodels.RawDocument, bumpVersion bool, opts *storagemodels.Options) (storagemodels.RawDocument, error)
	    Delete(ctx context.Context, id string, opts *storagemodels.Options) (bool, error)
	    StartSession(ctx context.Context) (storagemodels.Session, error)
	}

Implementations:
  - ddb: DynamoDB implementation, staged-write-set sessions committed with TransactWriteItems
  - mock: In-memory implementation with the same session semantics, for testing

Stores work on raw documents only; hydration into typed entity variants
is the codec's job, one layer up.
*/
package datastore
