/*
Package storagemodels defines the data structures shared across docrepo.

Key Types:

Entity and Auditable:
The contracts a domain object fulfills to be persisted. DocumentBase and
AuditInfo are embeddable defaults; each variant declares its own
EntityKind tag:

	type BaseActivity struct {
	    storagemodels.DocumentBase
	    storagemodels.AuditInfo
	    Title *string `dynamodbav:"Title,omitempty"`
	}

	func (a *BaseActivity) EntityKind() string { return "Activity" }

Options:
The immutable per-operation configuration accompanying every repository
call:

	opts := &storagemodels.Options{
	    Filters:  storagemodels.Filter{"Status": "open"},
	    Pageable: &storagemodels.Pageable{PageNumber: 2, Offset: 25},
	    SortBy:   &storagemodels.Sort{Field: "Title"},
	    UserID:   "auditor-7",
	}

RawDocument:
The stored representation of an entity, a flat DynamoDB attribute map.
Subtype documents additionally carry the DiscriminatorKey attribute.

DocumentResult / StreamOptions:
Results and configuration for streaming finds:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
