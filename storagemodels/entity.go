/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "github.com/go-openapi/strfmt"

// Entity is a domain object with an optional identity, eligible for
// persistence. The id is empty before first persistence and immutable
// afterward. EntityKind returns the variant tag of the instance; for the
// family's supertype it must equal the registered supertype name.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
	EntityKind() string
	IsDeleted() bool
	MarkDeleted()
}

// Auditable is an entity family that additionally carries a monotonically
// increasing version counter and last-writer metadata. Version starts at 0
// on insert and increments by exactly 1 on every successful update; it is
// never set by callers.
type Auditable interface {
	Entity
	AuditVersion() int64
	StampAudit(version int64, userID string)
}

// DocumentBase is the embeddable default implementation of Entity, minus
// EntityKind, which each variant declares for itself.
type DocumentBase struct {
	ID      string `dynamodbav:"Id,omitempty" json:"Id,omitempty"`
	Deleted bool   `dynamodbav:"Deleted,omitempty" json:"Deleted,omitempty"`
}

// EntityID returns the document id, empty when transient.
func (b *DocumentBase) EntityID() string { return b.ID }

// SetEntityID assigns the document id on first persistence.
func (b *DocumentBase) SetEntityID(id string) { b.ID = id }

// IsDeleted reports whether the document has been soft-deleted.
func (b *DocumentBase) IsDeleted() bool { return b.Deleted }

// MarkDeleted flips the soft-delete flag. The row stays present.
func (b *DocumentBase) MarkDeleted() { b.Deleted = true }

// AuditInfo is the embeddable audit metadata for auditable entity families.
type AuditInfo struct {
	Version   int64            `dynamodbav:"Version" json:"Version"`
	UpdatedBy string           `dynamodbav:"UpdatedBy,omitempty" json:"UpdatedBy,omitempty"`
	UpdatedAt *strfmt.DateTime `dynamodbav:"UpdatedAt,omitempty" json:"UpdatedAt,omitempty"`
}

// AuditVersion returns the current version counter.
func (a *AuditInfo) AuditVersion() int64 { return a.Version }

// StampAudit records the version and, when userID is non-empty, the
// writer identity. The repository owns all calls; callers never stamp.
func (a *AuditInfo) StampAudit(version int64, userID string) {
	a.Version = version
	if userID != "" {
		a.UpdatedBy = userID
	}
	now := strfmt.DateTime(nowUTC())
	a.UpdatedAt = &now
}
