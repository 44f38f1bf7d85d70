/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DiscriminatorKey is the attribute recording which subtype constructor
// produced a stored document. It is present only when the persisted
// instance is a subtype; a document without it always hydrates through
// the supertype constructor.
const DiscriminatorKey = "EntityType"

// RawDocument is the stored representation of an entity: a flat map of
// DynamoDB attribute values, including the discriminator attribute when
// the document holds a subtype.
type RawDocument = map[string]types.AttributeValue

// CloneDocument returns a shallow copy of doc.
func CloneDocument(doc RawDocument) RawDocument {
	if doc == nil {
		return nil
	}
	c := make(RawDocument, len(doc))
	for k, v := range doc {
		c[k] = v
	}
	return c
}

func nowUTC() time.Time { return time.Now().UTC() }
