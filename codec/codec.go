/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/registry"
	"github.com/suparena/docrepo/storagemodels"
)

// Codec hydrates stored documents into concrete entity variants and
// prepares entities for storage, using the EntityType discriminator
// attribute to select the variant.
type Codec[T storagemodels.Entity] struct {
	types *registry.TypeMap[T]
}

// New creates a Codec bound to a type map.
func New[T storagemodels.Entity](types *registry.TypeMap[T]) *Codec[T] {
	return &Codec[T]{types: types}
}

// Hydrate reconstructs a fully-typed entity from a raw stored document.
// A nil document yields the zero entity and no error (no record found).
// A document carrying a discriminator unknown to the registry fails with
// an unregistered-constructor error: that is stored data the running
// registry cannot interpret, distinct from a not-found result.
func (c *Codec[T]) Hydrate(doc storagemodels.RawDocument) (T, error) {
	var zero T
	if doc == nil {
		return zero, nil
	}

	kind, err := discriminatorOf(doc)
	if err != nil {
		return zero, err
	}

	var entity T
	if kind == "" {
		entity = c.types.SupertypeConstructor()()
	} else {
		entry, ok := c.types.Resolve(kind)
		if !ok {
			return zero, errors.NewUnregisteredConstructorError(kind)
		}
		entity = entry.New()
	}

	if err := attributevalue.UnmarshalMap(doc, entity); err != nil {
		return zero, fmt.Errorf("failed to hydrate %q document: %w", c.kindOrSuper(kind), err)
	}
	return entity, nil
}

// Dehydrate marshals an entity into its stored representation. When the
// entity's kind differs from the supertype name and the document does not
// already carry a discriminator, the discriminator attribute is stamped
// with the kind. No-op otherwise.
func (c *Codec[T]) Dehydrate(entity T) (storagemodels.RawDocument, error) {
	doc, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to dehydrate entity: %w", err)
	}

	kind := entity.EntityKind()
	if kind != c.types.SupertypeName() {
		if _, stamped := doc[storagemodels.DiscriminatorKey]; !stamped {
			doc[storagemodels.DiscriminatorKey] = &types.AttributeValueMemberS{Value: kind}
		}
	}
	return doc, nil
}

func (c *Codec[T]) kindOrSuper(kind string) string {
	if kind == "" {
		return c.types.SupertypeName()
	}
	return kind
}

// discriminatorOf reads the discriminator attribute off a raw document,
// returning "" when absent.
func discriminatorOf(doc storagemodels.RawDocument) (string, error) {
	attr, ok := doc[storagemodels.DiscriminatorKey]
	if !ok {
		return "", nil
	}
	var kind string
	if err := attributevalue.Unmarshal(attr, &kind); err != nil {
		return "", fmt.Errorf("failed to unmarshal %s: %w", storagemodels.DiscriminatorKey, err)
	}
	return kind, nil
}
