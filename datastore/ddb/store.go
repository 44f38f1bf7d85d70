/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/registry"
	"github.com/suparena/docrepo/storagemodels"
)

// Store implements datastore.DocumentStore on AWS DynamoDB using a
// single-table layout: every variant of one entity family shares a
// collection partition, with key attributes derived from the family's
// index map patterns.
type Store struct {
	client     *sdk.Client
	tableName  string
	collection string
	catalog    registry.Catalog
	gsi        GSIConfig
}

// Option adjusts Store construction.
type Option func(*Store)

// WithCollectionName overrides the collection name, which defaults to
// the catalog's supertype name.
func WithCollectionName(name string) Option {
	return func(s *Store) { s.collection = name }
}

// WithGSI overrides the secondary-index configuration used for
// collection-wide finds.
func WithGSI(cfg GSIConfig) Option {
	return func(s *Store) { s.gsi = cfg }
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// NewDocumentStore constructs a Store for one entity family over the
// given table.
func NewDocumentStore(client *sdk.Client, tableName string, cat registry.Catalog, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("ddb: client is required")
	}
	if tableName == "" {
		return nil, fmt.Errorf("ddb: table name is required")
	}
	if cat.Supertype == "" {
		return nil, fmt.Errorf("ddb: catalog has no supertype name")
	}

	s := &Store{
		client:     client,
		tableName:  tableName,
		collection: cat.Supertype,
		catalog:    cat,
		gsi:        DefaultGSIConfig,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetByID retrieves a single document by id, or nil when none matches.
// Inside a transaction the session's staged overlay is consulted first.
func (s *Store) GetByID(ctx context.Context, id string, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)

	sess, err := s.sessionOf(opts)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		if doc, touched := sess.lookup(id); touched {
			return storagemodels.CloneDocument(doc), nil
		}
	}

	keyMap, err := s.keyForID(id)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return out.Item, nil
}

// Insert writes a new document with its derived key attributes. The
// write is conditional on the key not existing yet; a collision surfaces
// as an already-exists error.
func (s *Store) Insert(ctx context.Context, doc storagemodels.RawDocument, opts *storagemodels.Options) error {
	opts = storagemodels.EnsureOptions(opts)

	if err := s.validateRequired(doc); err != nil {
		return err
	}

	item := storagemodels.CloneDocument(doc)
	expanded, err := expandMacros(s.indexMap(), item)
	if err != nil {
		return err
	}
	for k, v := range expanded {
		item[k] = &types.AttributeValueMemberS{Value: v}
	}

	condition := "attribute_not_exists(PK)"

	sess, sessErr := s.sessionOf(opts)
	if sessErr != nil {
		return sessErr
	}
	if sess != nil {
		return sess.stagePut(docID(item), item, condition, nil, nil)
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: &condition,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewAlreadyExistsError(s.kindOf(item), docID(item))
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Update merges patch onto the stored document. Standalone updates run
// server-side through an update expression; session-bound updates read
// the current document, merge locally, and stage a conditional put so the
// commit still detects a concurrent writer.
func (s *Store) Update(ctx context.Context, id string, patch storagemodels.RawDocument, bumpVersion bool, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)

	sess, err := s.sessionOf(opts)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return s.updateInSession(ctx, sess, id, patch, bumpVersion, opts)
	}

	keyMap, err := s.keyForID(id)
	if err != nil {
		return nil, err
	}

	expr, err := buildUpdateExpression(patch, bumpVersion, opts.ExpectedVersion)
	if err != nil {
		return nil, err
	}

	out, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       keyMap,
		UpdateExpression:          &expr.Update,
		ConditionExpression:       &expr.Condition,
		ExpressionAttributeNames:  expr.Names,
		ExpressionAttributeValues: expr.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return nil, s.disambiguateConditionFailure(ctx, id, opts.ExpectedVersion)
		}
		return nil, fmt.Errorf("UpdateItem failed: %w", err)
	}
	return out.Attributes, nil
}

// updateInSession applies the merge locally and stages a conditional put.
func (s *Store) updateInSession(ctx context.Context, sess *Session, id string, patch storagemodels.RawDocument, bumpVersion bool, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	current, err := s.GetByID(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.NewNotFoundError("document", id)
	}

	currentVersion := versionOf(current)
	if opts.ExpectedVersion != nil && currentVersion != *opts.ExpectedVersion {
		return nil, errors.NewConditionFailedError("update", "Version = :expected")
	}

	merged := storagemodels.CloneDocument(current)
	for k, v := range patch {
		merged[k] = v
	}
	if bumpVersion {
		merged["Version"] = numberAttr(currentVersion + 1)
	}
	if err := s.validateRequired(merged); err != nil {
		return nil, err
	}

	// Guard the commit against a writer that slipped in after our read:
	// auditable documents pin the version they were read at, others pin
	// bare existence.
	condition := "attribute_exists(PK)"
	var conditionNames map[string]string
	var conditionValues map[string]types.AttributeValue
	if bumpVersion {
		condition = "#ver = :curver"
		conditionNames = map[string]string{"#ver": "Version"}
		conditionValues = map[string]types.AttributeValue{
			":curver": numberAttr(currentVersion),
		}
	}

	if err := sess.stagePut(id, merged, condition, conditionNames, conditionValues); err != nil {
		return nil, err
	}
	return storagemodels.CloneDocument(merged), nil
}

// disambiguateConditionFailure maps a conditional-check failure to the
// precise fault: a missing document or a version mismatch.
func (s *Store) disambiguateConditionFailure(ctx context.Context, id string, expectedVersion *int64) error {
	if expectedVersion == nil {
		return errors.NewNotFoundError("document", id)
	}
	current, err := s.GetByID(ctx, id, nil)
	if err != nil || current == nil {
		return errors.NewNotFoundError("document", id)
	}
	return errors.NewConditionFailedError("update", "Version = :expected")
}

// Delete physically removes a document, reporting whether one existed.
func (s *Store) Delete(ctx context.Context, id string, opts *storagemodels.Options) (bool, error) {
	opts = storagemodels.EnsureOptions(opts)

	sess, err := s.sessionOf(opts)
	if err != nil {
		return false, err
	}
	if sess != nil {
		current, err := s.GetByID(ctx, id, opts)
		if err != nil {
			return false, err
		}
		if current == nil {
			return false, nil
		}
		keyMap, err := s.keyForID(id)
		if err != nil {
			return false, err
		}
		sess.stageDelete(id, keyMap)
		return true, nil
	}

	keyMap, err := s.keyForID(id)
	if err != nil {
		return false, err
	}
	out, err := s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:    &s.tableName,
		Key:          keyMap,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	return len(out.Attributes) > 0, nil
}

// StartSession opens a staged-write transaction session. All writes
// issued under it are published in one TransactWriteItems call on commit.
func (s *Store) StartSession(ctx context.Context) (storagemodels.Session, error) {
	return newSession(s), nil
}

// indexMap returns the family's key layout: the supertype schema's index
// map when declared, the default single-table layout otherwise. Subtype
// schemas contribute validation rules only; every variant of a family
// shares one key layout so id lookups stay uniform.
func (s *Store) indexMap() map[string]string {
	if schema, ok := s.catalog.Schemas[s.catalog.Supertype]; ok && len(schema.IndexMap) > 0 {
		return schema.IndexMap
	}
	return DefaultIndexMap(s.collection)
}

func (s *Store) keyForID(id string) (storagemodels.RawDocument, error) {
	expanded, err := expandStringKey(s.indexMap(), id)
	if err != nil {
		return nil, err
	}
	return buildKeyFromExpanded(expanded)
}

func (s *Store) kindOf(doc storagemodels.RawDocument) string {
	if attr, ok := doc[storagemodels.DiscriminatorKey].(*types.AttributeValueMemberS); ok {
		return attr.Value
	}
	return s.catalog.Supertype
}

// validateRequired enforces the schema descriptor for the document's kind.
func (s *Store) validateRequired(doc storagemodels.RawDocument) error {
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
	return nil
}

func (s *Store) sessionOf(opts *storagemodels.Options) (*Session, error) {
	if opts.Session == nil {
		return nil, nil
	}
	sess, ok := opts.Session.(*Session)
	if !ok || sess.store != s {
		return nil, fmt.Errorf("session does not belong to this store")
	}
	return sess, nil
}
