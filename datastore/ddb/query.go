/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/errors"
	"github.com/suparena/docrepo/storagemodels"
)

// Find returns every document in the collection matching the filters,
// sorted and paged per the options. Matching runs server-side through a
// filter expression; ordering and paging run client-side because the
// sort field is caller-chosen.
func (s *Store) Find(ctx context.Context, opts *storagemodels.Options) ([]storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)

	docs, err := s.queryCollection(ctx, opts.Filters, 0)
	if err != nil {
		return nil, err
	}
	sortDocs(docs, opts.SortBy)
	return pageDocs(docs, opts.Pageable), nil
}

// FindOne returns the first document matching the filters, or nil when
// none does.
func (s *Store) FindOne(ctx context.Context, opts *storagemodels.Options) (storagemodels.RawDocument, error) {
	opts = storagemodels.EnsureOptions(opts)

	docs, err := s.queryCollection(ctx, opts.Filters, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// queryCollection pages through the collection partition on the GSI,
// collecting up to limit matches (0 means all).
func (s *Store) queryCollection(ctx context.Context, filter storagemodels.Filter, limit int) ([]storagemodels.RawDocument, error) {
	input, err := s.collectionQueryInput(filter)
	if err != nil {
		return nil, err
	}

	var docs []storagemodels.RawDocument
	for {
		out, err := s.queryWithRetry(ctx, input, 3)
		if err != nil {
			return nil, err
		}
		docs = append(docs, out.Items...)
		if limit > 0 && len(docs) >= limit {
			return docs[:limit], nil
		}
		if out.LastEvaluatedKey == nil {
			return docs, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// collectionQueryInput builds the query for the collection partition,
// with an optional equality filter expression.
func (s *Store) collectionQueryInput(filter storagemodels.Filter) (*sdk.QueryInput, error) {
	partition, err := staticPartition(s.indexMap()[s.gsi.PartitionKeyName])
	if err != nil {
		return nil, err
	}

	keyCondition := "#pk = :pk"
	names := map[string]string{"#pk": s.gsi.PartitionKeyName}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: partition},
	}

	input := &sdk.QueryInput{
		TableName:                 &s.tableName,
		IndexName:                 &s.gsi.IndexName,
		KeyConditionExpression:    &keyCondition,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	if len(filter) > 0 {
		filterExpr, err := buildFilterExpression(filter, names, values)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = &filterExpr
	}
	return input, nil
}

// buildFilterExpression renders an equality conjunction over the filter
// map, adding its placeholders to the shared name and value maps.
func buildFilterExpression(filter storagemodels.Filter, names map[string]string, values map[string]types.AttributeValue) (string, error) {
	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	for i, field := range fields {
		av, err := attributevalue.Marshal(filter[field])
		if err != nil {
			return "", fmt.Errorf("failed to marshal filter value for %q: %w", field, err)
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":f%d", i)
		names[nameKey] = field
		values[valueKey] = av
		clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	return strings.Join(clauses, " AND "), nil
}

// updateExpression carries the rendered pieces of an UpdateItem call.
type updateExpression struct {
	Update    string
	Condition string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// buildUpdateExpression renders a SET expression assigning each patch
// attribute, with an optional server-side version bump and an optional
// expected-version condition.
func buildUpdateExpression(patch storagemodels.RawDocument, bumpVersion bool, expectedVersion *int64) (*updateExpression, error) {
	if len(patch) == 0 && !bumpVersion {
		return nil, errors.NewInvalidArgumentError("patch", "no attributes to update")
	}

	fields := make([]string, 0, len(patch))
	for field := range patch {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	names := make(map[string]string, len(fields)+1)
	values := make(map[string]types.AttributeValue, len(fields)+2)
	assignments := make([]string, 0, len(fields)+1)
	for i, field := range fields {
		nameKey := fmt.Sprintf("#u%d", i)
		valueKey := fmt.Sprintf(":u%d", i)
		names[nameKey] = field
		values[valueKey] = patch[field]
		assignments = append(assignments, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}

	condition := "attribute_exists(PK)"
	if bumpVersion {
		names["#ver"] = "Version"
		values[":zero"] = numberAttr(0)
		values[":one"] = numberAttr(1)
		assignments = append(assignments, "#ver = if_not_exists(#ver, :zero) + :one")
	}
	if expectedVersion != nil {
		names["#ver"] = "Version"
		values[":expected"] = numberAttr(*expectedVersion)
		condition += " AND #ver = :expected"
	}

	return &updateExpression{
		Update:    "SET " + strings.Join(assignments, ", "),
		Condition: condition,
		Names:     names,
		Values:    values,
	}, nil
}

// queryWithRetry retries throttled or transient query failures with
// exponential backoff.
func (s *Store) queryWithRetry(ctx context.Context, input *sdk.QueryInput, maxRetries int) (*sdk.QueryOutput, error) {
	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		out, err := s.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		if !isRetryableError(err) {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("query failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableError reports whether the failure is worth retrying.
func isRetryableError(err error) bool {
	var throttled *types.ProvisionedThroughputExceededException
	if stderrors.As(err, &throttled) {
		return true
	}
	var internal *types.InternalServerError
	if stderrors.As(err, &internal) {
		return true
	}
	var limit *types.RequestLimitExceeded
	return stderrors.As(err, &limit)
}

// sortDocs orders documents by the requested attribute. Documents that
// lack the attribute sort last.
func sortDocs(docs []storagemodels.RawDocument, by *storagemodels.Sort) {
	if by == nil || by.Field == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ai, iok := docs[i][by.Field]
		aj, jok := docs[j][by.Field]
		if !iok || !jok {
			return iok
		}
		cmp := compareAttr(ai, aj)
		if by.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareAttr compares two attribute values of matching scalar type.
func compareAttr(a, b types.AttributeValue) int {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		if bv, ok := b.(*types.AttributeValueMemberS); ok {
			return strings.Compare(av.Value, bv.Value)
		}
	case *types.AttributeValueMemberN:
		if bv, ok := b.(*types.AttributeValueMemberN); ok {
			an, aerr := strconv.ParseFloat(av.Value, 64)
			bn, berr := strconv.ParseFloat(bv.Value, 64)
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
			return strings.Compare(av.Value, bv.Value)
		}
	case *types.AttributeValueMemberBOOL:
		if bv, ok := b.(*types.AttributeValueMemberBOOL); ok {
			switch {
			case av.Value == bv.Value:
				return 0
			case !av.Value:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

// pageDocs slices out a one-based page. A disabled pageable returns the
// full set.
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
