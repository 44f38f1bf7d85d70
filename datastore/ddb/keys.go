/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/storagemodels"
)

// GSIConfig names the secondary index used for collection-wide finds.
type GSIConfig struct {
	IndexName        string
	PartitionKeyName string
	SortKeyName      string
}

// DefaultGSIConfig matches the single-table layout produced by
// DefaultIndexMap.
var DefaultGSIConfig = GSIConfig{
	IndexName:        "GSI1",
	PartitionKeyName: "GSI1PK",
	SortKeyName:      "GSI1SK",
}

// DefaultIndexMap derives the standard single-table key layout for a
// collection: PK/SK identify one document, GSI1 groups the collection
// under a static partition sorted by id.
func DefaultIndexMap(collection string) map[string]string {
	coll := strings.ToUpper(collection)
	return map[string]string{
		"PK":     coll + "#{Id}",
		"SK":     coll + "#{Id}",
		"GSI1PK": coll,
		"GSI1SK": "{Id}",
	}
}

var macroPattern = regexp.MustCompile(`\{([^}]+)\}`)

// expandMacros substitutes every {Field} macro in the index-map patterns
// with the corresponding attribute value of the document.
func expandMacros(indexMap map[string]string, doc storagemodels.RawDocument) (map[string]string, error) {
	expanded := make(map[string]string, len(indexMap))
	for keyName, pattern := range indexMap {
		value, err := expandPattern(pattern, func(field string) (string, error) {
			attr, ok := doc[field]
			if !ok {
				return "", fmt.Errorf("index map macro {%s} has no matching attribute", field)
			}
			return attrString(attr)
		})
		if err != nil {
			return nil, err
		}
		expanded[keyName] = value
	}
	return expanded, nil
}

// expandStringKey substitutes a single id value into the index-map
// patterns. It supports patterns with at most one macro, which is the
// shape id-addressable layouts use.
func expandStringKey(indexMap map[string]string, id string) (map[string]string, error) {
	expanded := make(map[string]string, len(indexMap))
	for keyName, pattern := range indexMap {
		macros := macroPattern.FindAllString(pattern, -1)
		if len(macros) > 1 {
			return nil, fmt.Errorf("key pattern %q has %d macros; cannot expand from a single id", pattern, len(macros))
		}
		value := pattern
		if len(macros) == 1 {
			value = strings.Replace(pattern, macros[0], id, 1)
		}
		expanded[keyName] = value
	}
	return expanded, nil
}

// buildKeyFromExpanded picks the primary-key attributes out of an
// expanded index map.
func buildKeyFromExpanded(expanded map[string]string) (storagemodels.RawDocument, error) {
	pk, ok := expanded["PK"]
	if !ok {
		return nil, fmt.Errorf("expanded index map has no PK")
	}
	key := storagemodels.RawDocument{
		"PK": &types.AttributeValueMemberS{Value: pk},
	}
	if sk, ok := expanded["SK"]; ok {
		key["SK"] = &types.AttributeValueMemberS{Value: sk}
	}
	return key, nil
}

func expandPattern(pattern string, resolve func(field string) (string, error)) (string, error) {
	var expandErr error
	value := macroPattern.ReplaceAllStringFunc(pattern, func(macro string) string {
		field := macro[1 : len(macro)-1]
		v, err := resolve(field)
		if err != nil && expandErr == nil {
			expandErr = err
		}
		return v
	})
	return value, expandErr
}

// staticPartition returns the pattern's literal value, failing when the
// pattern needs a document to expand.
func staticPartition(pattern string) (string, error) {
	if macroPattern.MatchString(pattern) {
		return "", fmt.Errorf("collection partition pattern %q must be static", pattern)
	}
	return pattern, nil
}

func attrString(attr types.AttributeValue) (string, error) {
	switch v := attr.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return v.Value, nil
	case *types.AttributeValueMemberBOOL:
		return strconv.FormatBool(v.Value), nil
	default:
		return "", fmt.Errorf("unsupported attribute type %T in key macro", attr)
	}
}

func docID(doc storagemodels.RawDocument) string {
	if attr, ok := doc["Id"].(*types.AttributeValueMemberS); ok {
		return attr.Value
	}
	return ""
}

func versionOf(doc storagemodels.RawDocument) int64 {
	if attr, ok := doc["Version"].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func numberAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}
