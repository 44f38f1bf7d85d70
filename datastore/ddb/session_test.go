/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/registry"
	"github.com/suparena/docrepo/storagemodels"
)

func stagingStore() *Store {
	return &Store{
		tableName:  "t",
		collection: "Activity",
		catalog:    registry.Catalog{Supertype: "Activity"},
		gsi:        DefaultGSIConfig,
	}
}

func stagedDoc(id, title string) storagemodels.RawDocument {
	return storagemodels.RawDocument{
		"Id":    &types.AttributeValueMemberS{Value: id},
		"PK":    &types.AttributeValueMemberS{Value: "ACTIVITY#" + id},
		"SK":    &types.AttributeValueMemberS{Value: "ACTIVITY#" + id},
		"Title": &types.AttributeValueMemberS{Value: title},
	}
}

// One transaction may touch an item only once, so a second write to the
// same id must fold into the staged entry instead of appending another.
func TestSessionCoalescesPutsPerItem(t *testing.T) {
	sess := newSession(stagingStore())

	insertCond := "attribute_not_exists(PK)"
	if err := sess.stagePut("a-1", stagedDoc("a-1", "first"), insertCond, nil, nil); err != nil {
		t.Fatalf("stagePut failed: %v", err)
	}
	if err := sess.stagePut("a-1", stagedDoc("a-1", "second"), "attribute_exists(PK)", nil, nil); err != nil {
		t.Fatalf("second stagePut failed: %v", err)
	}

	if len(sess.items) != 1 {
		t.Fatalf("staged %d transact items for one id, want 1", len(sess.items))
	}
	put := sess.items[0].Put
	if put == nil {
		t.Fatal("staged item is not a put")
	}
	if attr, ok := put.Item["Title"].(*types.AttributeValueMemberS); !ok || attr.Value != "second" {
		t.Errorf("staged Title = %v, want the later write", put.Item["Title"])
	}
	// The first write's condition describes the committed state and must
	// survive the coalesce.
	if put.ConditionExpression == nil || *put.ConditionExpression != insertCond {
		t.Errorf("condition = %v, want %q", put.ConditionExpression, insertCond)
	}

	if doc, touched := sess.lookup("a-1"); !touched || doc == nil {
		t.Error("overlay lost the staged document")
	}
}

func TestSessionDeleteSupersedesStagedPut(t *testing.T) {
	sess := newSession(stagingStore())

	if err := sess.stagePut("a-1", stagedDoc("a-1", "doomed"), "attribute_not_exists(PK)", nil, nil); err != nil {
		t.Fatalf("stagePut failed: %v", err)
	}
	key := storagemodels.RawDocument{
		"PK": &types.AttributeValueMemberS{Value: "ACTIVITY#a-1"},
		"SK": &types.AttributeValueMemberS{Value: "ACTIVITY#a-1"},
	}
	sess.stageDelete("a-1", key)

	if len(sess.items) != 1 {
		t.Fatalf("staged %d transact items for one id, want 1", len(sess.items))
	}
	if sess.items[0].Delete == nil {
		t.Fatal("staged item is not a delete")
	}
	if doc, touched := sess.lookup("a-1"); !touched || doc != nil {
		t.Error("overlay should report the id as deleted")
	}
}

func TestSessionPutAfterStagedDelete(t *testing.T) {
	sess := newSession(stagingStore())

	key := storagemodels.RawDocument{
		"PK": &types.AttributeValueMemberS{Value: "ACTIVITY#a-1"},
		"SK": &types.AttributeValueMemberS{Value: "ACTIVITY#a-1"},
	}
	sess.stageDelete("a-1", key)
	if err := sess.stagePut("a-1", stagedDoc("a-1", "reborn"), "attribute_not_exists(PK)", nil, nil); err != nil {
		t.Fatalf("stagePut failed: %v", err)
	}

	if len(sess.items) != 1 {
		t.Fatalf("staged %d transact items for one id, want 1", len(sess.items))
	}
	put := sess.items[0].Put
	if put == nil {
		t.Fatal("staged item is not a put")
	}
	// The delete was staged against an existing committed item; the
	// replacing put keeps that dependency.
	if put.ConditionExpression == nil || *put.ConditionExpression != "attribute_exists(PK)" {
		t.Errorf("condition = %v, want attribute_exists(PK)", put.ConditionExpression)
	}

	sess.mu.Lock()
	_, deleted := sess.deleted["a-1"]
	sess.mu.Unlock()
	if deleted {
		t.Error("id still flagged deleted after the superseding put")
	}
}

func TestSessionDistinctItemsStaySeparate(t *testing.T) {
	sess := newSession(stagingStore())

	for _, id := range []string{"a-1", "a-2", "a-3"} {
		if err := sess.stagePut(id, stagedDoc(id, "t"), "attribute_not_exists(PK)", nil, nil); err != nil {
			t.Fatalf("stagePut failed: %v", err)
		}
	}
	if len(sess.items) != 3 {
		t.Errorf("staged %d transact items, want 3", len(sess.items))
	}
}
