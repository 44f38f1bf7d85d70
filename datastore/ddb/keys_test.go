/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docrepo/storagemodels"
)

func TestDefaultIndexMap(t *testing.T) {
	im := DefaultIndexMap("Activity")

	if got := im["PK"]; got != "ACTIVITY#{Id}" {
		t.Errorf("PK pattern = %q, want %q", got, "ACTIVITY#{Id}")
	}
	if got := im["GSI1PK"]; got != "ACTIVITY" {
		t.Errorf("GSI1PK pattern = %q, want %q", got, "ACTIVITY")
	}
	if got := im["GSI1SK"]; got != "{Id}" {
		t.Errorf("GSI1SK pattern = %q, want %q", got, "{Id}")
	}
}

func TestExpandMacros(t *testing.T) {
	doc := storagemodels.RawDocument{
		"Id":     &types.AttributeValueMemberS{Value: "a-1"},
		"Region": &types.AttributeValueMemberS{Value: "west"},
	}
	im := map[string]string{
		"PK":     "ACTIVITY#{Id}",
		"SK":     "REGION#{Region}#ACTIVITY#{Id}",
		"GSI1PK": "ACTIVITY",
	}

	expanded, err := expandMacros(im, doc)
	if err != nil {
		t.Fatalf("expandMacros failed: %v", err)
	}
	if expanded["PK"] != "ACTIVITY#a-1" {
		t.Errorf("PK = %q", expanded["PK"])
	}
	if expanded["SK"] != "REGION#west#ACTIVITY#a-1" {
		t.Errorf("SK = %q", expanded["SK"])
	}
	if expanded["GSI1PK"] != "ACTIVITY" {
		t.Errorf("GSI1PK = %q", expanded["GSI1PK"])
	}
}

func TestExpandMacrosMissingAttribute(t *testing.T) {
	doc := storagemodels.RawDocument{
		"Id": &types.AttributeValueMemberS{Value: "a-1"},
	}
	_, err := expandMacros(map[string]string{"PK": "ACTIVITY#{Missing}"}, doc)
	if err == nil {
		t.Fatal("expected an error for a macro with no matching attribute")
	}
}

func TestExpandMacrosNumericAttribute(t *testing.T) {
	doc := storagemodels.RawDocument{
		"Seq": &types.AttributeValueMemberN{Value: "42"},
	}
	expanded, err := expandMacros(map[string]string{"SK": "SEQ#{Seq}"}, doc)
	if err != nil {
		t.Fatalf("expandMacros failed: %v", err)
	}
	if expanded["SK"] != "SEQ#42" {
		t.Errorf("SK = %q, want %q", expanded["SK"], "SEQ#42")
	}
}

func TestExpandStringKey(t *testing.T) {
	im := DefaultIndexMap("Activity")

	expanded, err := expandStringKey(im, "a-7")
	if err != nil {
		t.Fatalf("expandStringKey failed: %v", err)
	}
	if expanded["PK"] != "ACTIVITY#a-7" {
		t.Errorf("PK = %q", expanded["PK"])
	}
	if expanded["SK"] != "ACTIVITY#a-7" {
		t.Errorf("SK = %q", expanded["SK"])
	}
	if expanded["GSI1PK"] != "ACTIVITY" {
		t.Errorf("static GSI1PK = %q", expanded["GSI1PK"])
	}
	if expanded["GSI1SK"] != "a-7" {
		t.Errorf("GSI1SK = %q", expanded["GSI1SK"])
	}
}

func TestExpandStringKeyMultiMacro(t *testing.T) {
	im := map[string]string{"PK": "A#{One}#B#{Two}"}
	if _, err := expandStringKey(im, "x"); err == nil {
		t.Fatal("expected an error for a pattern with two macros")
	}
}

func TestBuildKeyFromExpanded(t *testing.T) {
	key, err := buildKeyFromExpanded(map[string]string{
		"PK":     "ACTIVITY#a-1",
		"SK":     "ACTIVITY#a-1",
		"GSI1PK": "ACTIVITY",
	})
	if err != nil {
		t.Fatalf("buildKeyFromExpanded failed: %v", err)
	}
	if len(key) != 2 {
		t.Fatalf("key has %d attributes, want PK and SK only", len(key))
	}
	pk, ok := key["PK"].(*types.AttributeValueMemberS)
	if !ok || pk.Value != "ACTIVITY#a-1" {
		t.Errorf("PK attribute = %v", key["PK"])
	}
}

func TestBuildKeyFromExpandedMissingPK(t *testing.T) {
	if _, err := buildKeyFromExpanded(map[string]string{"SK": "only"}); err == nil {
		t.Fatal("expected an error when PK is absent")
	}
}

func TestVersionOf(t *testing.T) {
	doc := storagemodels.RawDocument{
		"Version": &types.AttributeValueMemberN{Value: "7"},
	}
	if got := versionOf(doc); got != 7 {
		t.Errorf("versionOf = %d, want 7", got)
	}
	if got := versionOf(storagemodels.RawDocument{}); got != 0 {
		t.Errorf("versionOf(empty) = %d, want 0", got)
	}
}
