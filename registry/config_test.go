/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"
	"testing"
)

const sampleConfig = `
types:
  Default:
    model: Activity
    indexMap:
      PK: "ACTIVITY#{Id}"
      SK: "ACTIVITY#{Id}"
      GSI1PK: "ACTIVITY"
      GSI1SK: "{Id}"
    required: [Title]
  Call:
    required: [PhoneNumber]
    unique: [PhoneNumber]
  Meeting: {}
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Types) != 3 {
		t.Fatalf("got %d types, want 3", len(cfg.Types))
	}

	def := cfg.Types[DefaultKey]
	if def.Model != "Activity" {
		t.Errorf("Default model = %q", def.Model)
	}
	if def.IndexMap["PK"] != "ACTIVITY#{Id}" {
		t.Errorf("Default PK pattern = %q", def.IndexMap["PK"])
	}
	if len(def.Required) != 1 || def.Required[0] != "Title" {
		t.Errorf("Default required = %v", def.Required)
	}

	call := cfg.Types["Call"]
	if len(call.Unique) != 1 || call.Unique[0] != "PhoneNumber" {
		t.Errorf("Call unique = %v", call.Unique)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	if _, err := LoadConfig(strings.NewReader("types: [not, a, map]")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed on a well-formed config: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"no default", Config{Types: map[string]TypeConfig{
			"Call": {},
		}}},
		{"empty pattern", Config{Types: map[string]TypeConfig{
			DefaultKey: {IndexMap: map[string]string{"PK": ""}},
		}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
