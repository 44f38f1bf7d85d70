/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the declarative counterpart of a TypeMap: per-type model-name
// overrides and schema descriptors, loaded from YAML. Constructors always
// come from code; a Config only shapes names and schemas.
//
// Example:
//
//	types:
//	  Default:
//	    model: Activity
//	    indexMap:
//	      PK: "ACTIVITY#{Id}"
//	      SK: "ACTIVITY#{Id}"
//	    required: [Title]
//	  Call:
//	    required: [PhoneNumber]
//	    unique: [PhoneNumber]
type Config struct {
	Types map[string]TypeConfig `yaml:"types"`
}

// TypeConfig declares one entry of a Config.
type TypeConfig struct {
	Model    string            `yaml:"model,omitempty"`
	IndexMap map[string]string `yaml:"indexMap,omitempty"`
	Required []string          `yaml:"required,omitempty"`
	Unique   []string          `yaml:"unique,omitempty"`
}

// LoadConfig parses a YAML type-map configuration.
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read type map config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse type map config: %w", err)
	}
	return &cfg, nil
}

// LoadConfigFile reads and parses a YAML type-map configuration file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open type map config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks the structural invariants a TypeMap will enforce at
// construction time: a Default entry must exist and index map patterns
// must be non-empty.
func (c *Config) Validate() error {
	if len(c.Types) == 0 {
		return fmt.Errorf("type map config: no types declared")
	}
	if _, ok := c.Types[DefaultKey]; !ok {
		return fmt.Errorf("type map config: missing mandatory %q entry", DefaultKey)
	}
	for name, tc := range c.Types {
		for attr, pattern := range tc.IndexMap {
			if pattern == "" {
				return fmt.Errorf("type map config: type %q has an empty pattern for key attribute %q", name, attr)
			}
		}
	}
	return nil
}
