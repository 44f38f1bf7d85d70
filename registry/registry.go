/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"

	"github.com/suparena/docrepo/storagemodels"
)

// DefaultKey is the mandatory map key marking the supertype entry.
const DefaultKey = "Default"

// Constructor produces a fresh, zero-valued instance of one entity variant.
type Constructor[T storagemodels.Entity] func() T

// Descriptor is the stored-document schema for one entity variant.
type Descriptor struct {
	// IndexMap holds the key attribute patterns for the variant, using
	// {Field} macros (e.g. "ACTIVITY#{Id}"). Empty means the store's
	// default layout for its collection.
	IndexMap map[string]string
	// Required lists attributes that must be present and non-null before
	// a document is written.
	Required []string
	// Unique lists attributes whose values may appear at most once per
	// collection.
	Unique []string
}

// Entry pairs a variant constructor with its document schema. Name is
// optional; when empty it falls back to the registry map key (subtypes)
// or the constructed value's EntityKind tag (supertype).
type Entry[T storagemodels.Entity] struct {
	Name   string
	New    Constructor[T]
	Schema Descriptor
}

// Catalog is the non-generic schema view a document store consumes.
type Catalog struct {
	Supertype string
	Schemas   map[string]Descriptor
}

// TypeMap is an immutable mapping from logical type names to constructor
// and schema pairs: exactly one supertype entry plus zero or more named
// subtype entries. It is built once per repository instance.
type TypeMap[T storagemodels.Entity] struct {
	supertype Entry[T]
	subtypes  map[string]Entry[T]
	order     []string
}

type settings struct {
	modelName string
	config    *Config
}

// Option adjusts TypeMap construction.
type Option func(*settings)

// WithModelName overrides the supertype's resolved name.
func WithModelName(name string) Option {
	return func(s *settings) { s.modelName = name }
}

// WithConfig overlays a declarative configuration (model-name overrides
// and schema descriptors) onto the code-registered constructors.
func WithConfig(cfg *Config) Option {
	return func(s *settings) { s.config = cfg }
}

// New builds a TypeMap from a map of entries keyed by logical type name.
// The DefaultKey entry is mandatory and becomes the supertype; every other
// entry is a subtype. Construction fails if the supertype entry is missing,
// if any entry lacks a constructor, if the supertype name cannot be
// resolved, or if two entries resolve to the same name.
func New[T storagemodels.Entity](entries map[string]Entry[T], opts ...Option) (*TypeMap[T], error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	super, ok := entries[DefaultKey]
	if !ok {
		return nil, fmt.Errorf("type map: missing mandatory %q entry", DefaultKey)
	}
	if super.New == nil {
		return nil, fmt.Errorf("type map: %q entry has no constructor", DefaultKey)
	}

	if s.config != nil {
		applyConfig(&super, s.config, DefaultKey)
	}
	if super.Name == "" {
		super.Name = s.modelName
	}
	if super.Name == "" {
		super.Name = super.New().EntityKind()
	}
	if super.Name == "" {
		return nil, fmt.Errorf("type map: supertype name is unresolvable; set Entry.Name, a config model, or a WithModelName override")
	}

	tm := &TypeMap[T]{
		supertype: super,
		subtypes:  make(map[string]Entry[T], len(entries)-1),
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		if k != DefaultKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := entries[key]
		if e.New == nil {
			return nil, fmt.Errorf("type map: subtype %q has no constructor", key)
		}
		if s.config != nil {
			applyConfig(&e, s.config, key)
		}
		if e.Name == "" {
			e.Name = key
		}
		if e.Name == tm.supertype.Name {
			return nil, fmt.Errorf("type map: subtype %q collides with supertype name", e.Name)
		}
		if _, dup := tm.subtypes[e.Name]; dup {
			return nil, fmt.Errorf("type map: duplicate subtype name %q", e.Name)
		}
		tm.subtypes[e.Name] = e
		tm.order = append(tm.order, e.Name)
	}

	return tm, nil
}

func applyConfig[T storagemodels.Entity](e *Entry[T], cfg *Config, key string) {
	tc, ok := cfg.Types[key]
	if !ok {
		return
	}
	if e.Name == "" {
		e.Name = tc.Model
	}
	if len(e.Schema.IndexMap) == 0 {
		e.Schema.IndexMap = tc.IndexMap
	}
	if len(e.Schema.Required) == 0 {
		e.Schema.Required = tc.Required
	}
	if len(e.Schema.Unique) == 0 {
		e.Schema.Unique = tc.Unique
	}
}

// Resolve returns the entry registered under the given logical type name.
// The supertype resolves under its own name as well.
func (tm *TypeMap[T]) Resolve(name string) (Entry[T], bool) {
	if name == tm.supertype.Name {
		return tm.supertype, true
	}
	e, ok := tm.subtypes[name]
	return e, ok
}

// Contains reports whether name is the supertype's name or a registered
// subtype name. This underlies the pre-insert check that an entity's
// runtime kind is actually configured on the repository.
func (tm *TypeMap[T]) Contains(name string) bool {
	_, ok := tm.Resolve(name)
	return ok
}

// SupertypeName returns the resolved supertype name.
func (tm *TypeMap[T]) SupertypeName() string { return tm.supertype.Name }

// SupertypeConstructor returns the supertype constructor.
func (tm *TypeMap[T]) SupertypeConstructor() Constructor[T] { return tm.supertype.New }

// Subtypes returns the subtype entries in deterministic name order.
func (tm *TypeMap[T]) Subtypes() []Entry[T] {
	out := make([]Entry[T], 0, len(tm.order))
	for _, name := range tm.order {
		out = append(out, tm.subtypes[name])
	}
	return out
}

// Catalog returns the non-generic schema view consumed by document stores.
func (tm *TypeMap[T]) Catalog() Catalog {
	schemas := make(map[string]Descriptor, len(tm.subtypes)+1)
	schemas[tm.supertype.Name] = tm.supertype.Schema
	for name, e := range tm.subtypes {
		schemas[name] = e.Schema
	}
	return Catalog{Supertype: tm.supertype.Name, Schemas: schemas}
}
