/*
Package registry maps a closed family of entity constructors to document
schemas.

A TypeMap holds exactly one supertype entry (registered under the
mandatory "Default" key) and zero or more named subtype entries. It is
built once at repository construction and immutable thereafter:

	types, err := registry.New(map[string]registry.Entry[Activity]{
	    registry.DefaultKey: {New: func() Activity { return &BaseActivity{} }},
	    "Call": {
	        New:    func() Activity { return &CallActivity{} },
	        Schema: registry.Descriptor{Required: []string{"PhoneNumber"}},
	    },
	})

The supertype name resolves from the entry name, a YAML config model
override, a WithModelName option, or the constructed value's EntityKind
tag — in that order. Construction fails when none resolves.

Schema descriptors can also be declared in YAML and overlaid with
WithConfig, keeping key patterns and validation rules next to the rest
of a deployment's configuration:

	cfg, err := registry.LoadConfigFile("typemap.yaml")
	types, err := registry.New(entries, registry.WithConfig(cfg))

The registry is consulted at hydration time to turn a stored
discriminator back into the exact variant that produced the document.
*/
package registry
