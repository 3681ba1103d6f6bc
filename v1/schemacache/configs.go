package schemacache

// Config holds the compile options applied to every SetSchema call.
// It is copied at construction; later changes to the caller's value
// (including its LogicalTypes map) have no effect on the cache.
type Config struct {
	// Namespace is the default namespace for unqualified names at the
	// root of a definition. It is handed to the Avro parser verbatim.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "namespace" key
	//   - Environment variable SCHEMA_CACHE_NAMESPACE
	Namespace string `yaml:"namespace" envconfig:"SCHEMA_CACHE_NAMESPACE"`

	// TypeHook replaces the default type-name resolution when set.
	// A custom hook is used as-is; the default direct-key then
	// qualified-key lookup is bypassed entirely.
	TypeHook TypeHook `yaml:"-"`

	// LogicalTypes is the global table of type-name replacements.
	// Per-call extras passed to SetSchema are overlaid on top of it.
	LogicalTypes LogicalTypes `yaml:"logical_types"`
}

// clone returns a copy of the config that shares no mutable state with cfg.
func (cfg Config) clone() Config {
	out := cfg
	out.LogicalTypes = mergeLogicalTypes(cfg.LogicalTypes, nil)
	return out
}
