package schemacache

import "github.com/samber/lo"

// TypeScope is what a TypeHook sees when asked to resolve a type name.
type TypeScope struct {
	// Namespace is the namespace enclosing the reference, empty at the root
	// of a definition without a configured default namespace.
	Namespace string

	// LogicalTypes is the combined table for the current compilation:
	// global entries overlaid with the per-call extras.
	LogicalTypes LogicalTypes
}

// TypeHook resolves a type-name reference found in a raw definition.
//
// ResolveType returns the replacement definition and true when it handles
// the name. Returning false leaves the name to the standard Avro resolution
// (primitives and named types defined earlier in the document). A returned
// error aborts the compilation and reaches the SetSchema caller unchanged.
type TypeHook interface {
	ResolveType(name string, scope TypeScope) (RawSchema, bool, error)
}

// TypeHookFunc adapts an ordinary function to the TypeHook interface.
type TypeHookFunc func(name string, scope TypeScope) (RawSchema, bool, error)

// ResolveType calls f(name, scope).
func (f TypeHookFunc) ResolveType(name string, scope TypeScope) (RawSchema, bool, error) {
	return f(name, scope)
}

// DefaultTypeHook looks the name up in the combined logical-types table,
// first as given and then qualified with the enclosing namespace.
type DefaultTypeHook struct{}

// ResolveType implements TypeHook.
func (DefaultTypeHook) ResolveType(name string, scope TypeScope) (RawSchema, bool, error) {
	if def, ok := scope.LogicalTypes[name]; ok {
		return def, true, nil
	}
	// "ns.Name" entries match an unqualified reference inside namespace ns.
	if def, ok := scope.LogicalTypes[scope.Namespace+"."+name]; ok {
		return def, true, nil
	}
	return "", false, nil
}

// resolveTypeHook picks the hook for a cache: the configured one if present,
// otherwise DefaultTypeHook.
func resolveTypeHook(cfg Config) TypeHook {
	if cfg.TypeHook != nil {
		return cfg.TypeHook
	}
	return DefaultTypeHook{}
}

// mergeLogicalTypes overlays extra on global. Keys present in both take the
// value from extra; keys only in global are kept. Neither input is modified.
func mergeLogicalTypes(global, extra LogicalTypes) LogicalTypes {
	return lo.Assign(global, extra)
}
