package schema_registry

import (
	"context"

	"github.com/Aleph-Alpha/schemacache/v1/schemacache"
)

// Registry resolves schema identities against a Confluent Schema Registry,
// consulting the schema cache before every network round-trip.
type Registry interface {
	// GetSchemaByID returns the compiled schema for a registry id.
	GetSchemaByID(ctx context.Context, id int) (*schemacache.CompiledSchema, error)

	// GetRegistryIDBySchemaRef returns the registry id of a pinned subject version.
	GetRegistryIDBySchemaRef(ctx context.Context, ref schemacache.SchemaRef) (int, error)

	// GetLatestRegistryID returns the id last known to be the latest for subject.
	GetLatestRegistryID(ctx context.Context, subject string) (int, error)

	// GetLatestSchema always asks the registry for the latest version of subject.
	GetLatestSchema(ctx context.Context, subject string) (*Metadata, error)

	// RegisterSchema registers a new schema for a subject
	RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error)

	// CheckCompatibility checks if a schema is compatible with the latest version
	CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error)

	// Encode serializes v with the schema of id in Confluent wire format.
	Encode(ctx context.Context, id int, v any) ([]byte, error)

	// Decode deserializes a Confluent wire format payload into v.
	Decode(ctx context.Context, data []byte, v any) error

	// ClearCache forgets latest ids and compiled schemas.
	ClearCache()
}

// Metadata contains metadata about a registered schema
type Metadata struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Type    string `json:"schemaType,omitempty"`
}

// Logger defines the logging operations the client uses.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
