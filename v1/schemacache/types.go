package schemacache

import (
	"strconv"

	"github.com/hamba/avro/v2"
)

// refKeyDelimiter separates subject and version in the ref→id map key.
// Subjects containing the delimiter are not rejected.
const refKeyDelimiter = ":"

// SchemaRef identifies one version of a subject in the registry.
type SchemaRef struct {
	Subject string
	Version int
}

// key derives the map key used by the ref→id mapping.
func (r SchemaRef) key() string {
	return r.Subject + refKeyDelimiter + strconv.Itoa(r.Version)
}

// String returns the "subject:version" form of the reference.
func (r SchemaRef) String() string {
	return r.key()
}

// RawSchema is an uncompiled Avro schema definition in its JSON form.
// It can be a full document (`{"type":"record",...}`), a union (`["null","string"]`)
// or a quoted type name (`"long"`).
type RawSchema = string

// LogicalTypes maps a type name, optionally namespace-qualified ("ns.Name"),
// to the definition that replaces references to that name during compilation.
type LogicalTypes map[string]RawSchema

// CompiledSchema is the directly usable form of a schema definition
// stored under a registry id.
type CompiledSchema struct {
	id     int
	schema avro.Schema
}

// ID returns the registry id the schema was compiled for.
func (s *CompiledSchema) ID() int {
	return s.id
}

// Schema returns the underlying compiled Avro schema.
func (s *CompiledSchema) Schema() avro.Schema {
	return s.schema
}

// Fingerprint returns the SHA-256 fingerprint of the schema's canonical form.
func (s *CompiledSchema) Fingerprint() [32]byte {
	return s.schema.Fingerprint()
}

// Marshal encodes v into Avro binary using the compiled schema.
func (s *CompiledSchema) Marshal(v any) ([]byte, error) {
	return avro.Marshal(s.schema, v)
}

// Unmarshal decodes Avro binary data into v using the compiled schema.
func (s *CompiledSchema) Unmarshal(data []byte, v any) error {
	return avro.Unmarshal(s.schema, data, v)
}
