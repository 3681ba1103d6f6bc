package schemacache

// Cache is the contract consumed by the registry resolver and by payload
// encoders. It is implemented by *SchemaCache.
type Cache interface {
	// GetBySchemaRef returns the registry id stored for a subject version.
	GetBySchemaRef(ref SchemaRef) (int, bool)

	// SetBySchemaRef stores id for the subject version and returns it.
	SetBySchemaRef(ref SchemaRef, id int) int

	// GetLatestID returns the id last recorded as latest for subject.
	GetLatestID(subject string) (int, bool)

	// SetLatestID records id as the latest for subject and returns it.
	SetLatestID(subject string, id int) int

	// GetSchema returns the compiled schema stored under id.
	GetSchema(id int) (*CompiledSchema, bool)

	// SetSchema compiles raw and stores the result under id.
	SetSchema(id int, raw RawSchema, extra LogicalTypes) (*CompiledSchema, error)

	// Clear forgets latest ids and compiled schemas. Ref→id entries are kept.
	Clear()
}

// Logger defines the logging operations the cache uses.
// It is satisfied by *logger.LoggerClient.
//
//go:generate mockgen -source=interface.go -destination=mock_logger.go -package=schemacache -exclude_interfaces=Cache
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
