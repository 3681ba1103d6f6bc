package schemacache

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Aleph-Alpha/schemacache/v1/observability"
)

// SchemaCache maps between subject versions, registry ids and compiled
// schemas for a single registry client. The three mappings are independent:
// nothing forces the latest id of a subject to agree with any of its
// version entries.
//
// SchemaCache implements the Cache interface and is safe for concurrent use.
// It does not make check-then-set sequences atomic; two callers racing on the
// same missing key both compile, and the last write wins.
type SchemaCache struct {
	cfg  Config
	hook TypeHook

	// idByLatestSubject holds subject → id last known to be the latest
	idByLatestSubject map[string]int
	latestMu          sync.RWMutex

	// idBySchemaRef holds "subject:version" → id and survives Clear
	idBySchemaRef map[string]int
	refMu         sync.RWMutex

	// schemaByID holds id → compiled schema
	schemaByID map[int]*CompiledSchema
	schemaMu   sync.RWMutex

	logger   Logger
	observer observability.Observer
}

// NewSchemaCache creates an empty cache. cfg is copied and frozen; every
// SetSchema call compiles with it.
//
// Example:
//
//	cache := schemacache.NewSchemaCache(schemacache.Config{
//	    LogicalTypes: schemacache.LogicalTypes{
//	        "Money": `{"type":"bytes","logicalType":"decimal","precision":12,"scale":2}`,
//	    },
//	})
//	cache.SetBySchemaRef(schemacache.SchemaRef{Subject: "orders", Version: 1}, 101)
func NewSchemaCache(cfg Config) *SchemaCache {
	cfg = cfg.clone()

	return &SchemaCache{
		cfg:               cfg,
		hook:              resolveTypeHook(cfg),
		idByLatestSubject: make(map[string]int),
		idBySchemaRef:     make(map[string]int),
		schemaByID:        make(map[int]*CompiledSchema),
	}
}

// WithLogger attaches a logger and returns the cache for chaining.
func (c *SchemaCache) WithLogger(logger Logger) *SchemaCache {
	c.logger = logger
	return c
}

// WithObserver attaches an observer and returns the cache for chaining.
func (c *SchemaCache) WithObserver(observer observability.Observer) *SchemaCache {
	c.observer = observer
	return c
}

// GetBySchemaRef returns the registry id stored for ref.
func (c *SchemaCache) GetBySchemaRef(ref SchemaRef) (int, bool) {
	start := time.Now()

	c.refMu.RLock()
	id, ok := c.idBySchemaRef[ref.key()]
	c.refMu.RUnlock()

	c.observeOperation("get_by_schema_ref", ref.key(), time.Since(start), nil, map[string]interface{}{"hit": ok})
	return id, ok
}

// SetBySchemaRef stores id for ref, replacing any previous value, and
// returns the stored id.
func (c *SchemaCache) SetBySchemaRef(ref SchemaRef, id int) int {
	start := time.Now()

	c.refMu.Lock()
	c.idBySchemaRef[ref.key()] = id
	stored := c.idBySchemaRef[ref.key()]
	c.refMu.Unlock()

	c.observeOperation("set_by_schema_ref", ref.key(), time.Since(start), nil, nil)
	return stored
}

// GetLatestID returns the id last recorded as the latest for subject.
// The value may be stale; it is only as fresh as the last SetLatestID.
func (c *SchemaCache) GetLatestID(subject string) (int, bool) {
	start := time.Now()

	c.latestMu.RLock()
	id, ok := c.idByLatestSubject[subject]
	c.latestMu.RUnlock()

	c.observeOperation("get_latest_id", subject, time.Since(start), nil, map[string]interface{}{"hit": ok})
	return id, ok
}

// SetLatestID records id as the latest for subject and returns it.
func (c *SchemaCache) SetLatestID(subject string, id int) int {
	start := time.Now()

	c.latestMu.Lock()
	c.idByLatestSubject[subject] = id
	stored := c.idByLatestSubject[subject]
	c.latestMu.Unlock()

	c.observeOperation("set_latest_id", subject, time.Since(start), nil, nil)
	return stored
}

// GetSchema returns the compiled schema stored under id.
func (c *SchemaCache) GetSchema(id int) (*CompiledSchema, bool) {
	start := time.Now()

	c.schemaMu.RLock()
	schema, ok := c.schemaByID[id]
	c.schemaMu.RUnlock()

	c.observeOperation("get_schema", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{"hit": ok})
	return schema, ok
}

// SetSchema compiles raw and stores the result under id, replacing any
// previously compiled value.
//
// Type names in raw are resolved through the configured TypeHook (or
// DefaultTypeHook) against the global logical types overlaid with extra;
// entries in extra win on collision and never remove other global entries.
//
// On failure nothing is stored. Malformed or unresolvable definitions yield
// a *CompilationError; an error returned by a custom TypeHook is returned
// unchanged.
func (c *SchemaCache) SetSchema(id int, raw RawSchema, extra LogicalTypes) (*CompiledSchema, error) {
	start := time.Now()

	comp := &compiler{
		hook:         c.hook,
		namespace:    c.cfg.Namespace,
		logicalTypes: mergeLogicalTypes(c.cfg.LogicalTypes, extra),
	}

	parsed, err := comp.compile(raw)
	if err != nil {
		var hookErr *hookError
		if errors.As(err, &hookErr) {
			err = hookErr.err
		} else {
			err = &CompilationError{ID: id, Err: err}
		}
		c.observeOperation("set_schema", strconv.Itoa(id), time.Since(start), err, nil)
		c.logError("Failed to compile schema", err, id)
		return nil, err
	}

	compiled := &CompiledSchema{id: id, schema: parsed}

	c.schemaMu.Lock()
	c.schemaByID[id] = compiled
	c.schemaMu.Unlock()

	c.observeOperation("set_schema", strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{
		"logical_types": len(comp.logicalTypes),
	})
	if c.logger != nil {
		c.logger.Debug("Compiled schema", nil, map[string]interface{}{
			"registry_id": id,
			"type":        string(parsed.Type()),
		})
	}
	return compiled, nil
}

// Clear forgets every latest-id association and every compiled schema.
//
// Ref→id associations are kept: a subject version always maps to the same
// registry id, so only "latest" lookups and compiled bodies need re-resolving.
func (c *SchemaCache) Clear() {
	start := time.Now()

	c.latestMu.Lock()
	c.idByLatestSubject = make(map[string]int)
	c.latestMu.Unlock()

	c.schemaMu.Lock()
	c.schemaByID = make(map[int]*CompiledSchema)
	c.schemaMu.Unlock()

	c.observeOperation("clear", "", time.Since(start), nil, nil)
	if c.logger != nil {
		c.logger.Info("Schema cache cleared", nil)
	}
}

func (c *SchemaCache) logError(msg string, err error, id int) {
	if c.logger == nil {
		return
	}
	c.logger.Error(msg, err, map[string]interface{}{"registry_id": id})
}
