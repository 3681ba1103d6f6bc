package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Aleph-Alpha/schemacache/v1/schemacache"
)

const contentType = "application/vnd.schemaregistry.v1+json"

// GetSchemaByID returns the compiled schema stored under id, fetching
// and compiling it on a cache miss.
func (c *Client) GetSchemaByID(ctx context.Context, id int) (*schemacache.CompiledSchema, error) {
	if schema, ok := c.cache.GetSchema(id); ok {
		return schema, nil
	}

	v, err := c.shared(ctx, "id:"+strconv.Itoa(id), func(ctx context.Context) (interface{}, error) {
		var result struct {
			Schema     string `json:"schema"`
			SchemaType string `json:"schemaType"`
		}
		path := fmt.Sprintf("/schemas/ids/%d", id)
		if err := c.doJSON(ctx, "fetch_schema_by_id", strconv.Itoa(id), http.MethodGet, path, nil, &result); err != nil {
			return nil, err
		}
		return c.compile(id, result.SchemaType, result.Schema)
	})
	if err != nil {
		return nil, err
	}
	return v.(*schemacache.CompiledSchema), nil
}

// GetRegistryIDBySchemaRef returns the registry id of a pinned subject
// version. On a miss the version is fetched and the id recorded. Avro
// schemas are also compiled into the cache unless their id is already
// present; other schema types are recorded without compiling.
func (c *Client) GetRegistryIDBySchemaRef(ctx context.Context, ref schemacache.SchemaRef) (int, error) {
	if id, ok := c.cache.GetBySchemaRef(ref); ok {
		return id, nil
	}

	v, err := c.shared(ctx, "ref:"+ref.String(), func(ctx context.Context) (interface{}, error) {
		var md Metadata
		path := fmt.Sprintf("/subjects/%s/versions/%d", url.PathEscape(ref.Subject), ref.Version)
		if err := c.doJSON(ctx, "fetch_schema_by_ref", ref.String(), http.MethodGet, path, nil, &md); err != nil {
			return 0, err
		}
		id := c.cache.SetBySchemaRef(ref, md.ID)
		if err := c.compileIfMissing(md); err != nil {
			return 0, err
		}
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// GetLatestRegistryID returns the id last recorded as the latest for
// subject, asking the registry only when nothing is recorded. The answer can
// be stale; ClearCache forces the next call to ask again.
func (c *Client) GetLatestRegistryID(ctx context.Context, subject string) (int, error) {
	if id, ok := c.cache.GetLatestID(subject); ok {
		return id, nil
	}

	v, err := c.shared(ctx, "latest:"+subject, func(ctx context.Context) (interface{}, error) {
		md, err := c.GetLatestSchema(ctx, subject)
		if err != nil {
			return 0, err
		}
		return md.ID, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// GetLatestSchema fetches the latest version of subject from the registry,
// bypassing the cache, and records what it learns: the latest id, the
// subject version id and the compiled schema.
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	var md Metadata
	path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := c.doJSON(ctx, "fetch_latest_schema", subject, http.MethodGet, path, nil, &md); err != nil {
		return nil, err
	}
	md.Subject = subject

	if err := c.compileIfMissing(md); err != nil {
		return nil, err
	}
	c.cache.SetBySchemaRef(schemacache.SchemaRef{Subject: subject, Version: md.Version}, md.ID)
	c.cache.SetLatestID(subject, md.ID)

	return &md, nil
}

// RegisterSchema registers a new schema with the schema registry and
// compiles it into the cache under the returned id.
func (c *Client) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
	payload := map[string]interface{}{
		"schema": schema,
	}
	if !isAvro(schemaType) {
		payload["schemaType"] = schemaType
	}

	var result struct {
		ID int `json:"id"`
	}
	path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(subject))
	if err := c.doJSON(ctx, "register_schema", subject, http.MethodPost, path, payload, &result); err != nil {
		return 0, err
	}

	if _, err := c.compile(result.ID, schemaType, schema); err != nil {
		return result.ID, err
	}
	return result.ID, nil
}

// CheckCompatibility checks if a schema is compatible with the existing schema for a subject
func (c *Client) CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error) {
	payload := map[string]interface{}{
		"schema": schema,
	}
	if !isAvro(schemaType) {
		payload["schemaType"] = schemaType
	}

	var result struct {
		IsCompatible bool `json:"is_compatible"`
	}
	path := fmt.Sprintf("/compatibility/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := c.doJSON(ctx, "check_compatibility", subject, http.MethodPost, path, payload, &result); err != nil {
		return false, err
	}
	return result.IsCompatible, nil
}

func (c *Client) compile(id int, schemaType, schema string) (*schemacache.CompiledSchema, error) {
	if !isAvro(schemaType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchemaType, schemaType)
	}
	compiled, err := c.cache.SetSchema(id, schema, nil)
	if err != nil {
		c.logError("Failed to compile registry schema", err, map[string]interface{}{"registry_id": id})
		return nil, err
	}
	return compiled, nil
}

// compileIfMissing compiles md into the cache when it is an Avro schema
// whose id is not cached yet.
func (c *Client) compileIfMissing(md Metadata) error {
	if !isAvro(md.Type) {
		return nil
	}
	if _, ok := c.cache.GetSchema(md.ID); ok {
		return nil
	}
	_, err := c.compile(md.ID, md.Type, md.Schema)
	return err
}

// shared runs fetch once for all concurrent callers of key. The fetch is
// detached from the cancellation of whichever caller started it; each caller
// stops waiting when its own ctx is done.
func (c *Client) shared(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return fetch(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func isAvro(schemaType string) bool {
	return schemaType == "" || schemaType == "AVRO"
}

// doJSON performs one registry call. body, when non-nil, is sent as JSON;
// a 200 response is decoded into out.
func (c *Client) doJSON(ctx context.Context, operation, resource, method, path string, body, out interface{}) (err error) {
	start := time.Now()

	ctx, finish := c.startSpan(ctx, operation, method, path, resource)
	defer func() {
		finish(err)
		c.observeOperation(operation, resource, path, time.Since(start), err)
	}()

	var rawBody interface{}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rawBody = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url+path, rawBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", contentType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tracer != nil {
		for k, v := range c.tracer.GetCarrier(ctx) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("failed to %s: %w", operationVerb(operation), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return newRegistryError(resp.StatusCode, respBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Schema registry request completed", nil, map[string]interface{}{
			"operation": operation,
			"resource":  resource,
			"path":      path,
		})
	}
	return nil
}

func operationVerb(operation string) string {
	switch operation {
	case "register_schema":
		return "register schema"
	case "check_compatibility":
		return "check compatibility"
	default:
		return "fetch schema"
	}
}

func (c *Client) logError(msg string, err error, fields map[string]interface{}) {
	if c.logger == nil {
		return
	}
	c.logger.Error(msg, err, fields)
}
