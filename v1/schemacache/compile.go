package schemacache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hamba/avro/v2"
)

// compiler turns one raw definition into an avro.Schema, routing every
// type-name reference through the hook first.
type compiler struct {
	hook         TypeHook
	namespace    string
	logicalTypes LogicalTypes
}

// hookError marks an error returned by the TypeHook so that SetSchema can
// hand it back without wrapping.
type hookError struct {
	err error
}

func (e *hookError) Error() string { return e.err.Error() }

func (c *compiler) compile(raw RawSchema) (avro.Schema, error) {
	doc, err := decodeDefinition(raw)
	if err != nil {
		return nil, err
	}

	doc, err = c.resolve(doc, c.namespace)
	if err != nil {
		return nil, err
	}

	rewritten, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resolved definition: %w", err)
	}

	// A fresh cache keeps named types from one compilation out of the next.
	return avro.ParseWithCache(string(rewritten), c.namespace, &avro.SchemaCache{})
}

// resolve walks a decoded definition. Type names are offered to the hook;
// a replacement is spliced in as-is and not walked again.
func (c *compiler) resolve(node any, namespace string) (any, error) {
	switch n := node.(type) {
	case string:
		def, ok, err := c.hook.ResolveType(n, TypeScope{Namespace: namespace, LogicalTypes: c.logicalTypes})
		if err != nil {
			return nil, &hookError{err: err}
		}
		if !ok {
			return n, nil
		}
		return decodeDefinition(def)

	case []any:
		for i, branch := range n {
			resolved, err := c.resolve(branch, namespace)
			if err != nil {
				return nil, err
			}
			n[i] = resolved
		}
		return n, nil

	case map[string]any:
		return c.resolveObject(n, namespace)
	}

	return node, nil
}

func (c *compiler) resolveObject(obj map[string]any, namespace string) (any, error) {
	typ, ok := obj["type"]
	if !ok {
		return obj, nil
	}

	name, isName := typ.(string)
	if !isName {
		resolved, err := c.resolve(typ, namespace)
		if err != nil {
			return nil, err
		}
		obj["type"] = resolved
		return obj, nil
	}

	switch name {
	case "record", "error":
		ns := enclosingNamespace(obj, namespace)
		fields, _ := obj["fields"].([]any)
		for _, f := range fields {
			field, ok := f.(map[string]any)
			if !ok {
				continue
			}
			if ft, ok := field["type"]; ok {
				resolved, err := c.resolve(ft, ns)
				if err != nil {
					return nil, err
				}
				field["type"] = resolved
			}
		}
	case "enum", "fixed":
	case "array":
		return c.resolveChild(obj, "items", namespace)
	case "map":
		return c.resolveChild(obj, "values", namespace)
	default:
		// {"type": "Name", ...} wraps a reference, possibly with a logicalType.
		resolved, err := c.resolve(name, namespace)
		if err != nil {
			return nil, err
		}
		obj["type"] = resolved
	}
	return obj, nil
}

func (c *compiler) resolveChild(obj map[string]any, key, namespace string) (any, error) {
	child, ok := obj[key]
	if !ok {
		return obj, nil
	}
	resolved, err := c.resolve(child, namespace)
	if err != nil {
		return nil, err
	}
	obj[key] = resolved
	return obj, nil
}

// enclosingNamespace applies the Avro naming rules: a dotted name carries
// its own namespace, then an explicit "namespace" attribute, then the parent's.
func enclosingNamespace(obj map[string]any, parent string) string {
	if name, ok := obj["name"].(string); ok {
		if i := strings.LastIndex(name, "."); i >= 0 {
			return name[:i]
		}
	}
	if ns, ok := obj["namespace"].(string); ok {
		return ns
	}
	return parent
}

func decodeDefinition(raw RawSchema) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed schema definition: %w", err)
	}
	// Only whitespace may follow the top-level value.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("malformed schema definition: trailing data after top-level value")
	}
	return doc, nil
}
