package schema_registry

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	magicByte        = 0x0
	wireHeaderLength = 5
)

// EncodeSchemaID encodes a schema ID in the Confluent wire format
// Format: [magic_byte][schema_id]
// - magic_byte: 0x0 (1 byte)
// - schema_id: 4 bytes (big-endian)
//
// IDs outside the uint32 range cannot be represented and yield
// ErrSchemaIDOutOfRange.
func EncodeSchemaID(schemaID int) ([]byte, error) {
	if schemaID < 0 || int64(schemaID) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrSchemaIDOutOfRange, schemaID)
	}
	buf := make([]byte, wireHeaderLength)
	buf[0] = magicByte
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID))
	return buf, nil
}

// DecodeSchemaID decodes a schema ID from the Confluent wire format
// Returns the schema ID and the remaining payload (after the 5-byte header)
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < wireHeaderLength {
		return 0, nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrInvalidWireFormat, wireHeaderLength, len(data))
	}

	if data[0] != magicByte {
		return 0, nil, fmt.Errorf("%w: expected magic byte 0x0, got 0x%x", ErrInvalidWireFormat, data[0])
	}

	schemaID := int(binary.BigEndian.Uint32(data[1:wireHeaderLength]))
	return schemaID, data[wireHeaderLength:], nil
}

// Encode serializes v with the schema registered under id and prefixes the
// Confluent header.
func (c *Client) Encode(ctx context.Context, id int, v any) ([]byte, error) {
	header, err := EncodeSchemaID(id)
	if err != nil {
		return nil, err
	}

	schema, err := c.GetSchemaByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := schema.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload with schema %d: %w", id, err)
	}
	return append(header, payload...), nil
}

// EncodeLatest serializes v with the latest known schema of subject.
func (c *Client) EncodeLatest(ctx context.Context, subject string, v any) ([]byte, error) {
	id, err := c.GetLatestRegistryID(ctx, subject)
	if err != nil {
		return nil, err
	}
	return c.Encode(ctx, id, v)
}

// Decode reads the schema id from the Confluent header and deserializes the
// rest of data into v.
func (c *Client) Decode(ctx context.Context, data []byte, v any) error {
	id, payload, err := DecodeSchemaID(data)
	if err != nil {
		return err
	}

	schema, err := c.GetSchemaByID(ctx, id)
	if err != nil {
		return err
	}

	if err := schema.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to decode payload with schema %d: %w", id, err)
	}
	return nil
}
