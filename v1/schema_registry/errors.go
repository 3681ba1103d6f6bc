package schema_registry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidWireFormat is returned when a payload does not start with
	// the 5-byte Confluent header.
	ErrInvalidWireFormat = errors.New("schema_registry: invalid wire format")

	// ErrSchemaIDOutOfRange is returned when a schema id does not fit the
	// 4-byte id field of the wire header.
	ErrSchemaIDOutOfRange = errors.New("schema_registry: schema id out of range")

	// ErrUnsupportedSchemaType is returned for registry schemas that are not Avro.
	ErrUnsupportedSchemaType = errors.New("schema_registry: unsupported schema type")
)

// Registry error codes returned in the "error_code" field.
const (
	ErrorCodeSubjectNotFound = 40401
	ErrorCodeVersionNotFound = 40402
	ErrorCodeSchemaNotFound  = 40403
)

// RegistryError is a non-2xx response from the schema registry.
type RegistryError struct {
	StatusCode int
	ErrorCode  int
	Message    string
}

func (e *RegistryError) Error() string {
	if e.ErrorCode != 0 {
		return fmt.Sprintf("schema registry returned status %d (error code %d): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("schema registry returned status %d: %s", e.StatusCode, e.Message)
}

// newRegistryError builds a RegistryError from a response body of the form
// {"error_code": 40401, "message": "Subject not found."}. Bodies that are not
// JSON are kept verbatim as the message.
func newRegistryError(statusCode int, body []byte) *RegistryError {
	regErr := &RegistryError{StatusCode: statusCode, Message: string(body)}
	if gjson.ValidBytes(body) {
		if code := gjson.GetBytes(body, "error_code"); code.Exists() {
			regErr.ErrorCode = int(code.Int())
		}
		if msg := gjson.GetBytes(body, "message"); msg.Exists() {
			regErr.Message = msg.String()
		}
	}
	return regErr
}

// IsNotFoundError checks if the registry reported a missing subject,
// version or schema.
func IsNotFoundError(err error) bool {
	var regErr *RegistryError
	return errors.As(err, &regErr) && regErr.StatusCode == http.StatusNotFound
}
