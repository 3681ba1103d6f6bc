package schemacache

import (
	"errors"
	"fmt"
)

// ErrCompilation is matched by every error SetSchema returns when the raw
// definition could not be compiled. Errors from a custom TypeHook are not
// wrapped and therefore do not match it.
var ErrCompilation = errors.New("schemacache: compilation failed")

// CompilationError reports a definition that is malformed or references a
// type name nothing could resolve. The cache entry for ID is left as it was.
type CompilationError struct {
	ID  int
	Err error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("schemacache: failed to compile schema %d: %v", e.ID, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCompilation.
func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}

// IsCompilationError checks if the error is a schema compilation failure.
func IsCompilationError(err error) bool {
	return errors.Is(err, ErrCompilation)
}
