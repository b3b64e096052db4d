// Package dberror holds the error taxonomy shared by the storage engine.
// Callers classify failures with errors.Is against these sentinels; the
// concrete errors are wrapped with the offending input for context.
package dberror

import "errors"

// --- Error Definitions ---

var (
	// ErrInvalidSchema reports a schema that violates construction rules or a
	// catalog line that does not follow the schema grammar.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidPage reports a data file line without a valid page header.
	ErrInvalidPage = errors.New("invalid page encoding")
	// ErrInvalidRecord reports an over-long value, a malformed record segment
	// or a column count that does not match the owning schema.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrIO reports a failed file operation on the catalog or a data file.
	ErrIO = errors.New("i/o error")
	// ErrTypeNotFound is returned by record operations naming an unknown type.
	ErrTypeNotFound = errors.New("type not found")
)
