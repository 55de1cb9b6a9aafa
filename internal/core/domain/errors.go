package domain

import "errors"

// Domain errors form a closed set of failure categories.
// Callers wrap them with context and branch with errors.Is.
var (
	// ErrNotFound indicates a requested document or chunk does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID indicates a document id is already registered.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidConfiguration indicates a chunking or search parameter is out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput indicates malformed input, such as non UTF-8 content.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown content kind or processor.
	ErrUnsupportedType = errors.New("unsupported type")
)
