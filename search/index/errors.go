package index

import "errors"

var (
	// ErrNotFound is returned when an external id has no live document.
	ErrNotFound = errors.New("document not found")

	errKeyOrder = errors.New("kv store keys must be appended in increasing order")
)
