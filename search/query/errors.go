package query

import "errors"

var (
	// ErrSyntax is returned for malformed query text or trees.
	ErrSyntax = errors.New("query syntax error")

	// ErrModelMismatch is returned when an operator is not supported by the
	// retrieval model.
	ErrModelMismatch = errors.New("operator not supported by retrieval model")
)
