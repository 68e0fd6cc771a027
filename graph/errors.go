package graph

import "errors"

var (
	// ErrNotFound is returned when a node or edge lookup fails.
	ErrNotFound = errors.New("not found")

	// ErrUnknownEdgeNodes is returned when attempting to create an edge
	// with an invalid source and/or destination ID.
	ErrUnknownEdgeNodes = errors.New("unknown source and/or destination for edge")

	// ErrInvalidWeight is returned when attempting to create an edge whose
	// weight is not a positive number.
	ErrInvalidWeight = errors.New("edge weight must be positive")

	// ErrSelfLoop is returned when attempting to connect a node to itself.
	ErrSelfLoop = errors.New("edge endpoints must differ")
)
