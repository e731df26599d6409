package graph

import "errors"

var (
	// ErrDuplicateVertex is returned when a stop code is already a vertex
	ErrDuplicateVertex = errors.New("duplicate vertex")

	// ErrDuplicateEdge is returned when the ordered vertex pair already has an edge
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidVertex is returned for handles that were never issued or were removed
	ErrInvalidVertex = errors.New("invalid vertex")

	// ErrInvalidEdge is returned for handles that were never issued or were removed
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrNotIncident is returned by Opposite when the vertex is not an endpoint of the edge
	ErrNotIncident = errors.New("vertex is not incident to edge")

	// ErrDuplicateStopName is returned when two stops of the network share a display name
	ErrDuplicateStopName = errors.New("duplicate stop name")

	// ErrUnknownStop is returned when a route references a stop code missing from the network
	ErrUnknownStop = errors.New("unknown stop")
)
