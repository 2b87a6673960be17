package vector

import "errors"

var (
	// ErrNotFound is returned when an id has no entry in the semantic index.
	ErrNotFound = errors.New("document not found")

	// ErrEmbedding is returned when generating an embedding for a record
	// or query fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the index backend is unreachable.
	ErrConnection = errors.New("vector store connection failed")
)
