// Package vector provides interfaces and implementations for the semantic
// index tier: vector storage and nearest-neighbor retrieval over context
// record embeddings.
package vector

import "context"

// Document represents a stored item with its embedding and compact metadata.
type Document struct {
	// ID is the context record id the embedding belongs to.
	ID string

	// Tags are the record's domain tags, stored for filtered queries.
	Tags []string

	// Metadata is compact descriptive payload (pattern type, source).
	Metadata map[string]string

	// Embedding is the vector representation of the record's full context.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should
	// update the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	// A non-empty tags slice restricts results to documents carrying at
	// least one of the tags.
	Query(ctx context.Context, embedding []float32, topK int, tags []string) ([]QueryResult, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
