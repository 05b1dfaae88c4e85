package core

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector's dimension differs
	// from the dimension the index was built with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexNotFound is returned when loading a missing or corrupt index
	// snapshot.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrEmptyQuery is returned when the answerer is asked an empty
	// question. No external calls are made in that case.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNoDocumentsIngested is returned when an ingestion run loads zero
	// documents successfully. The existing index is left untouched.
	ErrNoDocumentsIngested = errors.New("no documents ingested")
)
