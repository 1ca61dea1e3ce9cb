package docstore

import (
	"context"
	"errors"
)

// Collection names, kept compatible with the documents the club app already has.
const (
	Players = "jugadores"
	Matches = "partidos"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("document not found")

// Document is the untyped body of a stored record.
type Document map[string]any

// Record is a document together with its store-assigned id.
type Record struct {
	ID   string
	Data Document
}

// Store defines the per-collection operations every backend provides.
// Update merges the given top-level fields into the existing document.
// Delete of a missing record is not an error.
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	Create(ctx context.Context, collection string, data Document) (string, error)
	Update(ctx context.Context, collection, id string, data Document) error
	Delete(ctx context.Context, collection, id string) error
	FindOne(ctx context.Context, collection, field string, value any) (Record, error)
}
