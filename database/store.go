package database

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Query narrows a collection listing. The zero value lists everything in
// store order.
type Query struct {
	Field   string // equality predicate field, empty for none
	Equals  string
	OrderBy string // sort descending by this field, empty for store order
	Limit   int    // 0 means unlimited
}

// DocumentStore is the external document database. Implementations keep no
// state of their own beyond the connection.
type DocumentStore interface {
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Insert stores fields and returns the generated id.
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Delete returns ErrNotFound when no document has the id.
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Document is a stored document as returned by a DocumentStore.
type Document struct {
	ID     string
	Fields map[string]any
}
