// Package repository is a generic document store adapter. Documents are
// grouped into named collections; the backing store assigns each one an
// identity that callers only ever see as an opaque ID.
package repository

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by every operation of a store that was opened
// without a connection string.
var ErrNotConfigured = errors.New("database not configured")

// ID is a store-assigned document identity in its canonical string form.
type ID struct {
	s string
}

// NewID wraps the string form of a native identity.
func NewID(s string) ID { return ID{s: s} }

func (id ID) String() string { return id.s }

func (id ID) IsZero() bool { return id.s == "" }

// Filter maps field names to the values they must equal. An empty filter
// matches every document.
type Filter map[string]any

// Decoder decodes the current document into v.
type Decoder interface {
	Decode(v any) error
}

// Store is implemented by each backend.
type Store interface {
	// Name identifies the database, used in health reports.
	Name() string
	Insert(ctx context.Context, collection string, doc any) (ID, error)
	// Find calls fn for up to limit documents matching filter, in insertion
	// order. A zero limit yields nothing.
	Find(ctx context.Context, collection string, filter Filter, limit int, fn func(ID, Decoder) error) error
	CollectionNames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// StorageError reports a failed store operation.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, collection string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Collection: collection, Err: err}
}

// Document is a decoded document together with its identity.
type Document[T any] struct {
	ID   ID
	Data T
}

// CreateDocument inserts doc into collection and returns the assigned id.
func CreateDocument[T any](ctx context.Context, s Store, collection string, doc T) (string, error) {
	id, err := s.Insert(ctx, collection, doc)
	if err != nil {
		return "", storageErr("insert", collection, err)
	}
	if id.IsZero() {
		return "", &StorageError{Op: "insert", Collection: collection, Err: errors.New("store returned no id")}
	}
	return id.String(), nil
}

// GetDocuments returns up to limit documents of collection matching filter.
func GetDocuments[T any](ctx context.Context, s Store, collection string, filter Filter, limit int) ([]Document[T], error) {
	if limit < 0 {
		return nil, &StorageError{Op: "find", Collection: collection, Err: fmt.Errorf("negative limit %d", limit)}
	}
	out := make([]Document[T], 0, min(limit, 64))
	if limit == 0 {
		return out, nil
	}
	err := s.Find(ctx, collection, filter, limit, func(id ID, dec Decoder) error {
		var data T
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("decode %s: %w", id, err)
		}
		out = append(out, Document[T]{ID: id, Data: data})
		return nil
	})
	if err != nil {
		return nil, storageErr("find", collection, err)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
