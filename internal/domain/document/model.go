package document

import (
	"context"
)

// FieldID is injected into every document on read
const FieldID = "id"

// Document is a schemaless record of a collection
type Document map[string]any

// ID returns the injected document id
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone returns a shallow copy
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Store is a narrow document database: create, read, shallow update, delete.
// ReadOne, Update and Delete return an ErrNotFound marked error for a missing id.
type Store interface {
	Create(ctx context.Context, collection string, doc Document) (string, error)
	ReadAll(ctx context.Context, collection string) ([]Document, error)
	ReadOne(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}
