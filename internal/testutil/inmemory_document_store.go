package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/yadgarautos/jobfiles/internal/domain/document"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type collection struct {
	order []string
	docs  map[string]document.Document
}

// InMemoryDocumentStore implements document.Store. Documents go through a
// json round trip on write so they look like what a real backend returns.
type InMemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
	failure     error
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		collections: make(map[string]*collection),
	}
}

// SetFailure makes every call fail with err until cleared with nil
func (s *InMemoryDocumentStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *InMemoryDocumentStore) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]document.Document)}
		s.collections[name] = c
	}
	return c
}

func normalize(fields map[string]any) (document.Document, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Document could not be encoded").
			Mark(ierr.ErrValidation)
	}
	doc := document.Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Document could not be encoded").
			Mark(ierr.ErrValidation)
	}
	delete(doc, document.FieldID)
	return doc, nil
}

func notFound(id string) error {
	return ierr.NewErrorf("document %s not found", id).
		WithHintf("Document %s not found", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryDocumentStore) Create(_ context.Context, name string, doc document.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return "", s.failure
	}

	id := doc.ID()
	if id == "" {
		id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT)
	}

	c := s.coll(name)
	if _, exists := c.docs[id]; exists {
		return "", ierr.NewErrorf("document %s already exists", id).
			WithHintf("Document %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}

	stored, err := normalize(doc)
	if err != nil {
		return "", err
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

func (s *InMemoryDocumentStore) ReadAll(_ context.Context, name string) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return nil, s.failure
	}

	c, ok := s.collections[name]
	if !ok {
		return []document.Document{}, nil
	}
	docs := make([]document.Document, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id].Clone()
		doc[document.FieldID] = id
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *InMemoryDocumentStore) ReadOne(_ context.Context, name, id string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return nil, s.failure
	}

	c, ok := s.collections[name]
	if !ok {
		return nil, notFound(id)
	}
	stored, ok := c.docs[id]
	if !ok {
		return nil, notFound(id)
	}
	doc := stored.Clone()
	doc[document.FieldID] = id
	return doc, nil
}

func (s *InMemoryDocumentStore) Update(_ context.Context, name, id string, partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}

	c, ok := s.collections[name]
	if !ok {
		return notFound(id)
	}
	stored, ok := c.docs[id]
	if !ok {
		return notFound(id)
	}

	fields, err := normalize(partial)
	if err != nil {
		return err
	}
	merged := stored.Clone()
	for k, v := range fields {
		merged[k] = v
	}
	c.docs[id] = merged
	return nil
}

func (s *InMemoryDocumentStore) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}

	c, ok := s.collections[name]
	if !ok {
		return notFound(id)
	}
	if _, ok := c.docs[id]; !ok {
		return notFound(id)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of documents in a collection
func (s *InMemoryDocumentStore) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.docs)
	}
	return 0
}

func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string]*collection)
	s.failure = nil
}
