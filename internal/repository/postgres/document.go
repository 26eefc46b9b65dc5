package postgres

import (
	"context"
	"encoding/json"

	sqlxtypes "github.com/jmoiron/sqlx/types"
	"github.com/yadgarautos/jobfiles/internal/domain/document"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/postgres"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type documentStore struct {
	db     *postgres.DB
	logger *logger.Logger
	sentry *sentry.Service
}

// NewDocumentStore keeps every collection in one jsonb table keyed by (collection, id)
func NewDocumentStore(db *postgres.DB, logger *logger.Logger, sentry *sentry.Service) document.Store {
	return &documentStore{db: db, logger: logger, sentry: sentry}
}

type documentRow struct {
	ID   string             `db:"id"`
	Data sqlxtypes.JSONText `db:"data"`
}

func (r documentRow) toDocument() (document.Document, error) {
	doc := document.Document{}
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("document %s is not valid json", r.ID).
			Mark(ierr.ErrDatabase)
	}
	doc[document.FieldID] = r.ID
	return doc, nil
}

func marshalFields(fields map[string]any) ([]byte, error) {
	body := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == document.FieldID {
			continue
		}
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Document could not be encoded").
			Mark(ierr.ErrValidation)
	}
	return data, nil
}

func (s *documentStore) Create(ctx context.Context, collection string, doc document.Document) (id string, err error) {
	span, ctx := s.sentry.StartDBSpan(ctx, "document.create", map[string]interface{}{"collection": collection})
	defer func() { sentry.FinishSpan(span, err) }()

	id = doc.ID()
	if id == "" {
		id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT)
	}

	data, err := marshalFields(doc)
	if err != nil {
		return "", err
	}

	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`
	if _, err = s.db.GetQuerier(ctx).ExecContext(ctx, query, collection, id, data); err != nil {
		if isUniqueViolation(err) {
			return "", ierr.WithError(err).
				WithHintf("Document %s already exists", id).
				Mark(ierr.ErrAlreadyExists)
		}
		return "", storeError(err, "Could not save the document")
	}

	s.logger.Debugw("created document", "collection", collection, "id", id)
	return id, nil
}

func (s *documentStore) ReadAll(ctx context.Context, collection string) (docs []document.Document, err error) {
	span, ctx := s.sentry.StartDBSpan(ctx, "document.read_all", map[string]interface{}{"collection": collection})
	defer func() { sentry.FinishSpan(span, err) }()

	var rows []documentRow
	query := `SELECT id, data FROM documents WHERE collection = $1 ORDER BY created_at, id`
	if err = s.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, collection); err != nil {
		return nil, storeError(err, "Could not list documents")
	}

	docs = make([]document.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *documentStore) ReadOne(ctx context.Context, collection, id string) (doc document.Document, err error) {
	span, ctx := s.sentry.StartDBSpan(ctx, "document.read_one", map[string]interface{}{"collection": collection, "id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	var row documentRow
	query := `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	if err = s.db.GetQuerier(ctx).GetContext(ctx, &row, query, collection, id); err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Document %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, storeError(err, "Could not read the document")
	}
	return row.toDocument()
}

// Update merges the top level keys of partial into the stored document
func (s *documentStore) Update(ctx context.Context, collection, id string, partial map[string]any) (err error) {
	span, ctx := s.sentry.StartDBSpan(ctx, "document.update", map[string]interface{}{"collection": collection, "id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	data, err := marshalFields(partial)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = CURRENT_TIMESTAMP
		WHERE collection = $1 AND id = $2`
	res, err := s.db.GetQuerier(ctx).ExecContext(ctx, query, collection, id, data)
	if err != nil {
		return storeError(err, "Could not update the document")
	}
	return expectOneRow(res, id)
}

func (s *documentStore) Delete(ctx context.Context, collection, id string) (err error) {
	span, ctx := s.sentry.StartDBSpan(ctx, "document.delete", map[string]interface{}{"collection": collection, "id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	res, err := s.db.GetQuerier(ctx).ExecContext(ctx, query, collection, id)
	if err != nil {
		return storeError(err, "Could not delete the document")
	}
	return expectOneRow(res, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res rowsAffecter, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(err, "Could not confirm the write")
	}
	if n == 0 {
		return ierr.NewErrorf("document %s not found", id).
			WithHintf("Document %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
