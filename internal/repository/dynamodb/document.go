package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/yadgarautos/jobfiles/internal/domain/document"
	ddb "github.com/yadgarautos/jobfiles/internal/dynamodb"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/types"
)

// documentStore keeps each document as one item: pk is the collection, sk the
// id, and the document fields sit next to them as top level attributes.
type documentStore struct {
	client *ddb.Client
	logger *logger.Logger
	sentry *sentry.Service
}

func NewDocumentStore(client *ddb.Client, logger *logger.Logger, sentry *sentry.Service) document.Store {
	return &documentStore{client: client, logger: logger, sentry: sentry}
}

func (s *documentStore) key(collection, id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		ddb.AttrPK: &ddbtypes.AttributeValueMemberS{Value: collection},
		ddb.AttrSK: &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

func (s *documentStore) Create(ctx context.Context, collection string, doc document.Document) (id string, err error) {
	span, ctx := s.sentry.StartDynamoDBSpan(ctx, "document.create", map[string]interface{}{"collection": collection})
	defer func() { sentry.FinishSpan(span, err) }()

	id = doc.ID()
	if id == "" {
		id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT)
	}

	body := doc.Clone()
	delete(body, document.FieldID)
	item, err := attributevalue.MarshalMap(map[string]any(body))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Document could not be encoded").
			Mark(ierr.ErrValidation)
	}
	for k, v := range s.key(collection, id) {
		item[k] = v
	}

	_, err = s.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.client.DocumentTable()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{
			"#sk": ddb.AttrSK,
		},
	})
	if err != nil {
		if isConditionFailed(err) {
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
	span, ctx := s.sentry.StartDynamoDBSpan(ctx, "document.read_all", map[string]interface{}{"collection": collection})
	defer func() { sentry.FinishSpan(span, err) }()

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.client.DocumentTable()),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": ddb.AttrPK,
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: collection},
		},
	}

	docs = []document.Document{}
	paginator := dynamodb.NewQueryPaginator(s.client.DB(), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storeError(err, "Could not list documents")
		}
		for _, item := range page.Items {
			doc, err := toDocument(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *documentStore) ReadOne(ctx context.Context, collection, id string) (doc document.Document, err error) {
	span, ctx := s.sentry.StartDynamoDBSpan(ctx, "document.read_one", map[string]interface{}{"collection": collection, "id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	out, err := s.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.client.DocumentTable()),
		Key:            s.key(collection, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeError(err, "Could not read the document")
	}
	if len(out.Item) == 0 {
		return nil, notFound(id)
	}
	return toDocument(out.Item)
}

func (s *documentStore) Update(ctx context.Context, collection, id string, partial map[string]any) (err error) {
	span, ctx := s.sentry.StartDynamoDBSpan(ctx, "document.update", map[string]interface{}{"collection": collection, "id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	expr, names, values, err := setExpression(partial, document.FieldID, ddb.AttrPK, ddb.AttrSK)
	if err != nil {
		return err
	}
	names["#sk"] = ddb.AttrSK

	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.client.DocumentTable()),
		Key:                      s.key(collection, id),
		ConditionExpression:      aws.String("attribute_exists(#sk)"),
		ExpressionAttributeNames: names,
	}
	if expr == "" {
		// nothing to merge, still confirm the document exists
		_, err = s.ReadOne(ctx, collection, id)
		return err
	}
	input.UpdateExpression = aws.String(expr)
	input.ExpressionAttributeValues = values

	if _, err = s.client.DB().UpdateItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return notFound(id)
		}
		return storeError(err, "Could not update the document")
	}
	return nil
}

func (s *documentStore) Delete(ctx context.Context, collection, id string) (err error) {
	span, ctx := s.sentry.StartDynamoDBSpan(ctx, "document.delete", map[string]interface{}{"collection": collection, "id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	_, err = s.client.DB().DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.client.DocumentTable()),
		Key:                 s.key(collection, id),
		ConditionExpression: aws.String("attribute_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{
			"#sk": ddb.AttrSK,
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return notFound(id)
		}
		return storeError(err, "Could not delete the document")
	}
	return nil
}

func toDocument(item map[string]ddbtypes.AttributeValue) (document.Document, error) {
	var id string
	if sk, ok := item[ddb.AttrSK].(*ddbtypes.AttributeValueMemberS); ok {
		id = sk.Value
	}

	doc := document.Document{}
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Document %s could not be decoded", id).
			Mark(ierr.ErrDatabase)
	}
	delete(doc, ddb.AttrPK)
	delete(doc, ddb.AttrSK)
	doc[document.FieldID] = id
	return doc, nil
}

func notFound(id string) error {
	return ierr.NewErrorf("document %s not found", id).
		WithHintf("Document %s not found", id).
		Mark(ierr.ErrNotFound)
}
