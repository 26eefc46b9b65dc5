package dynamodb

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/yadgarautos/jobfiles/internal/domain/sequence"
	ddb "github.com/yadgarautos/jobfiles/internal/dynamodb"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/sentry"
)

const (
	attrCurrent   = "current"
	attrCreatedAt = "created_at"
	attrUpdatedAt = "updated_at"
)

type counterRepository struct {
	client *ddb.Client
	logger *logger.Logger
	sentry *sentry.Service
}

func NewCounterRepository(client *ddb.Client, logger *logger.Logger, sentry *sentry.Service) sequence.Repository {
	return &counterRepository{client: client, logger: logger, sentry: sentry}
}

func (r *counterRepository) key(name string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		ddb.AttrName: &ddbtypes.AttributeValueMemberS{Value: name},
	}
}

func (r *counterRepository) Read(ctx context.Context, name string) (current int64, err error) {
	span, ctx := r.sentry.StartDynamoDBSpan(ctx, "counter.read", map[string]interface{}{"name": name})
	defer func() { sentry.FinishSpan(span, err) }()

	out, err := r.client.DB().GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.client.CounterTable()),
		Key:            r.key(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, storeError(err, "Could not read the invoice counter")
	}
	if len(out.Item) == 0 {
		return 0, ierr.NewErrorf("counter %s not found", name).
			WithHintf("Counter %s has not been initialized", name).
			Mark(ierr.ErrNotFound)
	}
	return currentOf(out.Item)
}

func (r *counterRepository) Init(ctx context.Context, name string, value int64) (created bool, err error) {
	span, ctx := r.sentry.StartDynamoDBSpan(ctx, "counter.init", map[string]interface{}{"name": name, "value": value})
	defer func() { sentry.FinishSpan(span, err) }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = r.client.DB().PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.client.CounterTable()),
		Item: map[string]ddbtypes.AttributeValue{
			ddb.AttrName:  &ddbtypes.AttributeValueMemberS{Value: name},
			attrCurrent:   &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)},
			attrCreatedAt: &ddbtypes.AttributeValueMemberS{Value: now},
			attrUpdatedAt: &ddbtypes.AttributeValueMemberS{Value: now},
		},
		ConditionExpression:      aws.String("attribute_not_exists(#n)"),
		ExpressionAttributeNames: map[string]string{"#n": ddb.AttrName},
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, storeError(err, "Could not initialize the invoice counter")
	}
	return true, nil
}

// Increment relies on ADD, which dynamodb applies atomically and which treats a
// missing item or attribute as zero
func (r *counterRepository) Increment(ctx context.Context, name string, delta int64) (current int64, err error) {
	span, ctx := r.sentry.StartDynamoDBSpan(ctx, "counter.increment", map[string]interface{}{"name": name, "delta": delta})
	defer func() { sentry.FinishSpan(span, err) }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	out, err := r.client.DB().UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.client.CounterTable()),
		Key:              r.key(name),
		UpdateExpression: aws.String("ADD #c :d SET #u = :now, #cr = if_not_exists(#cr, :now)"),
		ExpressionAttributeNames: map[string]string{
			"#c":  attrCurrent,
			"#u":  attrUpdatedAt,
			"#cr": attrCreatedAt,
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":d":   &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(delta, 10)},
			":now": &ddbtypes.AttributeValueMemberS{Value: now},
		},
		ReturnValues: ddbtypes.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, storeError(err, "Could not issue an invoice number")
	}

	current, err = currentOf(out.Attributes)
	if err != nil {
		return 0, err
	}
	r.logger.Infow("incremented counter", "name", name, "current", current)
	return current, nil
}

func currentOf(item map[string]ddbtypes.AttributeValue) (int64, error) {
	n, ok := item[attrCurrent].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, ierr.NewError("counter item has no numeric current").
			Mark(ierr.ErrDatabase)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Counter value is not an integer").
			Mark(ierr.ErrDatabase)
	}
	return v, nil
}
