package dynamodb

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/sequence"
	ddb "github.com/yadgarautos/jobfiles/internal/dynamodb"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/sentry"
)

const testCounterTable = "counters"

// fakeCounterAPI keeps counter items in memory and applies ADD under a lock,
// the way dynamodb applies it atomically on the server
type fakeCounterAPI struct {
	ddb.API

	mu      sync.Mutex
	items   map[string]map[string]ddbtypes.AttributeValue
	updates []*dynamodb.UpdateItemInput
	failing error
}

func newFakeCounterAPI() *fakeCounterAPI {
	return &fakeCounterAPI{items: map[string]map[string]ddbtypes.AttributeValue{}}
}

func nameOf(key map[string]ddbtypes.AttributeValue) string {
	return key[ddb.AttrName].(*ddbtypes.AttributeValueMemberS).Value
}

func (f *fakeCounterAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	return &dynamodb.GetItemOutput{Item: f.items[nameOf(in.Key)]}, nil
}

func (f *fakeCounterAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := nameOf(in.Item)
	if _, exists := f.items[name]; exists && in.ConditionExpression != nil {
		return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[name] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeCounterAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	f.updates = append(f.updates, in)

	delta, err := strconv.ParseInt(in.ExpressionAttributeValues[":d"].(*ddbtypes.AttributeValueMemberN).Value, 10, 64)
	if err != nil {
		return nil, err
	}

	name := nameOf(in.Key)
	item, ok := f.items[name]
	if !ok {
		item = map[string]ddbtypes.AttributeValue{ddb.AttrName: in.Key[ddb.AttrName]}
		f.items[name] = item
	}
	var current int64
	if n, ok := item[attrCurrent].(*ddbtypes.AttributeValueMemberN); ok {
		current, _ = strconv.ParseInt(n.Value, 10, 64)
	}
	current += delta
	item[attrCurrent] = &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(current, 10)}

	return &dynamodb.UpdateItemOutput{
		Attributes: map[string]ddbtypes.AttributeValue{
			attrCurrent:   item[attrCurrent],
			attrUpdatedAt: in.ExpressionAttributeValues[":now"],
		},
	}, nil
}

func newTestCounterRepository(api ddb.API) sequence.Repository {
	log := logger.NewNoopLogger()
	client := ddb.NewClientWithAPI(api, config.DynamoDBConfig{
		DocumentTable: "documents",
		CounterTable:  testCounterTable,
	})
	return NewCounterRepository(client, log, sentry.NewSentryService(config.GetDefaultConfig(), log))
}

func TestCounterIncrementUsesAtomicAdd(t *testing.T) {
	api := newFakeCounterAPI()
	repo := newTestCounterRepository(api)

	current, err := repo.Increment(context.Background(), "invoiceCounter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)

	require.Len(t, api.updates, 1)
	in := api.updates[0]
	assert.Equal(t, testCounterTable, aws.ToString(in.TableName))
	assert.Contains(t, aws.ToString(in.UpdateExpression), "ADD #c :d")
	assert.Equal(t, attrCurrent, in.ExpressionAttributeNames["#c"])
	assert.Equal(t, &ddbtypes.AttributeValueMemberN{Value: "1"}, in.ExpressionAttributeValues[":d"])
	assert.Equal(t, ddbtypes.ReturnValueUpdatedNew, in.ReturnValues)
	assert.Nil(t, in.ConditionExpression)

	current, err = repo.Increment(context.Background(), "invoiceCounter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)
}

func TestCounterConcurrentIncrementsAreDistinct(t *testing.T) {
	api := newFakeCounterAPI()
	repo := newTestCounterRepository(api)

	const workers = 32
	got := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := repo.Increment(context.Background(), "invoiceCounter", 1)
			assert.NoError(t, err)
			got[i] = v
		}(i)
	}
	wg.Wait()

	assert.Len(t, lo.Uniq(got), workers)
	assert.ElementsMatch(t, lo.RangeFrom(int64(1), workers), got)
}

func TestCounterIncrementStoreUnavailable(t *testing.T) {
	api := newFakeCounterAPI()
	api.failing = &ddbtypes.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
	repo := newTestCounterRepository(api)

	_, err := repo.Increment(context.Background(), "invoiceCounter", 1)
	assert.True(t, ierr.IsStoreUnavailable(err), err)
}

func TestCounterIncrementRejectsMalformedReply(t *testing.T) {
	api := &malformedUpdateAPI{}
	repo := newTestCounterRepository(api)

	_, err := repo.Increment(context.Background(), "invoiceCounter", 1)
	assert.True(t, errors.Is(err, ierr.ErrDatabase), err)
}

type malformedUpdateAPI struct {
	ddb.API
}

func (malformedUpdateAPI) UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{
		Attributes: map[string]ddbtypes.AttributeValue{
			attrCurrent: &ddbtypes.AttributeValueMemberS{Value: "7"},
		},
	}, nil
}

func TestCounterInit(t *testing.T) {
	api := newFakeCounterAPI()
	repo := newTestCounterRepository(api)

	created, err := repo.Init(context.Background(), "invoiceCounter", 41)
	require.NoError(t, err)
	assert.True(t, created)

	// the conditional put fails on an existing counter, which is not an error
	created, err = repo.Init(context.Background(), "invoiceCounter", 99)
	require.NoError(t, err)
	assert.False(t, created)

	current, err := repo.Read(context.Background(), "invoiceCounter")
	require.NoError(t, err)
	assert.Equal(t, int64(41), current)
}

func TestCounterReadMissing(t *testing.T) {
	api := newFakeCounterAPI()
	repo := newTestCounterRepository(api)

	_, err := repo.Read(context.Background(), "invoiceCounter")
	assert.True(t, ierr.IsNotFound(err), err)

	api.failing = &ddbtypes.InternalServerError{Message: aws.String("boom")}
	_, err = repo.Read(context.Background(), "invoiceCounter")
	assert.True(t, ierr.IsStoreUnavailable(err), err)
}
