package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/yadgarautos/jobfiles/internal/config"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/types"
)

// API is the part of the dynamodb client the repositories use
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type Client struct {
	db            API
	documentTable string
	counterTable  string
}

// NewClient returns nil when dynamodb is not the configured backend
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	if cfg.Storage.Backend != types.StoreBackendDynamoDB {
		return nil, nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.DynamoDB.Region)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to load AWS SDK config").
			Mark(ierr.ErrSystem)
	}

	log.Infow("using dynamodb storage",
		"region", cfg.DynamoDB.Region,
		"document_table", cfg.DynamoDB.DocumentTable,
		"counter_table", cfg.DynamoDB.CounterTable,
	)

	return NewClientWithAPI(config.NewDynamoDBClient(awsCfg, cfg.DynamoDB), cfg.DynamoDB), nil
}

// NewClientWithAPI wraps an existing client, used by tests and local endpoints
func NewClientWithAPI(api API, cfg config.DynamoDBConfig) *Client {
	return &Client{
		db:            api,
		documentTable: cfg.DocumentTable,
		counterTable:  cfg.CounterTable,
	}
}

func (c *Client) DB() API {
	return c.db
}

func (c *Client) DocumentTable() string {
	return c.documentTable
}

func (c *Client) CounterTable() string {
	return c.counterTable
}
