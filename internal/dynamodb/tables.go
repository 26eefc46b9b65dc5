package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
)

const (
	// AttrPK and AttrSK key the document table: collection and document id
	AttrPK = "pk"
	AttrSK = "sk"
	// AttrName keys the counter table
	AttrName = "name"
)

// EnsureTables creates the document and counter tables when missing
func (c *Client) EnsureTables(ctx context.Context, log *logger.Logger) error {
	tables := []*dynamodb.CreateTableInput{
		{
			TableName: aws.String(c.documentTable),
			AttributeDefinitions: []ddbtypes.AttributeDefinition{
				{AttributeName: aws.String(AttrPK), AttributeType: ddbtypes.ScalarAttributeTypeS},
				{AttributeName: aws.String(AttrSK), AttributeType: ddbtypes.ScalarAttributeTypeS},
			},
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: aws.String(AttrPK), KeyType: ddbtypes.KeyTypeHash},
				{AttributeName: aws.String(AttrSK), KeyType: ddbtypes.KeyTypeRange},
			},
			BillingMode: ddbtypes.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(c.counterTable),
			AttributeDefinitions: []ddbtypes.AttributeDefinition{
				{AttributeName: aws.String(AttrName), AttributeType: ddbtypes.ScalarAttributeTypeS},
			},
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: aws.String(AttrName), KeyType: ddbtypes.KeyTypeHash},
			},
			BillingMode: ddbtypes.BillingModePayPerRequest,
		},
	}

	for _, input := range tables {
		name := aws.ToString(input.TableName)
		_, err := c.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName})
		if err == nil {
			log.Infow("dynamodb table exists", "table", name)
			continue
		}
		var notFound *ddbtypes.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return ierr.WithError(err).
				WithHintf("Could not describe table %s", name).
				Mark(ierr.ErrStoreUnavailable)
		}

		if _, err := c.db.CreateTable(ctx, input); err != nil {
			return ierr.WithError(err).
				WithHintf("Could not create table %s", name).
				Mark(ierr.ErrStoreUnavailable)
		}
		log.Infow("created dynamodb table", "table", name)
	}

	return c.waitForTables(ctx, tables)
}

func (c *Client) waitForTables(ctx context.Context, tables []*dynamodb.CreateTableInput) error {
	client, ok := c.db.(*dynamodb.Client)
	if !ok {
		return nil
	}
	waiter := dynamodb.NewTableExistsWaiter(client)
	for _, input := range tables {
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName}, 2*time.Minute); err != nil {
			return ierr.WithError(err).
				WithHintf("Table %s did not become active", aws.ToString(input.TableName)).
				Mark(ierr.ErrStoreUnavailable)
		}
	}
	return nil
}
