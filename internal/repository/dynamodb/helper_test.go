package dynamodb

import (
	"testing"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ddb "github.com/yadgarautos/jobfiles/internal/dynamodb"
)

func TestSetExpression(t *testing.T) {
	expr, names, values, err := setExpression(map[string]any{
		"paid":      true,
		"vehicleNo": "LEA-1234",
		"id":        "ignored",
	}, "id")
	require.NoError(t, err)

	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", expr)
	assert.Equal(t, map[string]string{"#f0": "paid", "#f1": "vehicleNo"}, names)
	assert.Equal(t, &ddbtypes.AttributeValueMemberBOOL{Value: true}, values[":v0"])
	assert.Equal(t, &ddbtypes.AttributeValueMemberS{Value: "LEA-1234"}, values[":v1"])
}

func TestSetExpressionEmpty(t *testing.T) {
	expr, names, values, err := setExpression(map[string]any{"id": "x"}, "id")
	require.NoError(t, err)
	assert.Empty(t, expr)
	assert.Empty(t, names)
	assert.Empty(t, values)
}

func TestToDocumentStripsKeys(t *testing.T) {
	doc, err := toDocument(map[string]ddbtypes.AttributeValue{
		ddb.AttrPK:  &ddbtypes.AttributeValueMemberS{Value: "jobSurveys"},
		ddb.AttrSK:  &ddbtypes.AttributeValueMemberS{Value: "job_1"},
		"vehicleNo": &ddbtypes.AttributeValueMemberS{Value: "LEA-1234"},
		"paid":      &ddbtypes.AttributeValueMemberBOOL{Value: false},
	})
	require.NoError(t, err)

	assert.Equal(t, "job_1", doc.ID())
	assert.Equal(t, "LEA-1234", doc["vehicleNo"])
	assert.Equal(t, false, doc["paid"])
	assert.NotContains(t, doc, ddb.AttrPK)
	assert.NotContains(t, doc, ddb.AttrSK)
}

func TestCurrentOf(t *testing.T) {
	v, err := currentOf(map[string]ddbtypes.AttributeValue{
		attrCurrent: &ddbtypes.AttributeValueMemberN{Value: "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = currentOf(map[string]ddbtypes.AttributeValue{})
	assert.Error(t, err)
}
