package dynamodb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

func storeError(err error, hint string) error {
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrStoreUnavailable)
}

func isConditionFailed(err error) bool {
	var ccf *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// setExpression builds "SET #f0 = :v0, #f1 = :v1" over the sorted keys of fields
func setExpression(fields map[string]any, skip ...string) (string, map[string]string, map[string]ddbtypes.AttributeValue, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if lo.Contains(skip, k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]string, len(keys))
	values := make(map[string]ddbtypes.AttributeValue, len(keys))
	clauses := make([]string, 0, len(keys))
	for i, k := range keys {
		av, err := attributevalue.Marshal(fields[k])
		if err != nil {
			return "", nil, nil, ierr.WithError(err).
				WithHintf("Field %s could not be encoded", k).
				Mark(ierr.ErrValidation)
		}
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		names[name] = k
		values[value] = av
		clauses = append(clauses, name+" = "+value)
	}

	if len(clauses) == 0 {
		return "", names, values, nil
	}
	return "SET " + strings.Join(clauses, ", "), names, values, nil
}
