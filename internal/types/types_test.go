package types

import (
	"context"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

func TestJobFileFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  *JobFileFilter
		wantErr bool
	}{
		{"defaults", NewDefaultJobFileFilter(), false},
		{"no limit", NewNoLimitJobFileFilter(), false},
		{"filtered", &JobFileFilter{VehicleNo: lo.ToPtr("LEA-1234"), Paid: lo.ToPtr(true), Limit: 10, Order: OrderAsc}, false},
		{"negative limit", &JobFileFilter{Limit: -1}, true},
		{"limit above max", &JobFileFilter{Limit: FILTER_MAX_LIMIT + 1}, true},
		{"negative offset", &JobFileFilter{Limit: 10, Offset: -5}, true},
		{"unknown order", &JobFileFilter{Limit: 10, Order: "newest"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestJobFileFilterIsUnlimited(t *testing.T) {
	assert.False(t, NewDefaultJobFileFilter().IsUnlimited())
	assert.True(t, NewNoLimitJobFileFilter().IsUnlimited())
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"a", "b"}, 7, 2, 4)
	assert.Equal(t, []string{"a", "b"}, resp.Items)
	assert.Equal(t, PaginationResponse{Total: 7, Limit: 2, Offset: 4}, resp.Pagination)
}

func TestGenerateIDs(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)

	prefixed := GenerateUUIDWithPrefix(UUID_PREFIX_DOCUMENT)
	assert.True(t, strings.HasPrefix(prefixed, "doc_"))
	assert.Len(t, GenerateUUIDWithPrefix(""), 26)

	short := GenerateShortID()
	assert.NotEmpty(t, short)
	assert.NotContains(t, short, "-")
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetJWT(ctx))

	ctx = SetUserID(ctx, "user_admin")
	ctx = SetJWT(ctx, "token")
	assert.Equal(t, "user_admin", GetUserID(ctx))
	assert.Equal(t, "token", GetJWT(ctx))
}
