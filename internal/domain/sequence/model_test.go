package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

func TestInvoiceNumberString(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{0, "YAI-0000"},
		{1, "YAI-0001"},
		{42, "YAI-0042"},
		{9999, "YAI-9999"},
		{10000, "YAI-10000"},
		{1234567, "YAI-1234567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewInvoiceNumber(DefaultPrefix, tt.seq).String())
	}
}

func TestParseInvoiceNumber(t *testing.T) {
	n, err := ParseInvoiceNumber("YAI-0042")
	require.NoError(t, err)
	assert.Equal(t, InvoiceNumber{Prefix: "YAI", Sequence: 42}, n)

	n, err = ParseInvoiceNumber("YAI-10000")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), n.Sequence)

	for _, bad := range []string{"", "YAI", "YAI-", "-0042", "YAI-abc", "YAI-1.5"} {
		_, err := ParseInvoiceNumber(bad)
		assert.True(t, ierr.IsValidation(err), bad)
	}
}
