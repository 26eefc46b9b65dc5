package cache

import (
	"context"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

func TestCacheSpanWithoutHub(t *testing.T) {
	span := StartCacheSpan(context.Background(), "jobfile", "get", nil)
	assert.Nil(t, span)
	assert.NotPanics(t, func() {
		RecordHit(span, true)
		FinishSpan(span, ierr.NewError("boom").Mark(ierr.ErrSystem))
	})
}

func TestCacheSpanStatus(t *testing.T) {
	ctx := sentry.SetHubOnContext(context.Background(), sentry.NewHub(nil, sentry.NewScope()))

	hit := StartCacheSpan(ctx, "jobfile", "get", map[string]any{"jobfile_id": "doc_1"})
	require.NotNil(t, hit)
	assert.Equal(t, "db.cache", hit.Op)
	assert.Equal(t, "cache.jobfile.get", hit.Description)
	RecordHit(hit, true)
	FinishSpan(hit, nil)
	assert.Equal(t, sentry.SpanStatusOK, hit.Status)
	assert.Equal(t, true, hit.Data["cache.hit"])
	assert.Equal(t, "doc_1", hit.Data["jobfile_id"])

	failed := StartCacheSpan(ctx, "jobfile", "get", nil)
	require.NotNil(t, failed)
	FinishSpan(failed, ierr.NewError("unexpected cached value").Mark(ierr.ErrSystem))
	assert.Equal(t, sentry.SpanStatusInternalError, failed.Status)
	assert.Contains(t, failed.Data["error"], "unexpected cached value")
}
