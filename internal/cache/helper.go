package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// StartCacheSpan opens a db.cache span for operation on store.
// Nil when ctx carries no sentry hub.
func StartCacheSpan(ctx context.Context, store, operation string, params map[string]any) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "cache." + store + "." + operation
	span := sentry.StartSpan(ctx, name)
	if span == nil {
		return nil
	}
	span.Description = name
	span.Op = "db.cache"
	span.SetData("cache.store", store)
	span.SetData("cache.operation", operation)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span
}

// RecordHit notes on span whether a lookup found its key
func RecordHit(span *sentry.Span, hit bool) {
	if span != nil {
		span.SetData("cache.hit", hit)
	}
}

// FinishSpan closes span. A non nil err marks it failed.
func FinishSpan(span *sentry.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}
