package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/logger"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig(), logger.NewNoopLogger())

	c.Set(ctx, GenerateKey(PrefixJobFileList, "all"), 3, time.Minute)
	c.Set(ctx, GenerateKey(PrefixJobFileList, "paid"), 1, time.Minute)
	c.Set(ctx, GenerateKey(PrefixJobFile, "job_1"), "x", time.Minute)

	v, ok := c.Get(ctx, "jobfile_list:v1::all")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	c.DeleteByPrefix(ctx, PrefixJobFileList)
	_, ok = c.Get(ctx, GenerateKey(PrefixJobFileList, "all"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixJobFile, "job_1"))
	assert.True(t, ok)
}

func TestDisabledCacheKeepsForcedEntries(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = false
	c := NewInMemoryCache(cfg, logger.NewNoopLogger())

	c.Set(ctx, "k", 1, time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.ForceSet(ctx, GenerateKey(PrefixRevokedJWT, "token"), true, time.Minute)
	_, ok = c.ForceGet(ctx, GenerateKey(PrefixRevokedJWT, "token"))
	assert.True(t, ok)
}
