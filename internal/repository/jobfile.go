package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yadgarautos/jobfiles/internal/cache"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/document"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/types"
)

const (
	defaultJobFileTTL = 5 * time.Minute
	defaultListTTL    = 30 * time.Second
)

type jobFileRepository struct {
	store   document.Store
	log     *logger.Logger
	cache   cache.Cache
	itemTTL time.Duration
	listTTL time.Duration
}

// NewJobFileRepository keeps job files in the jobSurveys collection of store.
// Listings are cached for a short while and dropped on every write.
func NewJobFileRepository(store document.Store, cfg *config.Configuration, log *logger.Logger, cache cache.Cache) jobfile.Repository {
	r := &jobFileRepository{
		store:   store,
		log:     log,
		cache:   cache,
		itemTTL: cfg.Cache.DefaultTTL,
		listTTL: cfg.Cache.ListTTL,
	}
	if r.itemTTL <= 0 {
		r.itemTTL = defaultJobFileTTL
	}
	if r.listTTL <= 0 {
		r.listTTL = defaultListTTL
	}
	return r
}

func (r *jobFileRepository) Create(ctx context.Context, j *jobfile.JobFile) error {
	doc, err := j.ToDocument()
	if err != nil {
		return err
	}

	id, err := r.store.Create(ctx, jobfile.Collection, doc)
	if err != nil {
		return err
	}
	j.ID = id

	r.log.Debugw("created job file", "id", id, "bill_no", j.BillNo)
	r.invalidate(ctx, "")
	return nil
}

func (r *jobFileRepository) Get(ctx context.Context, id string) (*jobfile.JobFile, error) {
	if cached := r.GetCache(ctx, id); cached != nil {
		return cached, nil
	}

	doc, err := r.store.ReadOne(ctx, jobfile.Collection, id)
	if err != nil {
		return nil, err
	}

	j, err := jobfile.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	r.SetCache(ctx, j)
	return j, nil
}

func (r *jobFileRepository) List(ctx context.Context, filter *types.JobFileFilter) ([]*jobfile.JobFile, error) {
	if filter == nil {
		filter = types.NewDefaultJobFileFilter()
	}

	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}

	matched := applyFilter(all, filter)
	if filter.Offset >= len(matched) {
		return []*jobfile.JobFile{}, nil
	}
	matched = matched[filter.Offset:]
	if !filter.IsUnlimited() && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *jobFileRepository) Count(ctx context.Context, filter *types.JobFileFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitJobFileFilter()
	}
	all, err := r.all(ctx)
	if err != nil {
		return 0, err
	}
	return len(applyFilter(all, filter)), nil
}

func (r *jobFileRepository) GetByIdempotencyKey(ctx context.Context, key string) (*jobfile.JobFile, error) {
	// always read through, a stale list must not hide an earlier create
	docs, err := r.store.ReadAll(ctx, jobfile.Collection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if k, _ := doc["idempotencyKey"].(string); k != key {
			continue
		}
		return jobfile.FromDocument(doc)
	}
	return nil, ierr.NewError("no job file for idempotency key").
		WithHint("Job file not found").
		WithReportableDetails(map[string]interface{}{"idempotency_key": key}).
		Mark(ierr.ErrNotFound)
}

func (r *jobFileRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.store.Update(ctx, jobfile.Collection, id, fields); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *jobFileRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, jobfile.Collection, id); err != nil {
		return err
	}
	r.log.Debugw("deleted job file", "id", id)
	r.invalidate(ctx, id)
	return nil
}

// all returns every job file, newest first
func (r *jobFileRepository) all(ctx context.Context) ([]*jobfile.JobFile, error) {
	listKey := cache.GenerateKey(cache.PrefixJobFileList, "all")
	if value, found := r.cache.Get(ctx, listKey); found {
		if list, ok := value.([]*jobfile.JobFile); ok {
			return list, nil
		}
	}

	docs, err := r.store.ReadAll(ctx, jobfile.Collection)
	if err != nil {
		return nil, err
	}

	list := make([]*jobfile.JobFile, 0, len(docs))
	for _, doc := range docs {
		j, err := jobfile.FromDocument(doc)
		if err != nil {
			// one malformed record must not hide the rest
			r.log.Warnw("skipping malformed job file", "id", doc.ID(), "error", err)
			continue
		}
		list = append(list, j)
	}
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].CreatedAt.After(list[b].CreatedAt)
	})

	r.cache.Set(ctx, listKey, list, r.listTTL)
	return list, nil
}

func applyFilter(list []*jobfile.JobFile, filter *types.JobFileFilter) []*jobfile.JobFile {
	matched := lo.Filter(list, func(j *jobfile.JobFile, _ int) bool {
		if filter.VehicleNo != nil && *filter.VehicleNo != "" &&
			!strings.Contains(strings.ToUpper(j.VehicleNo), strings.ToUpper(strings.TrimSpace(*filter.VehicleNo))) {
			return false
		}
		if filter.Paid != nil && j.Paid != *filter.Paid {
			return false
		}
		return true
	})
	if filter.Order == types.OrderAsc {
		matched = lo.Reverse(matched)
	}
	return matched
}

func (r *jobFileRepository) invalidate(ctx context.Context, id string) {
	if id != "" {
		r.DeleteCache(ctx, id)
	}
	r.cache.DeleteByPrefix(ctx, cache.PrefixJobFileList)
}

func (r *jobFileRepository) SetCache(ctx context.Context, j *jobfile.JobFile) {
	span := cache.StartCacheSpan(ctx, "jobfile", "set", map[string]any{
		"jobfile_id": j.ID,
	})

	// callers own what Get returns, the cache keeps its own copy
	cp := *j
	cacheKey := cache.GenerateKey(cache.PrefixJobFile, j.ID)
	r.cache.Set(ctx, cacheKey, &cp, r.itemTTL)
	cache.FinishSpan(span, nil)
}

func (r *jobFileRepository) GetCache(ctx context.Context, id string) *jobfile.JobFile {
	span := cache.StartCacheSpan(ctx, "jobfile", "get", map[string]any{
		"jobfile_id": id,
	})

	cacheKey := cache.GenerateKey(cache.PrefixJobFile, id)
	value, found := r.cache.Get(ctx, cacheKey)
	cache.RecordHit(span, found)
	if !found {
		cache.FinishSpan(span, nil)
		return nil
	}

	j, ok := value.(*jobfile.JobFile)
	if !ok {
		err := ierr.NewErrorf("cached value for %s is %T", cacheKey, value).
			Mark(ierr.ErrSystem)
		r.log.Warnw("dropping unexpected cache entry", "key", cacheKey, "error", err)
		r.cache.Delete(ctx, cacheKey)
		cache.FinishSpan(span, err)
		return nil
	}
	cache.FinishSpan(span, nil)
	cp := *j
	return &cp
}

func (r *jobFileRepository) DeleteCache(ctx context.Context, id string) {
	span := cache.StartCacheSpan(ctx, "jobfile", "delete", map[string]any{
		"jobfile_id": id,
	})

	cacheKey := cache.GenerateKey(cache.PrefixJobFile, id)
	r.cache.Delete(ctx, cacheKey)
	cache.FinishSpan(span, nil)
}
