package jobfile

import (
	"context"

	"github.com/yadgarautos/jobfiles/internal/types"
)

// Repository defines the interface for job file data access
type Repository interface {
	// Create persists a new job file and sets its ID
	Create(ctx context.Context, jobFile *JobFile) error
	Get(ctx context.Context, id string) (*JobFile, error)
	List(ctx context.Context, filter *types.JobFileFilter) ([]*JobFile, error)
	Count(ctx context.Context, filter *types.JobFileFilter) (int, error)
	// GetByIdempotencyKey returns an ErrNotFound marked error when no file carries key
	GetByIdempotencyKey(ctx context.Context, key string) (*JobFile, error)
	// Update merges fields into the stored file
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}
