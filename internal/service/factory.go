package service

import (
	authProvider "github.com/yadgarautos/jobfiles/internal/auth"
	"github.com/yadgarautos/jobfiles/internal/cache"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	"github.com/yadgarautos/jobfiles/internal/domain/sequence"
	"github.com/yadgarautos/jobfiles/internal/idempotency"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/pdf"
	"github.com/yadgarautos/jobfiles/internal/pubsub"
	"github.com/yadgarautos/jobfiles/internal/s3"
	"github.com/yadgarautos/jobfiles/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Sentry *sentry.Service
	Cache  cache.Cache

	// Repositories
	JobFileRepo jobfile.Repository
	CounterRepo sequence.Repository

	// Collaborators
	S3           s3.Service
	PDFGenerator pdf.Generator
	PubSub       pubsub.PubSub
	AuthProvider authProvider.Provider
	Idempotency  *idempotency.Generator
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	sentry *sentry.Service,
	cache cache.Cache,
	jobFileRepo jobfile.Repository,
	counterRepo sequence.Repository,
	s3Service s3.Service,
	pdfGenerator pdf.Generator,
	pubSub pubsub.PubSub,
	provider authProvider.Provider,
) ServiceParams {
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		Sentry:       sentry,
		Cache:        cache,
		JobFileRepo:  jobFileRepo,
		CounterRepo:  counterRepo,
		S3:           s3Service,
		PDFGenerator: pdfGenerator,
		PubSub:       pubSub,
		AuthProvider: provider,
		Idempotency:  idempotency.NewGenerator(),
	}
}
