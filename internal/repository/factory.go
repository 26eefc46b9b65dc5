package repository

import (
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/document"
	"github.com/yadgarautos/jobfiles/internal/domain/sequence"
	"github.com/yadgarautos/jobfiles/internal/dynamodb"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/postgres"
	dynamodbRepo "github.com/yadgarautos/jobfiles/internal/repository/dynamodb"
	postgresRepo "github.com/yadgarautos/jobfiles/internal/repository/postgres"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/types"
	"go.uber.org/fx"
)

// RepositoryParams holds whichever backend clients were constructed.
// Only the one selected by storage.backend is non nil.
type RepositoryParams struct {
	fx.In

	Config *config.Configuration
	Logger *logger.Logger
	Sentry *sentry.Service
	DB     *postgres.DB     `optional:"true"`
	Dynamo *dynamodb.Client `optional:"true"`
}

func NewDocumentStore(p RepositoryParams) (document.Store, error) {
	switch p.Config.Storage.Backend {
	case types.StoreBackendPostgres:
		if p.DB == nil {
			return nil, missingBackend(p.Config.Storage.Backend)
		}
		return postgresRepo.NewDocumentStore(p.DB, p.Logger, p.Sentry), nil
	case types.StoreBackendDynamoDB:
		if p.Dynamo == nil {
			return nil, missingBackend(p.Config.Storage.Backend)
		}
		return dynamodbRepo.NewDocumentStore(p.Dynamo, p.Logger, p.Sentry), nil
	}
	return nil, unknownBackend(p.Config.Storage.Backend)
}

func NewCounterRepository(p RepositoryParams) (sequence.Repository, error) {
	switch p.Config.Storage.Backend {
	case types.StoreBackendPostgres:
		if p.DB == nil {
			return nil, missingBackend(p.Config.Storage.Backend)
		}
		return postgresRepo.NewCounterRepository(p.DB, p.Logger, p.Sentry), nil
	case types.StoreBackendDynamoDB:
		if p.Dynamo == nil {
			return nil, missingBackend(p.Config.Storage.Backend)
		}
		return dynamodbRepo.NewCounterRepository(p.Dynamo, p.Logger, p.Sentry), nil
	}
	return nil, unknownBackend(p.Config.Storage.Backend)
}

func missingBackend(backend types.StoreBackend) error {
	return ierr.NewErrorf("%s client was not constructed", backend).
		WithHint("Check the storage configuration").
		Mark(ierr.ErrSystem)
}

func unknownBackend(backend types.StoreBackend) error {
	return ierr.NewErrorf("unknown storage backend %q", backend).
		WithHint("storage.backend must be postgres or dynamodb").
		Mark(ierr.ErrValidation)
}
