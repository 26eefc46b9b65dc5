package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	_ "github.com/yadgarautos/jobfiles/docs/swagger"
	"github.com/yadgarautos/jobfiles/internal/api"
	v1 "github.com/yadgarautos/jobfiles/internal/api/v1"
	"github.com/yadgarautos/jobfiles/internal/auth"
	"github.com/yadgarautos/jobfiles/internal/cache"
	"github.com/yadgarautos/jobfiles/internal/config"
	domainAuth "github.com/yadgarautos/jobfiles/internal/domain/auth"
	"github.com/yadgarautos/jobfiles/internal/dynamodb"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/pdf"
	"github.com/yadgarautos/jobfiles/internal/postgres"
	"github.com/yadgarautos/jobfiles/internal/pubsub"
	"github.com/yadgarautos/jobfiles/internal/pubsub/memory"
	"github.com/yadgarautos/jobfiles/internal/pyroscope"
	"github.com/yadgarautos/jobfiles/internal/repository"
	"github.com/yadgarautos/jobfiles/internal/s3"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/service"
	"github.com/yadgarautos/jobfiles/internal/types"
	"github.com/yadgarautos/jobfiles/internal/validator"
	"go.uber.org/fx"
)

// @title Yadgar Autos Job Files API
// @version 1.0
// @description Job files, invoice numbering and billing for the workshop
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the token in the format **Bearer &lt;token&gt;**

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
	// stored bills and responses carry amounts as json numbers
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	var opts []fx.Option

	// Monitoring
	opts = append(opts,
		sentry.Module(),
		pyroscope.Module(),
	)

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Storage backends, only the configured one is constructed
			providePostgres,
			dynamodb.NewClient,

			// Repositories
			repository.NewDocumentStore,
			repository.NewCounterRepository,
			repository.NewJobFileRepository,

			// Collaborators
			s3.NewService,
			pdf.NewGenerator,
			auth.NewProvider,
			providePubSub,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewSequenceService,
			service.NewBillingService,
			service.NewJobFileService,
			service.NewAuthService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			watchSessions,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePostgres(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	if cfg.Storage.Backend != types.StoreBackendPostgres {
		return nil, nil
	}

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
	return db, nil
}

func providePubSub(lc fx.Lifecycle, log *logger.Logger) pubsub.PubSub {
	ps := memory.NewPubSub(log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
		},
	})
	return ps
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	authService service.AuthService,
	billingService service.BillingService,
	sequenceService service.SequenceService,
	jobFileService service.JobFileService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(cfg, logger),
		Auth:     v1.NewAuthHandler(authService, logger),
		Billing:  v1.NewBillingHandler(billingService, logger),
		Sequence: v1.NewSequenceHandler(sequenceService, logger),
		JobFile:  v1.NewJobFileHandler(jobFileService, logger),
	}
}

func provideRouter(
	handlers api.Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentrySvc *sentry.Service,
	profiler *pyroscope.Service,
	authService service.AuthService,
) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, sentrySvc, profiler, authService)
}

// watchSessions writes an audit line for every sign in and sign out
func watchSessions(lc fx.Lifecycle, authService service.AuthService, log *logger.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return authService.OnSessionChange(ctx, func(change domainAuth.SessionChange) {
				log.Infow("session changed",
					"event", change.Event,
					"user_id", change.UserID,
					"email", change.Email,
					"at", change.At)
			})
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
