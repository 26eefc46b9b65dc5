package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	v1 "github.com/yadgarautos/jobfiles/internal/api/v1"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/pyroscope"
	"github.com/yadgarautos/jobfiles/internal/rest/middleware"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/service"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Auth     *v1.AuthHandler
	Billing  *v1.BillingHandler
	Sequence *v1.SequenceHandler
	JobFile  *v1.JobFileHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentrySvc *sentry.Service,
	profiler *pyroscope.Service,
	authService service.AuthService,
) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(profiler),
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(logger, sentrySvc),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Router := router.Group("/v1")

	public := v1Router.Group("/")
	public.Use(middleware.GuestAuthenticateMiddleware)
	{
		public.GET("/health", handlers.Health.Health)
		public.POST("/auth/login",
			middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(cfg.Auth.LoginRateLimit)),
			handlers.Auth.Login)
	}

	private := v1Router.Group("/")
	private.Use(middleware.AuthenticateMiddleware(authService, logger), middleware.SentryScopeMiddleware)

	auth := private.Group("/auth")
	{
		auth.POST("/logout", handlers.Auth.Logout)
	}

	billing := private.Group("/billing")
	{
		billing.POST("/preview", handlers.Billing.Preview)
		billing.GET("/words", handlers.Billing.AmountInWords)
	}

	sequence := private.Group("/sequence")
	{
		sequence.GET("", handlers.Sequence.Get)
		sequence.POST("/commit", handlers.Sequence.Commit)
		sequence.POST("/init", handlers.Sequence.Init)
	}

	jobFiles := private.Group("/jobfiles")
	{
		jobFiles.POST("", handlers.JobFile.Create)
		jobFiles.GET("", handlers.JobFile.List)
		jobFiles.GET("/export", handlers.JobFile.Export)
		jobFiles.GET("/:id", handlers.JobFile.Get)
		jobFiles.PUT("/:id", handlers.JobFile.Update)
		jobFiles.DELETE("/:id", handlers.JobFile.Delete)
		jobFiles.POST("/:id/paid", handlers.JobFile.MarkPaid)
		jobFiles.GET("/:id/invoice.pdf", handlers.JobFile.GetInvoicePDF)
		jobFiles.POST("/:id/invoice", handlers.JobFile.UploadInvoice)
	}

	return router
}
