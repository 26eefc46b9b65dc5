package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	authProvider "github.com/yadgarautos/jobfiles/internal/auth"
	"github.com/yadgarautos/jobfiles/internal/cache"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/pdf"
	"github.com/yadgarautos/jobfiles/internal/pubsub"
	"github.com/yadgarautos/jobfiles/internal/pubsub/memory"
	"github.com/yadgarautos/jobfiles/internal/repository"
	"github.com/yadgarautos/jobfiles/internal/s3"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/validator"
)

const (
	TestAdminEmail    = "admin@yadgarautos.test"
	TestAdminPassword = "correct horse battery staple"
	TestBlobBaseURL   = "https://blobs.yadgarautos.test"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	DocumentStore *InMemoryDocumentStore
	CounterRepo   *InMemoryCounterStore
	JobFileRepo   jobfile.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	stores       Stores
	logger       *logger.Logger
	config       *config.Configuration
	cache        cache.Cache
	sentry       *sentry.Service
	blobs        *s3.MemoryService
	pubSub       pubsub.PubSub
	authProvider authProvider.Provider
	pdfGenerator pdf.Generator
	now          time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	// same json encoding of amounts as cmd/server
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret-for-unit-tests-only"
	cfg.Auth.Admin.Email = TestAdminEmail
	cfg.Sequence.PeekMaxElapsed = time.Second
	cfg.S3.PublicBaseURL = TestBlobBaseURL
	cfg.S3.MaxUploadSize = 1 << 20

	hash, err := authProvider.HashPassword(TestAdminPassword)
	if err != nil {
		s.T().Fatalf("failed to hash password: %v", err)
	}
	cfg.Auth.Admin.PasswordHash = hash

	s.config = cfg
	s.logger = logger.NewNoopLogger()
	s.sentry = sentry.NewSentryService(cfg, s.logger)
	s.pdfGenerator = pdf.NewGenerator(cfg)

	s.authProvider, err = authProvider.NewProvider(cfg)
	if err != nil {
		s.T().Fatalf("failed to create auth provider: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Now().UTC()
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.blobs = s3.NewMemoryService(TestBlobBaseURL)
	s.pubSub = memory.NewPubSub(s.logger)
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
	_ = s.pubSub.Close()
}

func (s *BaseServiceTestSuite) setupStores() {
	documents := NewInMemoryDocumentStore()
	s.stores = Stores{
		DocumentStore: documents,
		CounterRepo:   NewInMemoryCounterStore(),
		JobFileRepo:   repository.NewJobFileRepository(documents, s.config, s.logger, s.cache),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DocumentStore.Clear()
	s.stores.CounterRepo.Clear()
	s.cache.Flush(s.ctx)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetStores returns all in-memory stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetBlobs returns the blob store, which records every upload
func (s *BaseServiceTestSuite) GetBlobs() *s3.MemoryService {
	return s.blobs
}

func (s *BaseServiceTestSuite) GetPubSub() pubsub.PubSub {
	return s.pubSub
}

func (s *BaseServiceTestSuite) GetAuthProvider() authProvider.Provider {
	return s.authProvider
}

func (s *BaseServiceTestSuite) GetPDFGenerator() pdf.Generator {
	return s.pdfGenerator
}

// GetNow returns the time the current test started
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
