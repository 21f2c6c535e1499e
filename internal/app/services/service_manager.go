package services

import (
	"context"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/app/config"
	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/internal/infrastructure/auth/password"
	"github.com/buildtrack/buildtrack/internal/infrastructure/auth/supabase"
	"github.com/buildtrack/buildtrack/internal/infrastructure/auth/token"
	"github.com/buildtrack/buildtrack/internal/infrastructure/cache"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/repositories/postgresql"
	"github.com/buildtrack/buildtrack/internal/infrastructure/storage/local"
	"github.com/buildtrack/buildtrack/internal/infrastructure/storage/s3"
	supabasestorage "github.com/buildtrack/buildtrack/internal/infrastructure/storage/supabase"
	"github.com/buildtrack/buildtrack/pkg/logger"
)

// FilesPath is where the API serves the signed URLs of the local storage backend.
const FilesPath = "/api/v1/files"

// ServiceManager manages all application services
type ServiceManager struct {
	Config *config.Config
	Logger *logger.Logger

	// Infrastructure
	DB           *database.DB
	Repositories *postgresql.Repositories
	CacheService services.CacheService
	Storage      services.StorageService

	// Domain services
	Recorder          *services.Recorder
	Access            *services.AccessResolver
	AuthService       *services.AuthService
	UserService       *services.UserService
	PropertyService   *services.PropertyService
	MilestoneService  *services.MilestoneService
	VendorService     *services.VendorService
	BudgetService     *services.BudgetService
	RFQService        *services.RFQService
	PermitService     *services.PermitService
	RiskService       *services.RiskService
	DiscussionService *services.DiscussionService
	ActivityService   *services.ActivityService
	DocumentService   *services.DocumentService
}

// Option replaces one external collaborator, mainly for tests.
type Option func(*overrides)

type overrides struct {
	cache        services.CacheService
	storage      services.StorageService
	idp          services.IdentityProvider
	permitLookup services.PermitLookupClient
}

func WithCache(c services.CacheService) Option {
	return func(o *overrides) { o.cache = c }
}

func WithStorage(s services.StorageService) Option {
	return func(o *overrides) { o.storage = s }
}

func WithIdentityProvider(idp services.IdentityProvider) Option {
	return func(o *overrides) { o.idp = idp }
}

func WithPermitLookup(l services.PermitLookupClient) Option {
	return func(o *overrides) { o.permitLookup = l }
}

// NewServiceManager creates a new service manager
func NewServiceManager(cfg *config.Config, db *database.DB, log *logger.Logger, opts ...Option) (*ServiceManager, error) {
	var o overrides
	for _, opt := range opts {
		opt(&o)
	}

	// Initialize repositories
	repos := postgresql.NewRepositories(db)

	cacheService := o.cache
	if cacheService == nil {
		var err error
		if cacheService, err = newCache(cfg, log); err != nil {
			return nil, err
		}
	}

	storage := o.storage
	if storage == nil {
		var err error
		if storage, err = newStorage(cfg); err != nil {
			return nil, err
		}
	}

	idp := o.idp
	if idp == nil {
		var err error
		if idp, err = supabase.NewAuthService(supabase.Config{URL: cfg.Supabase.URL, APIKey: cfg.Supabase.APIKey}); err != nil {
			return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
		}
	}

	permitLookup := o.permitLookup
	if permitLookup == nil {
		aiConfig := services.ClaudeServiceConfig{
			BaseURL:        cfg.AI.BaseURL,
			Model:          cfg.AI.Model,
			MaxTokens:      cfg.AI.MaxTokens,
			Temperature:    cfg.AI.Temperature,
			TimeoutSeconds: cfg.AI.TimeoutSeconds,
		}
		if cfg.AI.Enabled {
			aiConfig.APIKey = cfg.AI.APIKey
		}
		permitLookup = services.NewClaudeService(aiConfig, log.With("component", "permit_lookup"))
	}

	recorder := services.NewRecorder(repos.ActivityRepo, repos.AuditRepo, log.With("component", "recorder"))
	access := services.NewAccessResolver(repos.PropertyRepo, repos.MemberRepo, repos.ShareRepo)

	sm := &ServiceManager{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Repositories: repos,
		CacheService: cacheService,
		Storage:      storage,
		Recorder:     recorder,
		Access:       access,
	}

	sm.AuthService = services.NewAuthService(
		repos.UserRepo,
		idp,
		token.New(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL),
		cacheService,
		recorder,
		log.With("component", "auth"),
		services.AuthServiceConfig{SessionTTL: cfg.JWT.SessionTTL},
	)
	sm.UserService = services.NewUserService(repos.UserRepo, recorder)
	sm.PropertyService = services.NewPropertyService(repos.PropertyRepo, repos.MemberRepo, repos.UserRepo, access, recorder)
	sm.MilestoneService = services.NewMilestoneService(repos.MilestoneRepo, repos.PropertyRepo, access, recorder)
	sm.VendorService = services.NewVendorService(repos.VendorRepo, recorder)
	sm.BudgetService = services.NewBudgetService(repos.BudgetRepo, repos.MilestoneRepo, repos.VendorRepo, repos.PropertyRepo, access, recorder)
	sm.RFQService = services.NewRFQService(repos.RFQRepo, repos.BidRepo, repos.VendorRepo, repos.PropertyRepo, access, recorder)
	sm.PermitService = services.NewPermitService(repos.PermitRepo, permitLookup, repos.PropertyRepo, access, recorder)
	sm.RiskService = services.NewRiskService(repos.RiskRepo, repos.PropertyRepo, access, recorder)
	sm.DiscussionService = services.NewDiscussionService(repos.DiscussionRepo, repos.PropertyRepo, access, recorder)
	sm.ActivityService = services.NewActivityService(repos.ActivityRepo, repos.AuditRepo, repos.PropertyRepo, access)
	sm.DocumentService = services.NewDocumentService(services.DocumentServiceDeps{
		DocumentRepo: repos.DocumentRepo,
		CommentRepo:  repos.DocumentCommentRepo,
		ShareRepo:    repos.ShareRepo,
		UserRepo:     repos.UserRepo,
		PropertyRepo: repos.PropertyRepo,
		Access:       access,
		Storage:      storage,
		Hasher:       password.NewDefault(),
		Recorder:     recorder,
		Logger:       log.With("component", "documents"),
	}, services.DocumentServiceConfig{
		MaxFileSize:      cfg.Limits.MaxFileSize,
		AllowedMimeTypes: cfg.Limits.AllowedMimeTypes,
		RequireReview:    cfg.Documents.RequireReview,
		PresignExpiry:    cfg.Documents.PresignExpiry,
		SearchBatch:      cfg.Documents.SearchBatch,
	})

	return sm, nil
}

// newCache connects to Redis. Outside production an unreachable Redis
// falls back to the in-process cache.
func newCache(cfg *config.Config, log *logger.Logger) (services.CacheService, error) {
	cacheService, err := cache.CreateCacheService(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache service: %w", err)
	}
	if err := cacheService.Ping(context.Background()); err != nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("redis is unreachable: %w", err)
		}
		log.Warn("Redis unreachable, using in-memory cache", "error", err)
		_ = cacheService.Close()
		return cache.NewMemoryCache(), nil
	}
	return cacheService, nil
}

// newStorage selects the object storage backend named by STORAGE_TYPE.
func newStorage(cfg *config.Config) (services.StorageService, error) {
	switch cfg.Storage.Type {
	case "s3":
		store, err := s3.NewStorageService(s3.Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			Region:    cfg.Storage.S3Region,
			Bucket:    cfg.Storage.S3Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		return store, nil
	case "supabase":
		store, err := supabasestorage.NewStorageService(supabasestorage.Config{
			URL:    cfg.Supabase.URL,
			APIKey: cfg.Supabase.APIKey,
			Bucket: cfg.Supabase.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize supabase storage: %w", err)
		}
		return store, nil
	default:
		return local.NewStorageService(cfg.Storage.Path, cfg.Server.PublicURL+FilesPath, cfg.Storage.SigningKey), nil
	}
}

// HealthCheck checks the database and the cache
func (sm *ServiceManager) HealthCheck(ctx context.Context) error {
	if err := sm.Repositories.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if err := sm.CacheService.Ping(ctx); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// Close gracefully shuts down all services
func (sm *ServiceManager) Close() error {
	if err := sm.CacheService.Close(); err != nil {
		return fmt.Errorf("failed to close cache service: %w", err)
	}

	if err := sm.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
