package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/analytics"
	"jobflow-backend/internal/delivery"
	"jobflow-backend/internal/jobs"
	"jobflow-backend/internal/llm"
	openai "jobflow-backend/internal/llm/openai"
	"jobflow-backend/internal/matching"
	"jobflow-backend/internal/resumes"
	"jobflow-backend/internal/shared/config"
	"jobflow-backend/internal/shared/metrics"
	"jobflow-backend/internal/shared/server/middleware"
	"jobflow-backend/internal/shared/server/respond"
	"jobflow-backend/internal/shared/storage/db"
	"jobflow-backend/internal/shared/storage/object"
	localstore "jobflow-backend/internal/shared/storage/object/local"
	s3store "jobflow-backend/internal/shared/storage/object/s3"
)

// NewRouter constructs the Gin engine with middleware, dependencies and
// routes registered. A missing DATABASE_URL or failed connection falls back
// to in-memory repositories so local development works without Postgres.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Identity(),
	)

	store := buildStore(cfg)
	sqlDB := buildDB(cfg)

	var llmClient llm.Client
	if cfg.LLMConfigured() {
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			log.Printf("openai client init failed, continuing local-only: %v", err)
		} else {
			llmClient = client
		}
	}

	var resumeRepo resumes.Repo
	var jobRepo jobs.Repo
	var matchRepo matching.Repo
	var deliveryRepo delivery.Repo
	if sqlDB != nil {
		resumeRepo = &resumes.PGRepo{DB: sqlDB}
		jobRepo = &jobs.PGRepo{DB: sqlDB}
		matchRepo = &matching.PGRepo{DB: sqlDB}
		deliveryRepo = &delivery.PGRepo{DB: sqlDB}
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		matchRepo = matching.NewMemoryRepo()
		deliveryRepo = delivery.NewMemoryRepo()
	}

	resumeSvc := &resumes.Service{
		Repo:         resumeRepo,
		Store:        store,
		LLM:          llmClient,
		MaxSizeBytes: int64(cfg.ResumeMaxSizeMB) << 20,
		AllowedExts:  cfg.ResumeAllowedExts,
	}
	jobSvc := &jobs.Service{Repo: jobRepo, LLM: llmClient}
	matchSvc := &matching.Service{
		Repo:        matchRepo,
		Resumes:     resumeSvc,
		Jobs:        jobSvc,
		DefaultTopN: cfg.MatchDefaultTopN,
	}
	deliverySvc := &delivery.Service{
		Repo:    deliveryRepo,
		Resumes: resumeSvc,
		Jobs:    jobSvc,
	}
	analyticsSvc := &analytics.Service{
		Logs:     deliveryRepo,
		PageSize: cfg.DeliveryLogPageSize,
	}

	resumeHandler := resumes.NewHandler(resumeSvc)
	jobHandler := jobs.NewHandler(jobSvc)
	matchHandler := matching.NewHandler(matchSvc)
	deliveryHandler := delivery.NewHandler(deliverySvc)
	analyticsHandler := analytics.NewHandler(analyticsSvc)

	status := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"ok":             true,
			"env":            cfg.Env,
			"llm_configured": llmClient != nil,
			"database":       sqlDB != nil,
		})
	}
	r.GET("/", status)
	r.GET("/healthz", status)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	resumeHandler.RegisterRoutes(api)
	jobHandler.RegisterRoutes(api)
	matchHandler.RegisterRoutes(api)
	deliveryHandler.RegisterRoutes(api)
	analyticsHandler.RegisterRoutes(api)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	resumeHandler.RegisterAdminRoutes(admin)
	jobHandler.RegisterAdminRoutes(admin)

	return r
}

func buildDB(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL empty; using in-memory repositories")
		return nil
	}

	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		sqlDB.Close()
		return nil
	}
	return sqlDB
}

func buildStore(cfg config.Config) object.ObjectStore {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("s3 store init failed, falling back to local: %v", err)
			return localstore.New(cfg.LocalStoreDir)
		}
		return store
	default:
		return localstore.New(cfg.LocalStoreDir)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
