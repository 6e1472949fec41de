package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/analyses"
	googleauth "triage-backend/internal/auth"
	"triage-backend/internal/cache"
	"triage-backend/internal/doctors"
	"triage-backend/internal/inference"
	"triage-backend/internal/intake"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/server"
	"triage-backend/internal/shared/storage/db"
	"triage-backend/internal/shared/storage/object"
	localstore "triage-backend/internal/shared/storage/object/local"
	s3store "triage-backend/internal/shared/storage/object/s3"
	"triage-backend/internal/users"
)

// App holds the wired application graph.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	RoleStore cache.RoleStore
	IdemStore cache.IdempotencyStore
	Inference inference.Client

	UsersRepo    users.Repo
	DoctorsRepo  doctors.Repo
	AnalysesRepo analyses.Repo

	UsersService    *users.Service
	DoctorsService  *doctors.Service
	AnalysesService *analyses.Service
	IntakeService   *intake.Service

	UsersHandler    *users.Handler
	IntakeHandler   *intake.Handler
	AnalysisHandler *analyses.Handler
	DoctorHandler   *doctors.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	roleStore, idemStore, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	client, err := buildInference(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		RoleStore: roleStore,
		IdemStore: idemStore,
		Inference: client,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Store:           app.Store,
		GoogleAuth:      app.GoogleAuth,
		UserHandler:     app.UsersHandler,
		IntakeHandler:   app.IntakeHandler,
		AnalysisHandler: app.AnalysisHandler,
		DoctorHandler:   app.DoctorHandler,
		DoctorGuard:     doctors.Guard(app.DoctorsService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultServerOptions())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("build s3 store: %w", err)
		}
		return store, nil
	case "local":
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown OBJECT_STORE_TYPE %q", cfg.ObjectStoreType)
	}
}

func buildCache(cfg config.Config) (cache.RoleStore, cache.IdempotencyStore, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		mem := cache.NewMemoryStore()
		return mem, mem, nil
	}
	store, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return store, store, nil
}

func buildInference(cfg config.Config) (inference.Client, error) {
	url := strings.TrimSpace(cfg.InferenceURL)
	if url == "" {
		if !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("INFERENCE_URL is required")
		}
		log.Printf("bootstrap: INFERENCE_URL empty; submissions will fail until configured")
		url = "http://localhost:9000"
	}
	client, err := inference.NewHTTPClient(url, cfg.InferenceAPIKey, cfg.InferenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("inference client: %w", err)
	}
	return client, nil
}

func buildServices(app *App) {
	cfg := app.Config

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.DoctorsRepo = &doctors.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.DoctorsRepo = doctors.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.DoctorsService = doctors.NewService(app.DoctorsRepo, app.RoleStore)
	app.AnalysesService = analyses.NewService(app.AnalysesRepo, app.IdemStore, app.DoctorsService)
	app.IntakeService = intake.NewService(intake.NewDraftStore(), app.Store, app.Inference)

	app.UsersHandler = users.NewHandler(app.UsersService, app.DoctorsService.ResolveRole)
	app.IntakeHandler = intake.NewHandler(app.IntakeService)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.DoctorHandler = doctors.NewHandler(app.DoctorsService)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID, cfg.GoogleClientSec, cfg.GoogleRedirect, cfg.UIRedirectURL,
		app.UsersService, app.RoleStore)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test", "":
		return true
	}
	return false
}
