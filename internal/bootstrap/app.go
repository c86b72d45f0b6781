package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/applications"
	"patta-backend/internal/audit"
	googleauth "patta-backend/internal/auth"
	"patta-backend/internal/chat"
	"patta-backend/internal/llm"
	"patta-backend/internal/llm/gemini"
	"patta-backend/internal/queue"
	"patta-backend/internal/shared/config"
	"patta-backend/internal/shared/server"
	"patta-backend/internal/shared/storage/db"
	"patta-backend/internal/shared/storage/object"
	localstore "patta-backend/internal/shared/storage/object/local"
	s3store "patta-backend/internal/shared/storage/object/s3"
	"patta-backend/internal/shared/telemetry"
	"patta-backend/internal/users"
)

// defaultSeedUsers are the password accounts created in dev-like environments
// so the portal is usable out of the box.
var defaultSeedUsers = []string{
	"citizen@test.com:123456:citizen",
	"staff@test.com:123456:staff",
	"admin@test.com:123456:admin",
}

// App holds shared dependencies.
type App struct {
	Config              config.Config
	Router              *gin.Engine
	DB                  *sql.DB
	Store               object.ObjectStore
	Queue               queue.Client
	ApplicationsRepo    applications.Repo
	UsersRepo           users.Repo
	AuditRepo           audit.Repo
	ApplicationsService *applications.Service
	UsersService        *users.Service
	AuditService        *audit.Service
	ChatService         *chat.Service
	ApplicationsHandler *applications.Handler
	UsersHandler        *users.Handler
	AuditHandler        *audit.Handler
	ChatHandler         *chat.Handler
	GoogleAuth          *googleauth.GoogleService
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

	telemetry.Setup(cfg.LogLevel, cfg.LogPretty)

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		ApplicationsHandler: app.ApplicationsHandler,
		UsersHandler:        app.UsersHandler,
		AuditHandler:        app.AuditHandler,
		ChatHandler:         app.ChatHandler,
		GoogleAuth:          app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db", map[string]any{"msg": "DATABASE_URL empty; using in-memory repositories"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db", map[string]any{"msg": "database connect failed; using in-memory repositories", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.AuditQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.AuditQueueURL)
}

func buildServices(ctx context.Context, app *App) error {
	var (
		appRepo   applications.Repo
		userRepo  users.Repo
		auditRepo audit.Repo
	)
	if app.DB != nil {
		appRepo = &applications.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		auditRepo = &audit.PGRepo{DB: app.DB}
	} else {
		if path := strings.TrimSpace(app.Config.RegistryFile); path != "" {
			fileRepo, err := applications.NewFileRepo(path)
			if err != nil {
				return fmt.Errorf("open registry file: %w", err)
			}
			appRepo = fileRepo
		} else {
			appRepo = applications.NewMemoryRepo()
		}
		userRepo = users.NewMemoryRepo()
		auditRepo = audit.NewMemoryRepo()
	}

	auditSvc := audit.NewService(auditRepo, app.Queue, nil)
	appSvc := applications.NewService(appRepo, app.Store, auditSvc, nil)
	userSvc := users.NewService(userRepo, auditSvc)

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "gemini" {
		geminiClient, err := gemini.NewClient(os.Getenv("GEMINI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = geminiClient
	}
	chatSvc := chat.NewService(appSvc, llmClient)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	if app.Config.SeedUsers {
		if err := users.SeedUsers(ctx, userRepo, defaultSeedUsers); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	app.ApplicationsRepo = appRepo
	app.UsersRepo = userRepo
	app.AuditRepo = auditRepo
	app.ApplicationsService = appSvc
	app.UsersService = userSvc
	app.AuditService = auditSvc
	app.ChatService = chatSvc
	app.ApplicationsHandler = &applications.Handler{Service: appSvc, Users: userSvc}
	app.UsersHandler = &users.Handler{Service: userSvc}
	app.AuditHandler = &audit.Handler{Service: auditSvc}
	app.ChatHandler = &chat.Handler{Service: chatSvc}
	app.GoogleAuth = googleAuthSvc

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
