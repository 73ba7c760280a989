package routes

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
	"itad-system/internal/repositories"
	"itad-system/internal/services"
	"itad-system/pkg/config"
	"itad-system/pkg/filestorage"
	"itad-system/pkg/middleware"
	"itad-system/pkg/service"
)

type Loggers struct {
	Main  *zap.Logger
	Auth  *zap.Logger
	Asset *zap.Logger
	Audit *zap.Logger
}

// NewLoggers derives the named loggers from the root one.
func NewLoggers(root *zap.Logger) *Loggers {
	return &Loggers{
		Main:  root,
		Auth:  root.Named("auth"),
		Asset: root.Named("asset"),
		Audit: root.Named("audit"),
	}
}

// Services is everything the HTTP layer calls into.
type Services struct {
	Users        services.UserAccountServiceInterface
	Assets       services.AssetServiceInterface
	Sanitization services.SanitizationServiceInterface
	Disposal     services.DisposalServiceInterface
	Images       services.AssetImageServiceInterface
	Intake       services.IntakeServiceInterface
	WorkOrders   services.WorkOrderServiceInterface
	Orgs         services.OrganizationServiceInterface
	Reports      services.ReportServiceInterface
	Dashboard    services.DashboardServiceInterface
}

// BuildServices wires repositories and services over the pool and the Redis client.
func BuildServices(dbConn *pgxpool.Pool, redisClient *redis.Client, fileStorage filestorage.FileStorageInterface, loggers *Loggers, cfg *config.Config) *Services {
	txManager := repositories.NewTxManager(dbConn)

	// --- 1. repositories ---
	userRepo := repositories.NewUserAccountRepository(dbConn, loggers.Auth)
	orgRepo := repositories.NewOrganizationRepository(dbConn, loggers.Main)
	assetRepo := repositories.NewAssetRepository(dbConn, loggers.Asset)
	auditRepo := repositories.NewAuditRepository(dbConn, loggers.Audit)
	intakeRepo := repositories.NewIntakeRepository(dbConn, loggers.Main)
	woRepo := repositories.NewWorkOrderRepository(dbConn, loggers.Main)
	sanRepo := repositories.NewSanitizationRepository(dbConn, loggers.Asset)
	salesRepo := repositories.NewSalesRepository(dbConn, loggers.Asset)
	documentRepo := repositories.NewDocumentRepository(dbConn, loggers.Main)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. services ---
	idempotency := services.NewIdempotencyService(cacheRepo, cfg.Idempotency.TTL, loggers.Main)

	return &Services{
		Users:        services.NewUserAccountService(userRepo, loggers.Auth),
		Assets:       services.NewAssetService(txManager, assetRepo, auditRepo, orgRepo, woRepo, sanRepo, loggers.Asset),
		Sanitization: services.NewSanitizationService(txManager, assetRepo, auditRepo, sanRepo, idempotency, loggers.Asset),
		Disposal:     services.NewDisposalService(txManager, assetRepo, auditRepo, orgRepo, salesRepo, idempotency, loggers.Asset),
		Images:       services.NewAssetImageService(txManager, assetRepo, documentRepo, fileStorage, cfg.Upload.MaxSizeMB, loggers.Asset),
		Intake:       services.NewIntakeService(txManager, intakeRepo, orgRepo, loggers.Main),
		WorkOrders:   services.NewWorkOrderService(txManager, woRepo, assetRepo, auditRepo, loggers.Main),
		Orgs:         services.NewOrganizationService(txManager, orgRepo, assetRepo, loggers.Main),
		Reports:      services.NewReportService(assetRepo, auditRepo, woRepo, sanRepo, loggers.Main),
		Dashboard:    services.NewDashboardService(assetRepo, woRepo, loggers.Main),
	}
}

// HealthChecks probes PostgreSQL and Redis.
func HealthChecks(dbConn *pgxpool.Pool, redisClient *redis.Client) map[string]controllers.HealthCheck {
	return map[string]controllers.HealthCheck{
		"database": dbConn.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
}

func InitRouter(e *echo.Echo, svc *Services, jwtSvc service.JWTService, checks map[string]controllers.HealthCheck, loggers *Loggers, requestTimeout time.Duration) {
	loggers.Main.Info("InitRouter: registering routes")

	e.GET("/health", controllers.NewHealthController(checks, loggers.Main).Health)

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, svc.Users, loggers.Auth)
	secureGroup := api.Group("", middleware.RequestTimeout(requestTimeout), authMW.Auth)

	runAssetRouter(secureGroup, svc, loggers.Asset)
	runIntakeRouter(secureGroup, svc.Intake, loggers.Main)
	runWorkOrderRouter(secureGroup, svc.WorkOrders, loggers.Main)
	runOrganizationRouter(secureGroup, svc.Orgs, loggers.Main)
	runReportRouter(secureGroup, svc.Reports, loggers.Main)
	runDashboardRouter(secureGroup, svc.Dashboard, svc.Users, loggers.Main)

	loggers.Main.Info("InitRouter: routes registered")
}
