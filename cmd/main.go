package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"

	"dentalops/internal/caching"
	"dentalops/internal/handlers"
	"dentalops/internal/jobs"
	"dentalops/internal/middleware"
	"dentalops/internal/models"
	"dentalops/internal/repositories"
	"dentalops/internal/services"
	"dentalops/pkg/database"
)

const version = "1.0.0"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Warn().Msg("JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}
	jwksURL := os.Getenv("JWKS_URL")

	redisAddr := envOr("REDIS_ADDR", "localhost:6379")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := envOr("MINIO_ENDPOINT", "localhost:9000")
	minioAccessKey := envOr("MINIO_ACCESS_KEY", "minioadmin")
	minioSecretKey := envOr("MINIO_SECRET_KEY", "minioadmin")
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"
	archiveBucket := envOr("ARCHIVE_BUCKET", "dentalops-archive")

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	permissionRepo := repositories.NewPermissionRepo(pool)
	patientRepo := repositories.NewPatientRepo(pool)
	inventoryRepo := repositories.NewInventoryRepo(pool)
	prescriptionRepo := repositories.NewPrescriptionRepo(pool)
	appointmentRepo := repositories.NewAppointmentRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Infrastructure services
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	notificationSvc := services.NewNotificationService(redisAddr, redisPassword, redisDB)
	archiveSvc, err := services.NewArchiveService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL, archiveBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize archive storage")
	}

	// Domain services
	authSvc, err := services.NewAuthService(userRepo, roleRepo, jwtSecret, jwksURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth service")
	}
	capabilitySvc := services.NewCapabilityService(roleRepo, permissionRepo, cacheSvc)
	lifecycleSvc := services.NewTenantLifecycleService(pool, tenantRepo, notificationSvc, capabilitySvc)
	inventorySvc := services.NewInventoryService(pool, inventoryRepo, auditRepo, notificationSvc)
	prescriptionSvc := services.NewPrescriptionService(pool, prescriptionRepo, patientRepo, notificationSvc)
	patientSvc := services.NewPatientService(patientRepo)
	timelineSvc := services.NewTimelineService(patientRepo, appointmentRepo, prescriptionRepo, invoiceRepo)
	auditSvc := services.NewAuditService(auditRepo)

	// Middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	gateMw := middleware.NewTenantGateMiddleware(lifecycleSvc)
	capMw := middleware.NewCapabilityMiddleware(capabilitySvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, capabilitySvc)
	prescriptionHandlers := handlers.NewPrescriptionHandlers(prescriptionSvc)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc)
	patientHandlers := handlers.NewPatientHandlers(patientSvc)
	timelineHandlers := handlers.NewTimelineHandlers(timelineSvc)
	tenantHandlers := handlers.NewTenantHandlers(lifecycleSvc, authSvc)
	auditHandlers := handlers.NewAuditHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.POST("/auth/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(authMw.Authenticate())
	protected.GET("/me", authHandlers.Me)
	protected.GET("/me/capabilities", authHandlers.MyCapabilities)

	// Tenant-scoped clinical routes sit behind the lifecycle gate.
	clinic := protected.Group("")
	clinic.Use(gateMw.Gate())

	clinic.POST("/prescriptions", prescriptionHandlers.Create, capMw.Require(models.CapPrescriptionsCreate))
	clinic.GET("/prescriptions", prescriptionHandlers.List, capMw.Require(models.CapPrescriptionsRead))
	clinic.GET("/prescriptions/:id", prescriptionHandlers.Get, capMw.Require(models.CapPrescriptionsRead))
	clinic.POST("/prescriptions/:id/fulfill", prescriptionHandlers.Fulfill, capMw.Require(models.CapPrescriptionsFulfill))
	clinic.POST("/prescriptions/:id/cancel", prescriptionHandlers.Cancel, capMw.Require(models.CapPrescriptionsCancel))

	clinic.POST("/inventory", inventoryHandlers.Create, capMw.Require(models.CapInventoryManage))
	clinic.GET("/inventory", inventoryHandlers.List, capMw.Require(models.CapInventoryRead))
	clinic.GET("/inventory/low-stock", inventoryHandlers.LowStock, capMw.Require(models.CapInventoryRead))
	clinic.GET("/inventory/:id", inventoryHandlers.Get, capMw.Require(models.CapInventoryRead))
	clinic.POST("/inventory/:id/adjust", inventoryHandlers.Adjust, capMw.Require(models.CapInventoryManage))

	clinic.POST("/patients", patientHandlers.Create, capMw.Require(models.CapPatientsManage))
	clinic.GET("/patients", patientHandlers.List, capMw.Require(models.CapPatientsManage))
	clinic.GET("/patients/:id", patientHandlers.Get, capMw.Require(models.CapPatientsManage))
	// Patients read their own timeline without timeline:read; staff need it.
	clinic.GET("/patients/:id/timeline", timelineHandlers.GetTimeline, capMw.RequireForStaff(models.CapTimelineRead))

	// Platform routes: system-owner only, no tenant gate.
	platform := protected.Group("/tenants")
	platform.POST("", tenantHandlers.Create, capMw.Require(models.CapTenantsManage))
	platform.GET("", tenantHandlers.List, capMw.Require(models.CapTenantsManage))
	platform.GET("/:id", tenantHandlers.Get, capMw.Require(models.CapTenantsManage))
	platform.POST("/:id/kill-switch", tenantHandlers.KillSwitch, capMw.Require(models.CapTenantsManage))
	platform.POST("/:id/maintenance", tenantHandlers.EnableMaintenance, capMw.Require(models.CapTenantsManage))
	platform.POST("/:id/reactivate", tenantHandlers.Reactivate, capMw.Require(models.CapTenantsManage))
	platform.POST("/:id/users", tenantHandlers.CreateUser, capMw.Require(models.CapTenantsManage))
	platform.GET("/:id/audit", auditHandlers.List, capMw.Require(models.CapAuditRead))

	// Background jobs
	if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
		log.Warn().Err(err).Msg("archive bucket check failed, nightly exports may not run")
	}
	scheduler, err := jobs.NewJobScheduler(tenantRepo, inventoryRepo, auditSvc, archiveSvc, notificationSvc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize job scheduler")
	}
	scheduler.Start()
	defer scheduler.Stop()

	port := envOr("PORT", "8080")
	log.Info().Str("version", version).Str("port", port).Msg("dentalops server starting")
	if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
