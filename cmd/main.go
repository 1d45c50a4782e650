package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"

	"vetdesk/internal/caching"
	"vetdesk/internal/config"
	"vetdesk/internal/handlers"
	"vetdesk/internal/jobs/background"
	"vetdesk/internal/middleware"
	"vetdesk/internal/models"
	"vetdesk/internal/repositories"
	"vetdesk/internal/services"
	"vetdesk/pkg/database"
	"vetdesk/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = random.String(32)
		log.Warn().Msg("JWT_SECRET not set; using a generated secret, sessions will not survive restarts")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	keyStore, err := services.NewMinioKeyStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioKeyBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize key store")
	}
	if err := keyStore.EnsureBucketExists(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure key bucket exists")
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	clinicRepo := repositories.NewClinicRepo(pool)
	staffRepo := repositories.NewStaffRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	permissionRepo := repositories.NewPermissionRepo(pool)
	rolePermissionRepo := repositories.NewRolePermissionRepo(pool)
	userRoleRepo := repositories.NewUserRoleRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Services
	hasher := services.NewBcryptHasher()
	lookupSvc := services.NewLookupService(userRepo, clinicRepo, staffRepo)
	authzSvc := services.NewAuthzService(userRoleRepo, rolePermissionRepo, permissionRepo, cacheSvc)
	uniquenessSvc := services.NewUniquenessService(userRepo, staffRepo)
	credentialSvc := services.NewCredentialService(keyStore)
	auditSvc := services.NewAuditLogsService(auditLogsRepo)
	rbacSvc := services.NewRBACService(lookupSvc, authzSvc, roleRepo, permissionRepo, rolePermissionRepo, userRoleRepo, auditSvc)
	staffSvc := services.NewStaffService(lookupSvc, authzSvc, uniquenessSvc, credentialSvc, hasher, staffRepo, roleRepo, auditSvc)
	authSvc := services.NewAuthService(userRepo, staffRepo, hasher, cacheSvc, cfg.JWTSecret,
		time.Duration(cfg.TokenTTLSeconds)*time.Second, time.Duration(cfg.RefreshTTLHours)*time.Hour)

	// No staff can authenticate against an empty catalog.
	if err := rbacSvc.EnsureSeedData(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles and permissions")
	}

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	staffHandlers := handlers.NewStaffHandlers(staffSvc, authSvc)
	clinicHandlers := handlers.NewClinicHandlers(clinicRepo)
	rbacHandlers := handlers.NewRBACHandlers(rbacSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, keyStore)

	rbac := middleware.NewRBACMiddleware(authzSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log.Logger)
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())

	// Public routes
	e.GET("/healthz", healthHandlers.HealthCheck)
	e.GET("/livez", healthHandlers.LivenessCheck)
	e.POST("/auth/login", authHandlers.Login)
	e.POST("/auth/refresh", authHandlers.Refresh)
	e.POST("/auth/logout", authHandlers.Logout)

	// Authenticated routes
	api := e.Group("", echojwt.WithConfig(middleware.JWTConfig(cfg.JWTSecret)), middleware.ResolveStaffContext())
	api.POST("/clinics", clinicHandlers.CreateClinic, rbac.RequirePermission(models.PermissionManageStaff))
	api.GET("/clinics/:clinicID", clinicHandlers.GetClinic)
	api.POST("/clinics/:clinicID/staff", staffHandlers.CreateStaff)
	api.GET("/clinics/:clinicID/staff", staffHandlers.ListStaff)
	api.GET("/clinics/:clinicID/audit-logs", auditHandlers.ListAuditLogs, rbac.RequirePermission(models.PermissionViewAudit))
	api.GET("/staff/:id", staffHandlers.GetStaff)
	api.PUT("/staff/:id", staffHandlers.UpdateStaff)
	api.POST("/staff/:id/activate", staffHandlers.ActivateStaff)
	api.POST("/staff/:id/deactivate", staffHandlers.DeactivateStaff)
	api.GET("/roles", rbacHandlers.ListRoles, rbac.RequirePermission(models.PermissionListStaff))
	api.GET("/permissions", rbacHandlers.ListPermissions, rbac.RequirePermission(models.PermissionManageStaff))
	api.GET("/staff/:id/roles", rbacHandlers.ListStaffRoles)
	api.POST("/staff/:id/roles", rbacHandlers.AssignRole)
	api.DELETE("/staff/:id/roles/:role", rbacHandlers.RevokeRole)

	scheduler, err := background.NewJobScheduler(auditSvc, authSvc, time.Duration(cfg.AuditRetentionDays)*24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
