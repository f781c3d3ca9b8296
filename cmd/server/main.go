// Package main runs the user center HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-platform/usercenter/config"
	"github.com/aura-platform/usercenter/internal/access"
	"github.com/aura-platform/usercenter/internal/auth"
	"github.com/aura-platform/usercenter/internal/ephemeral"
	"github.com/aura-platform/usercenter/internal/identity"
	"github.com/aura-platform/usercenter/internal/middleware"
	"github.com/aura-platform/usercenter/internal/tenants"
	"github.com/aura-platform/usercenter/internal/worker"
	"github.com/aura-platform/usercenter/pkg/database"
	"github.com/aura-platform/usercenter/pkg/queue"
	"github.com/aura-platform/usercenter/pkg/redis"
	"github.com/aura-platform/usercenter/pkg/response"
	"github.com/aura-platform/usercenter/pkg/utils"
)

func main() {
	level := zap.NewAtomicLevel()
	logger := newLogger(level)
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logger.Warn("invalid LOG_LEVEL, using info", zap.String("level", cfg.LogLevel))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:       int32(cfg.Database.MaxConns),
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := ephemeral.NewMetrics(registry)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// Ephemeral store: Redis first, in-process map as fallback.
	memStore := ephemeral.NewMemory(logger)
	backends := []ephemeral.Backend{{Name: "memory", Store: memStore}}
	var jobQueue *queue.Queue
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, ephemeral data kept in memory only", zap.Error(err))
		} else {
			defer rdb.Close()
			redisStore := ephemeral.NewRedis(rdb.Client, cfg.Redis.KeyPrefix, cfg.Redis.Timeout)
			backends = append([]ephemeral.Backend{{Name: "redis", Store: redisStore}}, backends...)
			jobQueue = queue.NewQueue(rdb.Client, cfg.Redis.KeyPrefix, logger)
		}
	}
	store := ephemeral.NewResilient(logger, storeMetrics, backends...)
	codes := ephemeral.NewVerificationCodes(store, cfg.OTP.FixedCode)
	blacklist := ephemeral.NewBlacklist(store)

	tx := database.NewTxManager(pool)
	encoder := utils.NewBcryptEncoder(cfg.Password.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.Issuer)

	// Codes go out through the delivery queue when Redis is up, inline otherwise.
	gateway := identity.NewLogCodeSender(logger)
	var codeSender identity.CodeSender = gateway
	var deliveryProcessor *worker.DeliveryProcessor
	if jobQueue != nil {
		codeSender = worker.NewQueuedSender(jobQueue, gateway, logger)
		deliveryProcessor = worker.NewDeliveryProcessor(jobQueue, gateway, logger)
	}

	// Identity
	membershipRepo := identity.NewMembershipRepository(pool)
	orgUnitRepo := tenants.NewOrgUnitRepository(pool)
	persons := identity.NewPersonRegistry(identity.NewPersonRepository(pool), logger)
	identitySvc := identity.NewService(identity.NewUserRepository(pool), identity.NewIdentityRepository(pool),
		membershipRepo, orgUnitRepo, persons, tx, encoder, logger)
	identityHandler := identity.NewHandler(identitySvc, codes, codeSender,
		identity.OTPOptions{Length: cfg.OTP.Length, TTL: cfg.OTP.TTL}, logger)

	// Auth
	authSvc := auth.NewService(identitySvc, encoder, jwtService, blacklist, logger)
	authHandler := auth.NewHandler(authSvc, logger)

	// Access (RBAC)
	accessHandler := access.NewHandler(access.NewService(access.NewRepository(pool), tx, logger))

	// Tenants, organizations, platform
	tenantRepo := tenants.NewRepository(pool)
	tenantSvc := tenants.NewService(tenantRepo, orgUnitRepo, membershipRepo, tx, logger)
	orgSvc := tenants.NewOrganizationService(orgUnitRepo, membershipRepo, tx, logger)
	platformSvc := tenants.NewPlatformService(tenantRepo, membershipRepo, tx, logger)
	tenantHandler := tenants.NewHandler(tenantSvc, orgSvc, platformSvc, jwtService, logger)

	if _, err := platformSvc.GetPlatformTenant(ctx); err != nil {
		logger.Warn("platform tenant lookup failed", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.SplitOrigins()))
	router.Use(middleware.Tenant("/api/tenants"))
	router.Use(middleware.Logger(logger))
	router.Use(httpMetrics.Handler())

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Public (tenant header required)
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/identities/register", identityHandler.Register)
	router.POST("/api/identities/otp/send", identityHandler.SendCode)
	router.POST("/api/identities/otp/verify", identityHandler.VerifyCode)

	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService, blacklist, logger))
	{
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/identities", identityHandler.FindByEmail)
		api.GET("/identities/me", identityHandler.Me)
		api.GET("/identities/me/memberships", identityHandler.MyMemberships)
		api.POST("/memberships", identityHandler.AddMembership)
		api.PUT("/memberships/:id/roles", identityHandler.BindRoles)

		api.POST("/access/roles", accessHandler.CreateRole)
		api.GET("/access/roles", accessHandler.ListRoles)
		api.POST("/access/permissions", accessHandler.CreatePermission)
		api.GET("/access/permissions", accessHandler.ListPermissions)
		api.POST("/access/roles/:id/permissions", accessHandler.BindPermission)
		api.GET("/access/roles/:id/permissions", accessHandler.PermissionsOfRole)

		api.POST("/org-units", tenantHandler.CreateOrgUnit)
		api.GET("/org-units", tenantHandler.ListOrgUnits)
		api.PATCH("/org-units/:id", tenants.RequireOrgUnitInTenant(orgSvc), tenantHandler.UpdateOrgUnit)
		api.DELETE("/org-units/:id", tenants.RequireOrgUnitInTenant(orgSvc), tenantHandler.DeleteOrgUnit)
		api.GET("/org-tree", tenantHandler.OrgTree)

		api.GET("/tenants", tenantHandler.ListBusiness)
		api.GET("/tenants/platform", tenantHandler.Platform)
		api.GET("/tenants/platform/me", tenantHandler.PlatformMe)
		api.GET("/tenants/:id", tenantHandler.Get)
		api.POST("/tenants/:id/switch", tenantHandler.Switch)

		admin := api.Group("/tenants", middleware.RequirePlatformAdmin(platformSvc, logger))
		admin.GET("/all", tenantHandler.ListAll)
		admin.POST("", tenantHandler.Create)
		admin.PATCH("/:id", tenantHandler.Update)
		admin.POST("/:id/disable", tenantHandler.Disable)
		admin.POST("/platform/members", tenantHandler.AddPlatformMember)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	sweeperDone := make(chan struct{})
	if cfg.Ephemeral.SweepSchedule != "" {
		sweeper, err := worker.NewSweeper(cfg.Ephemeral.SweepSchedule, memStore, storeMetrics, logger)
		if err != nil {
			logger.Fatal("sweeper", zap.Error(err))
		}
		go func() {
			sweeper.Run(workerCtx)
			close(sweeperDone)
		}()
	} else {
		close(sweeperDone)
	}
	if deliveryProcessor != nil {
		go deliveryProcessor.Run(workerCtx)
		logger.Info("delivery worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	<-sweeperDone
	logger.Info("server stopped")
}

func newLogger(level zap.AtomicLevel) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = level
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
