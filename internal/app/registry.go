package app

import (
	"database/sql"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/access"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/activity"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/config"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/dashboard"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/document"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/grievance"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/messaging/kafka"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/middleware"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/notification"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/counter"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// policies is every allow-list the permission gate enforces.
func policies() []access.Policy {
	return []access.Policy{
		audit.Policy,
		document.Policy,
		grievance.Policy,
		factory.Policy,
		user.Policy,
		access.StatsPolicy,
	}
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	auditRepo := audit.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	documentRepo := document.NewRepository(gormDB)
	factoryRepo := factory.NewRepository(gormDB)
	grievanceRepo := grievance.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	userRepo := user.NewRepository(gormDB)

	// --- Access core ---
	gate, err := access.NewGate(policies(), logger)
	if err != nil {
		return err
	}
	resolver := access.NewResolver(userRepo, logger)
	recorder := activity.Multi(activity.NewRecorder(gormDB), activity.NewLogRecorder(logger))
	dispatcher := notification.NewOutboxDispatcher(outboxRepo, logger)

	auditGuard := access.NewGuard[*audit.Audit](audit.Policy, resolver, gate, recorder, logger)
	documentGuard := access.NewGuard[*document.Document](document.Policy, resolver, gate, recorder, logger)
	grievanceGuard := access.NewGuard[*grievance.Grievance](grievance.Policy, resolver, gate, recorder, logger)
	factoryGuard := access.NewGuard[*factory.Factory](factory.Policy, resolver, gate, recorder, logger)
	userGuard := access.NewGuard[*user.User](user.Policy, resolver, gate, recorder, logger)

	// --- Services ---
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authService := auth.NewService(authRepo, tokens, logger)
	auditService := audit.NewService(db, auditRepo, counterRepo, auditGuard, dispatcher, cfg.Compliance.PassThreshold, logger)
	documentService := document.NewService(db, documentRepo, counterRepo, documentGuard, dispatcher, logger)
	grievanceService := grievance.NewService(db, grievanceRepo, counterRepo, grievanceGuard, dispatcher, logger)
	factoryService := factory.NewService(db, factoryRepo, factoryGuard, dispatcher, rdb, cfg.Redis.OptionsTTL, logger)
	userService := user.NewService(userRepo, userGuard, logger)
	dashboardService := dashboard.NewService(
		auditService,
		documentService,
		grievanceService,
		factoryService,
		dashboard.Weights{
			OverdueAuditPenalty:  cfg.Compliance.OverdueAuditPenalty,
			OpenGrievancePenalty: cfg.Compliance.OpenGrievancePenalty,
		},
		logger,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.Server.SecureCookies, logger)
	auditHandler := audit.NewHandler(auditService, logger)
	documentHandler := document.NewHandler(documentService, logger)
	grievanceHandler := grievance.NewHandler(grievanceService, logger)
	factoryHandler := factory.NewHandler(factoryService, logger)
	userHandler := user.NewHandler(userService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)

	// --- Middleware ---
	authenticated := middleware.AuthMiddleware(tokens)
	idempotency := middleware.Idempotency(rdb, logger)
	anonymousLimit := middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.AnonymousPerSecond), cfg.RateLimit.AnonymousBurst)
	userLimit := middleware.RateLimitByUser(rate.Limit(cfg.RateLimit.UserPerSecond), cfg.RateLimit.UserBurst)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RequestID(), middleware.ContextLogger(logger))
	{
		auth.RegisterRoutes(api, authHandler, authenticated, anonymousLimit)
		audit.RegisterRoutes(api, auditHandler, authenticated, idempotency)
		document.RegisterRoutes(api, documentHandler, authenticated, idempotency)
		grievance.RegisterRoutes(api, grievanceHandler, authenticated, idempotency, anonymousLimit)
		factory.RegisterRoutes(api, factoryHandler, authenticated, idempotency)
		user.RegisterRoutes(api, userHandler, authenticated, idempotency, userLimit)
		dashboard.RegisterRoutes(api, dashboardHandler, authenticated)
	}

	return nil
}
