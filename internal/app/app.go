package app

import (
	"database/sql"
	"net/http"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/config"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/obs"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the shared connections. Close releases all of them.
type Infra struct {
	GormDB *gorm.DB
	DB     *sql.DB
	Redis  *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.DB != nil {
		_ = i.DB.Close()
	}
}

func postgresOptions(cfg config.DatabaseConfig) connection.PostgresOptions {
	return connection.PostgresOptions{
		Host:     cfg.Host,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		Port:     cfg.Port,
		SSLMode:  cfg.SSLMode,
	}
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(postgresOptions(cfg), cfg.MaxRetries)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}

// BuildApp connects infrastructure and mounts every module on router.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	gormDB, sqlDB, err := connectDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	infra := &Infra{GormDB: gormDB, DB: sqlDB, Redis: redisClient}

	obs.Init()
	router.Use(obs.GinMiddleware())
	router.GET("/metrics", gin.WrapH(obs.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := registerModules(router, cfg, sqlDB, gormDB, redisClient, logger); err != nil {
		infra.Close()
		return nil, err
	}

	return infra, nil
}
