package main

import (
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/app"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/config"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	apperror.Init()

	if err := app.RunWorker(cfg, logger); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
