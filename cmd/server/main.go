package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/careerhub/internal/bootstrap"
	"anoa.com/careerhub/internal/config"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/internal/server"
	"anoa.com/careerhub/pkg/database"
	"anoa.com/careerhub/pkg/logger"
	"anoa.com/careerhub/pkg/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.AppEnv)
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DSN(), cfg.AppEnv == "development")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	rules, err := scoring.LoadRules(cfg.ScoringRulesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load scoring rules")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = bootstrap.SeedBadges(seedCtx, db, rules)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed badges")
	}

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("REDIS_URL not set, vote count cache and notification fan-out disabled")
	} else {
		defer redisClient.Close()
	}

	imageStorage := storage.NewDisabledStorage()
	if cfg.CloudinaryConfigured() {
		imageStorage, err = storage.NewCloudinaryStorage(storage.CloudinaryOptions{
			URL:       cfg.CloudinaryURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
		}
	}

	srv, err := server.NewServer(cfg, db, redisClient, imageStorage, rules)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return
	}

	logger.Info().Msg("Server exited gracefully")
}
