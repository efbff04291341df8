package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/character-gallery/internal/api/http"
	"github.com/spec-kit/character-gallery/internal/api/http/handlers"
	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/cache"
	"github.com/spec-kit/character-gallery/internal/config"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/i18n"
	"github.com/spec-kit/character-gallery/internal/notify"
	"github.com/spec-kit/character-gallery/internal/observability"
	"github.com/spec-kit/character-gallery/internal/persistence"
	"github.com/spec-kit/character-gallery/internal/repository"
	"github.com/spec-kit/character-gallery/internal/service"
	"github.com/spec-kit/character-gallery/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	activityColl := mongo.Collection(cfg.Mongo.ActivityCollection)
	if activityColl != nil {
		if err := repository.EnsureActivityLogIndexes(ctx, activityColl); err != nil {
			logger.Warn("failed to ensure activity log indexes", zap.Error(err))
		}
	}

	publisher := notify.NewKafkaPublisher(cfg.Kafka, logger)

	dispatcher := events.NewAsyncDispatcher(events.AsyncOptions{
		QueueSize: cfg.Events.QueueSize,
		Workers:   cfg.Events.Workers,
	}, logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	characterRepo := repository.NewCharacterRepository(pool)
	classRepo := repository.NewCharacterClassRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	activityRepo := repository.NewActivityLogRepository(activityColl)

	galleryCache := cache.NewGalleryCache(redis.Client, cfg.Cache.GalleryTTL())
	guard := service.NewUniquenessGuard(userRepo, characterRepo, commentRepo)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     userRepo,
		Guard:        guard,
		TokenManager: tokens,
		BcryptCost:   cfg.Auth.BcryptCost,
		Dispatcher:   dispatcher,
	})
	characterService := service.NewCharacterService(service.CharacterDependencies{
		CharacterRepo: characterRepo,
		ClassRepo:     classRepo,
		Guard:         guard,
		Cache:         galleryCache,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo:   commentRepo,
		CharacterRepo: characterRepo,
		Guard:         guard,
		Cache:         galleryCache,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	moderationService := service.NewModerationService(service.ModerationDependencies{
		CharacterRepo: characterRepo,
		CommentRepo:   commentRepo,
		Cache:         galleryCache,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	accountService := service.NewAccountService(service.AccountDependencies{
		UserRepo:           userRepo,
		Guard:              guard,
		BcryptCost:         cfg.Auth.BcryptCost,
		TempPasswordLength: cfg.Auth.TempPasswordLength,
		Dispatcher:         dispatcher,
	})
	activityService := service.NewActivityService(activityRepo)
	notificationService := service.NewNotificationService(dispatcher, publisher, logger)

	worker.Register(dispatcher, worker.Subscribers{
		Activity:      activityService,
		Notifications: notificationService,
		Gallery:       galleryCache,
		Logger:        logger,
	})
	dispatcher.Start()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), i18n.ParseLocale(cfg.I18n.DefaultLocale))

	dependencies := map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	}
	if activityColl != nil {
		dependencies["mongo"] = mongo
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Characters:     handlers.NewCharactersHandler(characterService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Moderation:     handlers.NewModerationHandler(moderationService),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Activity:       handlers.NewActivityHandler(activityService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("event dispatcher did not drain", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka publisher close", zap.Error(err))
	}
	mongo.Close(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
