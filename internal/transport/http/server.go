package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogsite-backend/internal/cache"
	"blogsite-backend/internal/config"
	"blogsite-backend/internal/database"
	"blogsite-backend/internal/handler"
	"blogsite-backend/internal/mention"
	"blogsite-backend/internal/queue"
	appredis "blogsite-backend/internal/redis"
	"blogsite-backend/internal/repository"
	"blogsite-backend/internal/service"
	"blogsite-backend/internal/worker"
)

// Run wires the full application and blocks until shutdown.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	tagRepo := repository.NewTagRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Redis is optional: without it posts still publish, but view counting
	// and NEW_POST fan-out are disabled.
	var (
		publisher queue.Publisher
		views     cache.ViewCache
		manager   *worker.Manager
	)

	notificationService := service.NewNotificationService(notifRepo, userRepo, db)

	if cfg.RedisURL != "" {
		redisClient, err := appredis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			return err
		}

		publisher = queue.NewPublisher(redisClient.Client)
		views = cache.NewViewCache(redisClient.Client)

		consumer := queue.NewConsumer(redisClient.Client)
		workerHandler := worker.NewHandler(userRepo, notificationService)
		manager = worker.NewManager(consumer, workerHandler, worker.ManagerConfig{
			WorkerCount: cfg.NotificationWorkers,
		})
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	} else {
		log.Println("REDIS_URL not set, view counting and post fan-out disabled")
	}

	// Services
	extractor := mention.NewExtractor(userRepo)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, extractor, notificationService, db)
	postService := service.NewPostService(postRepo, userRepo, db, publisher, views)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, userRepo, cfg)
	taxonomyService := service.NewTaxonomyService(tagRepo, categoryRepo)

	// Handlers
	routerCfg := RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		PostHandler:         handler.NewPostHandler(postService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		TaxonomyHandler:     handler.NewTaxonomyHandler(taxonomyService),
		JWTSecret:           cfg.JWTSecret,
	}

	if cfg.R2BucketName != "" {
		assetService, err := service.NewAssetService(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create asset service: %w", err)
		}
		routerCfg.AssetHandler = handler.NewAssetHandler(assetService)
	} else {
		log.Println("R2 not configured, image uploads disabled")
	}

	// Periodic jobs: fold Redis view counters into Postgres and prune
	// expired refresh tokens.
	if views != nil {
		go runViewFlusher(ctx, postService, time.Duration(cfg.ViewFlushInterval)*time.Second)
	}
	go runTokenCleanup(ctx, authService)

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: NewRouter(routerCfg),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
		return err
	}
	return nil
}

func runViewFlusher(ctx context.Context, posts *service.PostService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush so counts accumulated since the last tick survive
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := posts.FlushViewCounts(flushCtx); err != nil {
				log.Printf("Final view flush failed: %v", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := posts.FlushViewCounts(ctx); err != nil {
				log.Printf("View flush failed: %v", err)
			}
		}
	}
}

func runTokenCleanup(ctx context.Context, auth *service.AuthService) {
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.CleanupExpiredTokens(ctx, 30*24*time.Hour); err != nil {
				log.Printf("Token cleanup failed: %v", err)
			}
		}
	}
}
