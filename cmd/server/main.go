package main // Entry point package

import (
	"context"   // Root context and shutdown deadline
	"errors"    // Distinguish a clean server close
	"fmt"       // Wrap startup errors
	"log"       // Fatal startup errors before the logger exists
	"net/http"  // http.ErrServerClosed
	"os"        // Log output
	"os/signal" // Graceful shutdown on SIGINT/SIGTERM
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo built-in middleware
	gommonlog "github.com/labstack/gommon/log"      // Structured log fields

	"github.com/iliyamo/todo-list-api/internal/config"     // Internal config loader
	"github.com/iliyamo/todo-list-api/internal/database"   // SQL connection and schema
	"github.com/iliyamo/todo-list-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/todo-list-api/internal/logging"    // JSON logger
	"github.com/iliyamo/todo-list-api/internal/middleware" // Request logging and caching
	"github.com/iliyamo/todo-list-api/internal/queue"      // Activity consumer
	"github.com/iliyamo/todo-list-api/internal/repository" // Data access
	"github.com/iliyamo/todo-list-api/internal/router"     // Internal router setup
	"github.com/iliyamo/todo-list-api/internal/service"    // Auth and todo services
	"github.com/iliyamo/todo-list-api/internal/utils"      // Token manager
)

func main() {
	cfg := config.Load() // Load environment config; exits when JWT_SECRET is missing
	logger := logging.New("todo-api", cfg.LogLevel, os.Stdout)
	if err := run(cfg, logger); err != nil {
		log.Fatal(err) // deferred closers in run have already executed
	}
}

// run owns every resource of the process, so an early return releases them.
func run(cfg config.Config, logger *gommonlog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() { _ = db.Close() }()

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL())
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	authSvc, err := service.NewAuthService(repository.NewUserRepo(db), tokens, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	eventsCfg := config.LoadEventsConfig()
	var publisher service.EventPublisher = service.NopPublisher{}
	if eventsCfg.Enabled {
		publisher = service.NewAMQPPublisher(eventsCfg.URL, eventsCfg.Queue, logger)
		if eventsCfg.ConsumerEnabled {
			consumer := &queue.ActivityConsumer{
				URL:     eventsCfg.URL,
				Queue:   eventsCfg.Queue,
				LogPath: eventsCfg.ActivityLogPath,
				Logger:  logger,
			}
			go func() { _ = consumer.Run(ctx) }()
		}
	}
	todoSvc := service.NewTodoService(repository.NewTodoRepo(db), publisher)

	cacheCfg := config.LoadCacheConfig()
	var listCache echo.MiddlewareFunc
	if cacheCfg.Enabled {
		if rdb := config.NewRedisClient(ctx); rdb != nil {
			defer func() { _ = rdb.Close() }()
			listCache = middleware.NewTodoListCache(cacheCfg, rdb)
		} else {
			logger.Warnj(gommonlog.JSON{"message": "redis unavailable, todo list cache disabled"})
		}
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.BodyLimit("64K"))

	router.RegisterRoutes(e, router.Deps{ // Register application routes
		DB:        db,
		Auth:      handler.NewAuthHandler(authSvc, cfg.RequestTimeout),
		Todos:     handler.NewTodoHandler(todoSvc, cfg.RequestTimeout),
		Verifier:  tokens,
		ListCache: listCache,
		PublicDir: cfg.PublicDir,
	})

	addr := ":" + cfg.Port
	logger.Infoj(gommonlog.JSON{"message": "listening", "addr": addr, "env": cfg.Env, "db_driver": cfg.DBDriver})

	startErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			startErr <- err
		}
	}()

	select {
	case err := <-startErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	return nil
}
