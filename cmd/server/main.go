package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/database"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/router"
	"github.com/iliyamo/movie-catalog/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	sqlDB, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer sqlDB.Close()

	db, err := database.NewGorm(sqlDB, strings.EqualFold(cfg.LogLevel, "DEBUG"))
	if err != nil {
		log.Fatalf("gorm: %v", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	movies := repository.NewMovieRepo(db)
	genres := repository.NewGenreRepo(db)
	invalidator := middleware.NewCacheInvalidator(cacheCfg, rdb)

	var events handler.EventPublisher
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.EventsOn {
		events = service.NewMoviePublisher(cfg.RabbitURL)
		go func() {
			if err := queue.StartMovieEventConsumer(ctx, cfg.RabbitURL, cfg.EventLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("movie-consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.RegisterAll(e, router.Deps{
		Auth:      handler.NewAuthHandler(users, cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute),
		Movies:    handler.NewMovieHandler(movies, events, invalidator),
		Genres:    handler.NewGenreHandler(genres, invalidator),
		JWTSecret: cfg.JWTSecret,
		Users:     users,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func logLevel(s string) glog.Lvl {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return glog.DEBUG
	case "WARN":
		return glog.WARN
	case "ERROR":
		return glog.ERROR
	case "OFF":
		return glog.OFF
	}
	return glog.INFO
}
