package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/docvault/docvault/config"
	"github.com/docvault/docvault/internal/api/handlers"
	"github.com/docvault/docvault/internal/api/middleware"
	"github.com/docvault/docvault/internal/api/routes"
	"github.com/docvault/docvault/internal/auth"
	"github.com/docvault/docvault/internal/cache"
	"github.com/docvault/docvault/internal/content"
	"github.com/docvault/docvault/internal/logger"
	"github.com/docvault/docvault/internal/metrics"
	"github.com/docvault/docvault/internal/models"
	pgrepo "github.com/docvault/docvault/internal/repositories/postgres"
	"github.com/docvault/docvault/internal/services"
	"github.com/docvault/docvault/internal/storage"
)

const reconcileInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}

	log := logger.New(cfg.Log.Level)

	db, err := config.OpenPostgres(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Document{}, &models.DocumentVersion{}); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("postgres connected")

	rdb, err := config.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	var texts cache.TextCache
	if rdb != nil {
		texts = cache.NewRedisCache(rdb)
		log.Info("redis connected")
	} else {
		log.Info("redis not configured, content search caching disabled")
	}

	store, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}

	tokens := auth.NewTokenManager(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	userRepo := pgrepo.NewUserRepo(db)
	docRepo := pgrepo.NewDocumentRepo(db)

	authSvc := services.NewAuthService(userRepo, tokens)
	userSvc := services.NewUserService(userRepo)
	docSvc := services.NewDocumentService(docRepo, userRepo, store, log)
	searchSvc := services.NewSearchService(docRepo, content.NewExtractor(store, texts, log))

	// Remove orphaned and abandoned files once at startup, then periodically.
	if n, err := docSvc.Reconcile(context.Background()); err != nil {
		log.WithError(err).Warn("startup reconcile failed")
	} else if n > 0 {
		log.WithField("removed", n).Info("startup reconcile swept files")
	}
	go func() {
		ticker := time.NewTicker(reconcileInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := docSvc.Reconcile(context.Background()); err != nil {
				log.WithError(err).Warn("periodic reconcile failed")
			}
		}
	}()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.API.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:      authSvc,
		AuthH:     handlers.NewAuthHandler(authSvc),
		Users:     handlers.NewUserHandler(authSvc, userSvc),
		Documents: handlers.NewDocumentHandler(docSvc, searchSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	log.WithField("addr", addr).Info("starting server")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
