package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docvault/docvault/internal/api/handlers"
	"github.com/docvault/docvault/internal/api/middleware"
	"github.com/docvault/docvault/internal/services"
)

type Deps struct {
	Auth      services.AuthService
	AuthH     *handlers.AuthHandler
	Users     *handlers.UserHandler
	Documents *handlers.DocumentHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/token", d.AuthH.Token)
	r.POST("/users/signup", d.Users.Signup)

	// Protected routes (bearer token)
	auth := r.Group("/")
	auth.Use(middleware.Authenticate(d.Auth))

	users := auth.Group("/users")
	users.GET("/me", d.Users.Me)
	users.GET("/", middleware.RequireRecruiter(), d.Users.ListApplicants)

	docs := auth.Group("/documents")
	docs.POST("/", middleware.RequireApplicant(), d.Documents.Upload)
	docs.GET("/", middleware.RequireApplicant(), d.Documents.ListMine)
	docs.GET("/applicant/", middleware.RequireRecruiter(), d.Documents.ListApplicant)
	docs.GET("/search/", d.Documents.Search)
	docs.GET("/:id/versions/", d.Documents.Versions)
	docs.GET("/:id/versions/:version/download", d.Documents.Download)
}
