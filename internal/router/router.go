// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
	"github.com/soukcraft/soukcraft-web/internal/config"
	"github.com/soukcraft/soukcraft-web/internal/handlers"
	"github.com/soukcraft/soukcraft-web/internal/manage"
	"github.com/soukcraft/soukcraft-web/internal/middleware"
)

func Initialize(cfg *config.Config) *gin.Engine {
	api := apiclient.New(cfg.API)
	store := manage.NewStore(time.Duration(cfg.Manage.SessionTTL) * time.Minute)

	return InitializeWith(cfg, api, store)
}

// InitializeWith wires the routes around preconstructed collaborators.
func InitializeWith(cfg *config.Config, api *apiclient.Client, store *manage.Store) *gin.Engine {
	// Initialize handlers
	listingHandler := handlers.NewListingHandler(api)
	submitHandler := handlers.NewSubmitHandler(api, cfg.API.MaxImageSize)
	manageHandler := handlers.NewManageHandler(api, store, cfg.API.MaxImageSize)
	adminHandler := handlers.NewAdminHandler(api)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())

	r.LoadHTMLGlob(cfg.Templates.Glob)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Pages
	r.GET("/", listingHandler.Home)

	r.GET("/add", submitHandler.Form)
	r.POST("/add", middleware.SubmitRateLimit(), submitHandler.Submit)

	manageGroup := r.Group("/manage")
	{
		manageGroup.GET("", manageHandler.Page)
		manageGroup.POST("/lookup", manageHandler.Lookup)
		manageGroup.POST("/update", middleware.SubmitRateLimit(), manageHandler.Update)
		manageGroup.POST("/delete", manageHandler.Delete)
	}

	r.GET("/admin", adminHandler.Stats)

	return r
}
