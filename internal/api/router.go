package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hauldesk/hauldesk/internal/api/handlers"
	"github.com/hauldesk/hauldesk/internal/api/middleware"
	"github.com/hauldesk/hauldesk/internal/core/auth"
)

type Router struct {
	engine         *gin.Engine
	authMiddleware *middleware.AuthMiddleware
	authHandler    *handlers.AuthHandler
	formHandler    *handlers.FormHandler
	recordHandler  *handlers.RecordHandler
	lookupHandler  *handlers.LookupHandler
	summaryHandler *handlers.SummaryHandler
}

func NewRouter(
	authService *auth.Service,
	authHandler *handlers.AuthHandler,
	formHandler *handlers.FormHandler,
	recordHandler *handlers.RecordHandler,
	lookupHandler *handlers.LookupHandler,
	summaryHandler *handlers.SummaryHandler,
) *Router {
	return &Router{
		authMiddleware: middleware.NewAuthMiddleware(authService),
		authHandler:    authHandler,
		formHandler:    formHandler,
		recordHandler:  recordHandler,
		lookupHandler:  lookupHandler,
		summaryHandler: summaryHandler,
	}
}

func (r *Router) Setup(mode string) *gin.Engine {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(gin.Logger())
	r.engine.Use(middleware.RequestMeta())

	r.setupRoutes()
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", r.authHandler.Register)
		authRoutes.POST("/login", r.authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(r.authMiddleware.Authenticate())
	{
		// Current user
		protected.GET("/auth/me", r.authHandler.Me)

		// Collection metadata
		protected.GET("/collections", r.formHandler.ListCollections)
		protected.GET("/forms/:collection", r.formHandler.Describe)

		// Records
		records := protected.Group("/records/:collection")
		{
			records.GET("", r.recordHandler.List)
			records.POST("", r.recordHandler.Create)
			records.GET("/:id", r.recordHandler.Get)
			records.PUT("/:id", r.recordHandler.Update)
			records.DELETE("/:id", r.recordHandler.Delete)
		}

		// Reference pickers and dashboard figures
		protected.GET("/lookups/:collection", r.lookupHandler.Lookup)
		protected.GET("/summaries/:collection", r.summaryHandler.Totals)

		// API Keys
		protected.GET("/api-keys", r.authHandler.ListAPIKeys)
		protected.POST("/api-keys", r.authHandler.CreateAPIKey)
		protected.DELETE("/api-keys/:keyId", r.authHandler.DeleteAPIKey)
	}
}
