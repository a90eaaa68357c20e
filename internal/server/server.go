package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nesterovv89/sharing-recipe-service/config"
	"github.com/nesterovv89/sharing-recipe-service/internal/api"
	"github.com/nesterovv89/sharing-recipe-service/internal/database"
	"github.com/nesterovv89/sharing-recipe-service/internal/middleware"
	"github.com/nesterovv89/sharing-recipe-service/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	health *database.DB
}

// New creates a new server instance and registers all routes.
func New(cfg *config.Config, auth *service.AuthService, users *service.UserService, recipes *service.RecipeService, shopping *service.ShoppingListService, tags *api.TagHandler, ingredients *api.IngredientHandler, health *database.DB) *Server {
	router := gin.Default()
	router.Use(middleware.CORS())

	pagination := api.Pagination{
		DefaultLimit: cfg.DefaultPageSize,
		MaxLimit:     cfg.MaxPageSize,
	}

	v1 := router.Group("/api")
	api.NewUserHandler(auth, users, pagination).RegisterRoutes(v1)
	api.NewRecipeHandler(recipes, shopping, auth, pagination).RegisterRoutes(v1)
	tags.RegisterRoutes(v1)
	ingredients.RegisterRoutes(v1)

	srv := &Server{
		router: router,
		health: health,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
	router.GET("/health", srv.healthCheck)
	return srv
}

func (s *Server) healthCheck(c *gin.Context) {
	if s.health != nil {
		if err := s.health.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start starts the server
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
