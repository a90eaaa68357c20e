package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nesterovv89/sharing-recipe-service/config"
	"github.com/nesterovv89/sharing-recipe-service/internal/api"
	"github.com/nesterovv89/sharing-recipe-service/internal/database"
	"github.com/nesterovv89/sharing-recipe-service/internal/server"
	"github.com/nesterovv89/sharing-recipe-service/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var healthDB *database.DB
	if cfg.DBDriver == "postgres" {
		healthDB, err = database.NewSQL(cfg)
		if err != nil {
			log.Fatalf("Failed to open health-check connection: %v", err)
		}
	}

	var tokens service.TokenStore
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, token revocation disabled: %v", err)
	} else {
		tokens = service.NewRedisTokenStore(redisClient)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}
	images := service.NewS3ImageService(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.AWSRegion)

	authService := service.NewAuthService(db, cfg.JWTSecret, tokens)
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db, images, cfg.MinCookingTime, cfg.MinIngredientAmount)
	shoppingService := service.NewShoppingListService(db)

	srv := server.New(cfg, authService, userService, recipeService, shoppingService,
		api.NewTagHandler(db), api.NewIngredientHandler(db), healthDB)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
