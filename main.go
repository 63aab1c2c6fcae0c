package main

import (
	"log"

	"surveymaster/config"
	"surveymaster/handlers"
	"surveymaster/middleware"
	"surveymaster/models"
	"surveymaster/routes"
	"surveymaster/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Survey{},
		&models.Question{},
		&models.Option{},
		&models.Response{},
		&models.Answer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	surveyService := services.NewSurveyService(db)
	responseService := services.NewResponseService(db)
	resultsService := services.NewResultsService(db, redisClient)

	// Initialize WebSocket hub for live results
	hub := services.NewHub(resultsService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	surveyHandler := handlers.NewSurveyHandler(surveyService)
	responseHandler := handlers.NewResponseHandler(responseService, resultsService, hub)
	resultsHandler := handlers.NewResultsHandler(resultsService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, surveyHandler, responseHandler, resultsHandler, hub, authService, surveyService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
