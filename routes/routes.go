package routes

import (
	"log"
	"net/http"
	"strconv"

	"surveymaster/handlers"
	"surveymaster/middleware"
	"surveymaster/models"
	"surveymaster/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	surveyHandler *handlers.SurveyHandler,
	responseHandler *handlers.ResponseHandler,
	resultsHandler *handlers.ResultsHandler,
	hub *services.Hub,
	authService *services.AuthService,
	surveyService *services.SurveyService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Taker-facing routes
			protected.GET("/surveys/open", surveyHandler.ListOpenSurveys)
			protected.POST("/surveys/:id/responses", responseHandler.SubmitResponse)

			// Creator routes
			surveys := protected.Group("/surveys")
			surveys.Use(middleware.RequireCreator())
			{
				surveys.GET("", surveyHandler.ListCreatorSurveys)
				surveys.POST("", surveyHandler.CreateSurvey)
				surveys.GET("/:id", surveyHandler.GetSurveyByID)
				surveys.PUT("/:id", surveyHandler.UpdateSurvey)
				surveys.DELETE("/:id", surveyHandler.DeleteSurvey)
				surveys.POST("/:id/restore", surveyHandler.RestoreSurvey)
				surveys.POST("/:id/archive", surveyHandler.ArchiveSurvey)
				surveys.POST("/:id/unarchive", surveyHandler.UnarchiveSurvey)
				surveys.POST("/:id/publish", surveyHandler.Publish)
				surveys.POST("/:id/republish", surveyHandler.Republish)
				surveys.POST("/:id/close", surveyHandler.Close)
				surveys.POST("/:id/questions", surveyHandler.AddQuestion)
				surveys.GET("/:id/responses", responseHandler.GetSurveyResponses)
				surveys.GET("/:id/results", resultsHandler.GetSurveyResults)
			}

			questions := protected.Group("/questions")
			questions.Use(middleware.RequireCreator())
			{
				questions.POST("/:questionID/options", surveyHandler.AddOption)
				questions.DELETE("/:questionID", surveyHandler.DeleteQuestion)
				questions.POST("/:questionID/restore", surveyHandler.RestoreQuestion)
			}
		}
	}

	// WebSocket endpoint streaming live aggregated results to the survey's
	// creator. The token travels as a query parameter since browsers cannot
	// set headers on websocket dials.
	router.GET("/ws/results/:surveyID", func(c *gin.Context) {
		surveyID, err := strconv.ParseUint(c.Param("surveyID"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid survey ID"})
			return
		}

		userID, role, err := authService.ValidateToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if role != models.RoleCreator {
			c.JSON(http.StatusForbidden, gin.H{"error": "creator role required"})
			return
		}

		// Only the owning creator may watch a survey's results.
		if _, err := surveyService.GetSurveyByID(uint(surveyID), userID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "survey not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for survey %d, user %d: %v", surveyID, userID, err)
			return
		}

		log.Printf("Results watcher connected for survey %d (user %d)", surveyID, userID)
		hub.RegisterClient(conn, uint(surveyID), userID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
