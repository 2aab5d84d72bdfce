package main

import (
	"net/http"
	"os"

	"civicmatch-be/config"
	"civicmatch-be/models"
	"civicmatch-be/routes"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	config.ConnectRedis()

	if err := models.EnsureProblemIndexes(config.GetCollection("problems")); err != nil {
		log.WithError(err).Fatal("Failed to create problem indexes")
	}
	if err := models.EnsureResourceIndexes(config.GetCollection("resources")); err != nil {
		log.WithError(err).Fatal("Failed to create resource indexes")
	}
	if err := models.EnsureLikeIndex(config.GetCollection("likes")); err != nil {
		log.WithError(err).Fatal("Failed to create like index")
	}

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	routes.AuthRoutes(r)
	routes.ProblemRoutes(r)
	routes.SolutionRoutes(r)
	routes.ResourceRoutes(r)
	routes.AIRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
