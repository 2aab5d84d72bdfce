package routes

import (
	"civicmatch-be/controllers"
	"civicmatch-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AIRoutes sets up the AI completion routes
func AIRoutes(r *gin.Engine) {
	aiGroup := r.Group("/api/ai")
	{
		aiGroup.POST("/analyze", middlewares.AuthMiddleware(), controllers.AnalyzeProblem)
		aiGroup.POST("/generate-solution", middlewares.AuthMiddleware(), controllers.GenerateSolution)
	}
}
