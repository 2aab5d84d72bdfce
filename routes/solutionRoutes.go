package routes

import (
	"civicmatch-be/controllers"
	"civicmatch-be/middlewares"

	"github.com/gin-gonic/gin"
)

// SolutionRoutes sets up the solution routes
func SolutionRoutes(r *gin.Engine) {
	solution := r.Group("/api/solutions")
	{
		solution.POST("", middlewares.AuthMiddleware(), controllers.CreateSolution)
		solution.GET("", controllers.GetSolutions)
		solution.GET("/:id", controllers.GetSolution)
		solution.PUT("/:id", middlewares.AuthMiddleware(), controllers.UpdateSolution)
		solution.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteSolution)
		solution.POST("/:id/like", middlewares.AuthMiddleware(), controllers.HandleLikeOnSolution)
		solution.GET("/:id/like", middlewares.AuthMiddleware(), controllers.GetLikeStatus)
		solution.POST("/:id/complete", middlewares.AuthMiddleware(), controllers.CompleteSolution)
	}
}
