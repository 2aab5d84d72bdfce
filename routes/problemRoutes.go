package routes

import (
	"civicmatch-be/controllers"
	"civicmatch-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ProblemRoutes sets up the problem routes
func ProblemRoutes(r *gin.Engine) {
	problem := r.Group("/api/problems")
	{
		problem.POST("", middlewares.AuthMiddleware(), middlewares.ProblemRateLimiter(10), controllers.CreateProblem)
		problem.GET("", controllers.GetAllProblems)
		problem.GET("/analytics", controllers.GetProblemAnalytics)
		problem.GET("/:id", controllers.GetProblem)
		problem.PUT("/:id", middlewares.AuthMiddleware(), controllers.UpdateProblem)
		problem.DELETE("/:id", middlewares.AuthMiddleware(), controllers.DeleteProblem)
		problem.POST("/:id/participate", middlewares.AuthMiddleware(), controllers.ParticipateInProblem)
	}
}
