package routes

import (
	"civicmatch-be/controllers"
	"civicmatch-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ResourceRoutes sets up the resource routes
func ResourceRoutes(r *gin.Engine) {
	resource := r.Group("/api/resources")
	{
		resource.POST("", middlewares.AuthMiddleware(), controllers.CreateResource)
		resource.GET("", controllers.GetAllResources)
		resource.GET("/match", middlewares.AuthMiddleware(), controllers.MatchResources)
		resource.PUT("/:id/verify", middlewares.AuthMiddleware(), controllers.VerifyResource)
	}
}
