package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID extracts the authenticated user's ObjectID from the gin
// context (set by the auth middleware).
func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, fmt.Errorf("user not authenticated")
	}

	idStr, ok := userID.(string)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("invalid user ID in context")
	}

	return primitive.ObjectIDFromHex(idStr)
}

// isAdmin reports whether the authenticated user carries the admin role.
func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("user_role")
	if !exists {
		return false
	}
	roleStr, ok := role.(string)
	return ok && roleStr == "admin"
}
