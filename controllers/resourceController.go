package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civicmatch-be/config"
	"civicmatch-be/matching"
	"civicmatch-be/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateResource handles registration of a new resource
func CreateResource(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Name        string   `json:"name" binding:"required,max=100"`
		Type        string   `json:"type" binding:"required"`
		Category    []string `json:"category" binding:"required,min=1"`
		Description string   `json:"description" binding:"required,max=2000"`
		ContactInfo struct {
			Email   string `json:"email,omitempty"`
			Phone   string `json:"phone,omitempty"`
			Website string `json:"website,omitempty"`
		} `json:"contactInfo"`
		Address  string `json:"address" binding:"required,max=200"`
		Location struct {
			Coordinates []float64 `json:"coordinates" binding:"required"`
		} `json:"location" binding:"required"`
		AvailableSupport []string `json:"availableSupport" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidResourceType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource type"})
		return
	}

	if len(input.Location.Coordinates) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates must be [longitude, latitude]"})
		return
	}

	resource := models.Resource{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Type:        models.ResourceType(input.Type),
		Category:    input.Category,
		Description: input.Description,
		ContactInfo: models.ContactInfo{
			Email:   input.ContactInfo.Email,
			Phone:   input.ContactInfo.Phone,
			Website: input.ContactInfo.Website,
		},
		Address: input.Address,
		Location: models.GeoPoint{
			Type:        "Point",
			Coordinates: input.Location.Coordinates,
		},
		AvailableSupport: input.AvailableSupport,
		Owner:            ownerID,
		IsVerified:       false,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resourceCollection := config.GetCollection("resources")
	if _, err := resourceCollection.InsertOne(ctx, resource); err != nil {
		log.WithError(err).Error("Failed to create resource")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resource"})
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// GetAllResources handles retrieving resources with filtering and
// pagination
func GetAllResources(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resourceType := c.Query("type")
	category := c.Query("category")
	verified := c.Query("verified")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := bson.M{}
	if resourceType != "" && resourceType != "all" {
		filter["type"] = resourceType
	}
	if category != "" && category != "all" {
		filter["category"] = category
	}
	if verified == "true" {
		filter["isVerified"] = true
	}

	resourceCollection := config.GetCollection("resources")

	totalCount, err := resourceCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count resources"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := resourceCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resources"})
		return
	}
	defer cursor.Close(ctx)

	resources := make([]models.Resource, 0, limit)
	if err := cursor.All(ctx, &resources); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode resources"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"resources": resources,
		"pagination": gin.H{
			"total": totalCount,
			"page":  page,
			"limit": limit,
			"pages": totalPages,
		},
	})
}

// VerifyResource marks a resource as verified. Admin only.
func VerifyResource(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		return
	}

	resourceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resourceCollection := config.GetCollection("resources")

	result, err := resourceCollection.UpdateOne(ctx,
		bson.M{"_id": resourceID},
		bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify resource"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resource verified successfully"})
}

// MatchResources finds and ranks the resources best suited to a
// problem. Candidates come from a $near query whose radius scales with
// the problem's priority; each candidate is scored on distance,
// category overlap, and support overlap.
func MatchResources(c *gin.Context) {
	problemIDStr := c.Query("problemId")
	if problemIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Problem ID is required"})
		return
	}

	problemID, err := primitive.ObjectIDFromHex(problemIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")
	resourceCollection := config.GetCollection("resources")

	var problem models.Problem
	err = problemCollection.FindOne(ctx, bson.M{"_id": problemID}).Decode(&problem)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		}
		return
	}

	if len(problem.Location.Coordinates) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Problem has no location"})
		return
	}

	matchCategories := matching.Expand(problem.Category)
	radiusMeters := matching.RadiusForPriority(problem.Priority)

	// $near returns candidates nearest first, which is the tie-break
	// order the stable ranking preserves.
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": problem.Location.Coordinates,
				},
				"$maxDistance": radiusMeters,
			},
		},
		"$or": []bson.M{
			{"category": bson.M{"$in": matchCategories}},
			{"availableSupport": bson.M{"$in": matchCategories}},
		},
	}

	findOptions := options.Find().SetLimit(matching.MaxCandidates)
	cursor, err := resourceCollection.Find(ctx, filter, findOptions)
	if err != nil {
		log.WithError(err).Error("Resource candidate query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to match resources"})
		return
	}
	defer cursor.Close(ctx)

	candidates := make([]models.Resource, 0, matching.MaxCandidates)
	if err := cursor.All(ctx, &candidates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode resources"})
		return
	}

	matches := make([]matching.Match, 0, len(candidates))
	for _, resource := range candidates {
		score := matching.ScoreResource(problem.Location.Coordinates, matchCategories, resource)
		matches = append(matches, matching.Match{
			Resource:     resource,
			MatchScore:   score.Total,
			MatchDetails: score,
		})
	}
	matching.Rank(matches)

	c.JSON(http.StatusOK, gin.H{
		"matchedResources": matches,
		"totalMatches":     len(matches),
		"searchRadius":     radiusMeters / 1000,
	})
}
