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

// countSimilarProblems counts unresolved problems of the same category
// within the classification radius of the given coordinates.
// $near is not valid inside a count, so the bound is expressed with
// $geoWithin and $centerSphere (radius in radians).
func countSimilarProblems(ctx context.Context, coordinates []float64, category models.ProblemCategory) (int64, error) {
	problemCollection := config.GetCollection("problems")

	return problemCollection.CountDocuments(ctx, bson.M{
		"location.type": "Point",
		"location.coordinates": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": []interface{}{
					coordinates,
					matching.SimilarProblemRadiusMeters / matching.EarthRadiusMeters,
				},
			},
		},
		"category": category,
		"status":   bson.M{"$ne": models.StatusResolved},
	})
}

// CreateProblem handles the creation of a new problem. Priority is
// classified from the density of similar nearby problems; a failed
// count never blocks creation.
func CreateProblem(c *gin.Context) {
	authorID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       string `json:"title" binding:"required,max=200"`
		Description string `json:"description" binding:"required,max=2000"`
		Category    string `json:"category" binding:"required"`
		Location    struct {
			Coordinates []float64 `json:"coordinates" binding:"required"`
			Address     string    `json:"address" binding:"required,max=200"`
		} `json:"location" binding:"required"`
		Images []string `json:"images,omitempty"`
		Tags   []string `json:"tags,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	if len(input.Location.Coordinates) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates must be [longitude, latitude]"})
		return
	}

	category := models.ProblemCategory(input.Category)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	similarCount, err := countSimilarProblems(ctx, input.Location.Coordinates, category)
	if err != nil {
		log.WithError(err).Warn("Similar problem count failed, falling back to default priority")
		similarCount = 0
	}
	classification := matching.Classify(similarCount)

	images := input.Images
	if images == nil {
		images = []string{}
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	problem := models.Problem{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Category:    category,
		Location: models.ProblemLocation{
			GeoPoint: models.GeoPoint{
				Type:        "Point",
				Coordinates: input.Location.Coordinates,
			},
			Address: input.Location.Address,
		},
		Images:       images,
		Author:       authorID,
		Status:       models.StatusPending,
		Votes:        0,
		Priority:     classification.Priority,
		Frequency:    classification.Frequency,
		Participants: []primitive.ObjectID{authorID},
		Tags:         tags,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	problemCollection := config.GetCollection("problems")
	if _, err := problemCollection.InsertOne(ctx, problem); err != nil {
		log.WithError(err).Error("Failed to create problem")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create problem"})
		return
	}

	c.JSON(http.StatusCreated, problem)
}

// GetAllProblems handles retrieving problems with filtering, geo search,
// and pagination
func GetAllProblems(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	category := c.Query("category")
	status := c.Query("status")
	address := c.Query("location")
	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	radiusKm, _ := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if radiusKm <= 0 {
		radiusKm = 10
	}

	filter := bson.M{}

	if category != "" && category != "all" {
		filter["category"] = category
	}
	if status != "" && status != "all" {
		filter["status"] = status
	}
	if address != "" {
		filter["location.address"] = bson.M{"$regex": address, "$options": "i"}
	}
	if authorStr := c.Query("author"); authorStr != "" {
		authorID, err := primitive.ObjectIDFromHex(authorStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author ID"})
			return
		}
		filter["author"] = authorID
	}

	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		filter["location.coordinates"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": []interface{}{
					[]float64{lng, lat},
					radiusKm * 1000 / matching.EarthRadiusMeters,
				},
			},
		}
	}

	skip := (page - 1) * limit

	problemCollection := config.GetCollection("problems")

	totalCount, err := problemCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count problems"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := problemCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}
	defer cursor.Close(ctx)

	problems := make([]models.Problem, 0, limit)
	if err := cursor.All(ctx, &problems); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode problems"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"problems": problems,
		"pagination": gin.H{
			"total": totalCount,
			"page":  page,
			"limit": limit,
			"pages": totalPages,
		},
	})
}

// GetProblem retrieves a problem by its ID together with its solutions
func GetProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")
	solutionCollection := config.GetCollection("solutions")
	userCollection := config.GetCollection("users")

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

	findOptions := options.Find().SetSort(bson.D{
		{Key: "votes", Value: -1},
		{Key: "createdAt", Value: -1},
	})
	cursor, err := solutionCollection.Find(ctx, bson.M{"problem": problemID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solutions"})
		return
	}
	defer cursor.Close(ctx)

	solutions := make([]models.Solution, 0)
	if err := cursor.All(ctx, &solutions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode solutions"})
		return
	}

	// Get author info
	var author models.User
	authorMap := map[string]interface{}{
		"id": problem.Author,
	}
	if err := userCollection.FindOne(ctx, bson.M{"_id": problem.Author}).Decode(&author); err == nil {
		authorMap["name"] = author.Name
		authorMap["email"] = author.Email
	}

	c.JSON(http.StatusOK, gin.H{
		"problem":   problem,
		"author":    authorMap,
		"solutions": solutions,
	})
}

// UpdateProblem allows the author (or an admin) to update a problem
func UpdateProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Location    *struct {
			Coordinates []float64 `json:"coordinates"`
			Address     string    `json:"address"`
		} `json:"location,omitempty"`
		Images *[]string `json:"images,omitempty"`
		Tags   *[]string `json:"tags,omitempty"`
		Status *string   `json:"status,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")

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

	if problem.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this problem"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		update["title"] = *input.Title
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Category != nil {
		if !models.IsValidCategory(*input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		update["category"] = *input.Category
	}
	if input.Location != nil {
		if len(input.Location.Coordinates) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates must be [longitude, latitude]"})
			return
		}
		update["location"] = models.ProblemLocation{
			GeoPoint: models.GeoPoint{
				Type:        "Point",
				Coordinates: input.Location.Coordinates,
			},
			Address: input.Location.Address,
		}
	}
	if input.Images != nil {
		update["images"] = *input.Images
	}
	if input.Tags != nil {
		update["tags"] = *input.Tags
	}
	if input.Status != nil {
		switch models.ProblemStatus(*input.Status) {
		case models.StatusPending, models.StatusProcessing, models.StatusResolved:
			update["status"] = *input.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}

	if _, err := problemCollection.UpdateOne(ctx, bson.M{"_id": problemID}, bson.M{"$set": update}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Problem updated successfully"})
}

// DeleteProblem allows the author (or an admin) to delete a problem.
// Its solutions and their likes go with it in one transaction, so no
// orphaned solutions can be observed.
func DeleteProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")
	solutionCollection := config.GetCollection("solutions")
	likeCollection := config.GetCollection("likes")

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

	if problem.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this problem"})
		return
	}

	session, err := config.Client().StartSession()
	if err != nil {
		log.WithError(err).Error("Failed to start session for problem delete")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete problem"})
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		cursor, err := solutionCollection.Find(sc, bson.M{"problem": problemID},
			options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, err
		}
		var solutionIDs []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(sc, &solutionIDs); err != nil {
			return nil, err
		}

		if len(solutionIDs) > 0 {
			ids := make([]primitive.ObjectID, 0, len(solutionIDs))
			for _, s := range solutionIDs {
				ids = append(ids, s.ID)
			}
			if _, err := likeCollection.DeleteMany(sc, bson.M{"solution": bson.M{"$in": ids}}); err != nil {
				return nil, err
			}
		}

		if _, err := solutionCollection.DeleteMany(sc, bson.M{"problem": problemID}); err != nil {
			return nil, err
		}
		if _, err := problemCollection.DeleteOne(sc, bson.M{"_id": problemID}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		log.WithError(err).Error("Problem delete transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Problem deleted successfully"})
}

// ParticipateInProblem registers the authenticated user as a
// participant. Joining twice is a no-op.
func ParticipateInProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")

	result, err := problemCollection.UpdateOne(ctx,
		bson.M{"_id": problemID},
		bson.M{
			"$addToSet": bson.M{"participants": userID},
			"$set":      bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join problem"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}

	var problem models.Problem
	if err := problemCollection.FindOne(ctx, bson.M{"_id": problemID}).Decode(&problem); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Joined problem successfully",
		"participants": len(problem.Participants),
	})
}
