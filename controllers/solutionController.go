package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"civicmatch-be/config"
	"civicmatch-be/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errAlreadyCompleted = errors.New("problem already completed")
	errSolutionNotFound = errors.New("solution not found")
)

// CreateSolution handles the submission of a new solution. The first
// solution for a problem moves it from pending to processing.
func CreateSolution(c *gin.Context) {
	authorID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		ProblemID   string  `json:"problemId" binding:"required"`
		Title       string  `json:"title" binding:"required,max=200"`
		Description string  `json:"description" binding:"required,max=2000"`
		Resources   string  `json:"resources,omitempty"`
		Budget      float64 `json:"budget,omitempty"`
		Timeline    string  `json:"timeline,omitempty"`
		AIGenerated bool    `json:"aiGenerated,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	problemID, err := primitive.ObjectIDFromHex(input.ProblemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")
	solutionCollection := config.GetCollection("solutions")

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

	solution := models.Solution{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Problem:     problemID,
		Author:      authorID,
		Votes:       0,
		Likes:       0,
		AIGenerated: input.AIGenerated,
		Status:      models.SolutionProposed,
		Resources:   input.Resources,
		Budget:      input.Budget,
		Timeline:    input.Timeline,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := solutionCollection.InsertOne(ctx, solution); err != nil {
		log.WithError(err).Error("Failed to create solution")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create solution"})
		return
	}

	if problem.Status == models.StatusPending {
		_, err := problemCollection.UpdateOne(ctx,
			bson.M{"_id": problemID, "status": models.StatusPending},
			bson.M{"$set": bson.M{"status": models.StatusProcessing, "updatedAt": time.Now()}})
		if err != nil {
			log.WithError(err).Warn("Failed to move problem to processing")
		}
	}

	c.JSON(http.StatusCreated, solution)
}

// GetSolutions retrieves solutions, optionally restricted to one
// problem, sorted by votes then recency
func GetSolutions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := bson.M{}
	if problemIDStr := c.Query("problemId"); problemIDStr != "" {
		problemID, err := primitive.ObjectIDFromHex(problemIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
			return
		}
		filter["problem"] = problemID
	}

	solutionCollection := config.GetCollection("solutions")

	totalCount, err := solutionCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count solutions"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{
			{Key: "votes", Value: -1},
			{Key: "createdAt", Value: -1},
		}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := solutionCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solutions"})
		return
	}
	defer cursor.Close(ctx)

	solutions := make([]models.Solution, 0, limit)
	if err := cursor.All(ctx, &solutions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode solutions"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"solutions": solutions,
		"pagination": gin.H{
			"total": totalCount,
			"page":  page,
			"limit": limit,
			"pages": totalPages,
		},
	})
}

// GetSolution retrieves a solution by its ID
func GetSolution(c *gin.Context) {
	solutionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid solution ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	solutionCollection := config.GetCollection("solutions")
	userCollection := config.GetCollection("users")

	var solution models.Solution
	err = solutionCollection.FindOne(ctx, bson.M{"_id": solutionID}).Decode(&solution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solution"})
		}
		return
	}

	var author models.User
	authorMap := map[string]interface{}{
		"id": solution.Author,
	}
	if err := userCollection.FindOne(ctx, bson.M{"_id": solution.Author}).Decode(&author); err == nil {
		authorMap["name"] = author.Name
		authorMap["email"] = author.Email
	}

	c.JSON(http.StatusOK, gin.H{
		"solution": solution,
		"author":   authorMap,
	})
}

// UpdateSolution allows the author (or an admin) to update a solution
func UpdateSolution(c *gin.Context) {
	solutionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid solution ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Resources   *string  `json:"resources,omitempty"`
		Budget      *float64 `json:"budget,omitempty"`
		Timeline    *string  `json:"timeline,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	solutionCollection := config.GetCollection("solutions")

	var solution models.Solution
	err = solutionCollection.FindOne(ctx, bson.M{"_id": solutionID}).Decode(&solution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solution"})
		}
		return
	}

	if solution.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this solution"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Title != nil {
		update["title"] = *input.Title
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Resources != nil {
		update["resources"] = *input.Resources
	}
	if input.Budget != nil {
		update["budget"] = *input.Budget
	}
	if input.Timeline != nil {
		update["timeline"] = *input.Timeline
	}

	if _, err := solutionCollection.UpdateOne(ctx, bson.M{"_id": solutionID}, bson.M{"$set": update}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update solution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Solution updated successfully"})
}

// DeleteSolution allows the author (or an admin) to delete a solution
// along with its likes
func DeleteSolution(c *gin.Context) {
	solutionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid solution ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	solutionCollection := config.GetCollection("solutions")
	likeCollection := config.GetCollection("likes")

	var solution models.Solution
	err = solutionCollection.FindOne(ctx, bson.M{"_id": solutionID}).Decode(&solution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solution"})
		}
		return
	}

	if solution.Author != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this solution"})
		return
	}

	if _, err := solutionCollection.DeleteOne(ctx, bson.M{"_id": solutionID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete solution"})
		return
	}

	_, _ = likeCollection.DeleteMany(ctx, bson.M{"solution": solutionID})

	c.JSON(http.StatusOK, gin.H{"message": "Solution deleted successfully"})
}

// HandleLikeOnSolution toggles the user's like on a solution (like if
// not liked, unlike if already liked)
func HandleLikeOnSolution(c *gin.Context) {
	solutionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid solution ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	solutionCollection := config.GetCollection("solutions")
	likeCollection := config.GetCollection("likes")

	var solution models.Solution
	err = solutionCollection.FindOne(ctx, bson.M{"_id": solutionID}).Decode(&solution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solution"})
		}
		return
	}

	store := mongoLikeStore{solutions: solutionCollection, likes: likeCollection}

	likeCount, liked, err := toggleLike(ctx, store, userID, solutionID)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already liked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	_, _ = solutionCollection.UpdateOne(ctx,
		bson.M{"_id": solutionID},
		bson.M{"$set": bson.M{"likes": likeCount, "updatedAt": time.Now()}})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"likes":   likeCount,
		"liked":   liked,
	})
}

// GetLikeStatus reports whether the authenticated user has liked a
// solution
func GetLikeStatus(c *gin.Context) {
	solutionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid solution ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := mongoLikeStore{
		solutions: config.GetCollection("solutions"),
		likes:     config.GetCollection("likes"),
	}

	userID, err := currentUserID(c)
	if err != nil {
		// Anonymous callers still get a 404 for a solution that does
		// not exist.
		exists, err := store.SolutionExists(ctx, solutionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check like status"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}

	liked, err := likeStatus(ctx, store, userID, solutionID)
	if err != nil {
		if errors.Is(err, errSolutionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check like status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// CompleteSolution marks a solution as the accepted resolution of its
// problem. Three effects apply atomically: the winning solution becomes
// implemented and selected, the problem becomes resolved and completed,
// and every sibling solution becomes approved. Only the problem's
// author may complete, and only once.
func CompleteSolution(c *gin.Context) {
	solutionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid solution ID"})
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")
	solutionCollection := config.GetCollection("solutions")

	var solution models.Solution
	err = solutionCollection.FindOne(ctx, bson.M{"_id": solutionID}).Decode(&solution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Solution not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solution"})
		}
		return
	}

	var problem models.Problem
	err = problemCollection.FindOne(ctx, bson.M{"_id": solution.Problem}).Decode(&problem)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		}
		return
	}

	if problem.Author != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the problem author can complete it"})
		return
	}

	if problem.IsCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Problem is already completed"})
		return
	}

	session, err := config.Client().StartSession()
	if err != nil {
		log.WithError(err).Error("Failed to start session for completion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete problem"})
		return
	}
	defer session.EndSession(ctx)

	store := mongoCompletionStore{problems: problemCollection, solutions: solutionCollection}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, runCompletion(sc, store, problem.ID, solutionID)
	})
	if err != nil {
		if errors.Is(err, errAlreadyCompleted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Problem is already completed"})
			return
		}
		log.WithError(err).Error("Completion transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Problem resolved successfully",
	})
}
