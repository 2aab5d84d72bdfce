package controllers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"civicmatch-be/ai"
	"civicmatch-be/config"
	"civicmatch-be/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func aiClient() *ai.Client {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-3.5-turbo-0125"
	}
	return ai.NewClient(os.Getenv("OPENAI_API_KEY"), model)
}

// storageContext returns a fresh deadline for store writes that run
// after a completion call. The completion takes minutes and outlives
// any lookup context opened before it, so post-completion writes must
// not reuse one.
func storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// AnalyzeProblem runs a deep analysis of a problem through the
// completion provider and caches the result on the problem. Provider
// failure surfaces as an error response, never a crash, and leaves the
// problem untouched.
func AnalyzeProblem(c *gin.Context) {
	if _, err := currentUserID(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		ProblemID string `json:"problemId" binding:"required"`
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

	prompt := fmt.Sprintf(`You are a community problem-solving expert. Analyze the following civic issue in depth:

Title: %s
Description: %s
Address: %s
Category: %s
Tags: %s
Participants: %d
Similar problem frequency: %d
Current status: %s

Provide a practical analysis covering: problem classification, severity
(urgency, scope, duration), root causes, required resources (human,
material, financial, institutional), short/mid/long-term approaches,
potential partners (public, private, nonprofit), expected obstacles,
and success indicators with concrete recommendations.`,
		problem.Title,
		problem.Description,
		problem.Location.Address,
		problem.Category,
		strings.Join(problem.Tags, ", "),
		len(problem.Participants),
		problem.Frequency,
		problem.Status,
	)

	analysis, err := aiClient().Complete(prompt, 0.5, 2000)
	if err != nil {
		log.WithError(err).Error("Problem analysis completion failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Analysis service unavailable"})
		return
	}

	writeCtx, writeCancel := storageContext()
	defer writeCancel()

	_, err = problemCollection.UpdateOne(writeCtx,
		bson.M{"_id": problemID},
		bson.M{"$set": bson.M{"lastAnalysis": analysis, "updatedAt": time.Now()}})
	if err != nil {
		log.WithError(err).Warn("Failed to cache analysis on problem")
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

// GenerateSolution asks the completion provider for a structured
// solution proposal and persists it as an AI-generated solution. The
// completion is untrusted; a malformed response yields an error, not a
// stored document.
func GenerateSolution(c *gin.Context) {
	authorID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		ProblemID string `json:"problemId" binding:"required"`
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

	prompt := fmt.Sprintf(`You are a community problem-solving expert. Propose one concrete solution for the following civic issue:

Title: %s
Description: %s
Address: %s
Category: %s

Respond with a single JSON object only, no surrounding text, with
exactly these string fields:
{"title": "...", "description": "...", "resources": "...", "budget": "...", "timeline": "..."}
budget must be a plain number of KRW without separators.`,
		problem.Title,
		problem.Description,
		problem.Location.Address,
		problem.Category,
	)

	content, err := aiClient().Complete(prompt, 0.7, 1000)
	if err != nil {
		log.WithError(err).Error("Solution generation completion failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Generation service unavailable"})
		return
	}

	generated, err := ai.ParseGeneratedSolution(content)
	if err != nil {
		log.WithError(err).Error("Generated solution failed to parse")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Generation service returned an invalid response"})
		return
	}

	budget, err := strconv.ParseFloat(strings.TrimSpace(generated.Budget), 64)
	if err != nil {
		budget = 0
	}

	solution := models.Solution{
		ID:          primitive.NewObjectID(),
		Title:       generated.Title,
		Description: generated.Description,
		Problem:     problemID,
		Author:      authorID,
		Votes:       0,
		Likes:       0,
		AIGenerated: true,
		Status:      models.SolutionProposed,
		Resources:   generated.Resources,
		Budget:      budget,
		Timeline:    generated.Timeline,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	writeCtx, writeCancel := storageContext()
	defer writeCancel()

	if _, err := solutionCollection.InsertOne(writeCtx, solution); err != nil {
		log.WithError(err).Error("Failed to store generated solution")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store generated solution"})
		return
	}

	if problem.Status == models.StatusPending {
		_, err := problemCollection.UpdateOne(writeCtx,
			bson.M{"_id": problemID, "status": models.StatusPending},
			bson.M{"$set": bson.M{"status": models.StatusProcessing, "updatedAt": time.Now()}})
		if err != nil {
			log.WithError(err).Warn("Failed to move problem to processing")
		}
	}

	c.JSON(http.StatusCreated, solution)
}
