package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"civicmatch-be/config"
	"civicmatch-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetProblemAnalytics returns analytical data about problems
func GetProblemAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problemCollection := config.GetCollection("problems")
	solutionCollection := config.GetCollection("solutions")

	// Get problems by category using aggregation
	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := problemCollection.Aggregate(ctx, categoryPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category analytics"})
		return
	}
	defer categoryCursor.Close(ctx)

	var problemsByCategory []bson.M
	if err := categoryCursor.All(ctx, &problemsByCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode category analytics"})
		return
	}

	// Get last 7 days data
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		count, err := problemCollection.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	// Get the most liked solutions among recent ones
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(50)

	cursor, err := solutionCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve solutions for like analysis"})
		return
	}
	defer cursor.Close(ctx)

	var solutions []models.Solution
	if err := cursor.All(ctx, &solutions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode solutions"})
		return
	}

	type SolutionWithLikes struct {
		ID      primitive.ObjectID `json:"id"`
		Title   string             `json:"title"`
		Problem primitive.ObjectID `json:"problem"`
		Likes   int                `json:"likes"`
	}

	topLikedSolutions := make([]SolutionWithLikes, 0, len(solutions))
	for _, solution := range solutions {
		topLikedSolutions = append(topLikedSolutions, SolutionWithLikes{
			ID:      solution.ID,
			Title:   solution.Title,
			Problem: solution.Problem,
			Likes:   solution.Likes,
		})
	}

	sort.Slice(topLikedSolutions, func(i, j int) bool {
		return topLikedSolutions[i].Likes > topLikedSolutions[j].Likes
	})

	if len(topLikedSolutions) > 5 {
		topLikedSolutions = topLikedSolutions[:5]
	}

	// Get total counts
	totalProblems, err := problemCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalProblems = 0
	}

	totalSolutions, err := solutionCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalSolutions = 0
	}

	openProblems, err := problemCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []models.ProblemStatus{models.StatusPending, models.StatusProcessing}},
	})
	if err != nil {
		openProblems = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"problemsByCategory": problemsByCategory,
		"last7Days":          last7Days,
		"topLikedSolutions":  topLikedSolutions,
		"totalProblems":      totalProblems,
		"totalSolutions":     totalSolutions,
		"openProblems":       openProblems,
	})
}
