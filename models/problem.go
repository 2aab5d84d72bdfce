package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProblemCategory enum
type ProblemCategory string

const (
	CategoryEnvironment ProblemCategory = "환경"
	CategoryTraffic     ProblemCategory = "교통"
	CategorySafety      ProblemCategory = "안전"
	CategoryWelfare     ProblemCategory = "복지"
	CategoryFacilities  ProblemCategory = "시설"
)

// ValidCategories lists every accepted problem category.
var ValidCategories = []ProblemCategory{
	CategoryEnvironment,
	CategoryTraffic,
	CategorySafety,
	CategoryWelfare,
	CategoryFacilities,
}

func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if ProblemCategory(c) == v {
			return true
		}
	}
	return false
}

// ProblemStatus enum
type ProblemStatus string

const (
	StatusPending    ProblemStatus = "pending"
	StatusProcessing ProblemStatus = "processing"
	StatusResolved   ProblemStatus = "resolved"
)

// GeoPoint is a GeoJSON point; coordinates are ordered [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// ProblemLocation is the problem's geographic point plus its street address.
type ProblemLocation struct {
	GeoPoint `bson:",inline"`
	Address  string `bson:"address" json:"address"`
}

// Problem represents a civic issue reported by a user
type Problem struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title            string               `bson:"title" json:"title"`
	Description      string               `bson:"description" json:"description"`
	Category         ProblemCategory      `bson:"category" json:"category"`
	Location         ProblemLocation      `bson:"location" json:"location"`
	Images           []string             `bson:"images" json:"images"`
	Author           primitive.ObjectID   `bson:"author" json:"author"`
	Status           ProblemStatus        `bson:"status" json:"status"`
	Votes            int                  `bson:"votes" json:"votes"`
	Priority         int                  `bson:"priority" json:"priority"`
	Frequency        int                  `bson:"frequency" json:"frequency"`
	Participants     []primitive.ObjectID `bson:"participants" json:"participants"`
	Tags             []string             `bson:"tags" json:"tags"`
	LastAnalysis     string               `bson:"lastAnalysis" json:"lastAnalysis"`
	IsCompleted      bool                 `bson:"isCompleted" json:"isCompleted"`
	SelectedSolution *primitive.ObjectID  `bson:"selectedSolution,omitempty" json:"selectedSolution,omitempty"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// EnsureProblemIndexes creates the 2dsphere index used by the
// similar-problem count and the geo list filter.
func EnsureProblemIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}},
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
