package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceType enum
type ResourceType string

const (
	ResourcePublic  ResourceType = "public"
	ResourcePrivate ResourceType = "private"
	ResourceNGO     ResourceType = "ngo"
)

func IsValidResourceType(t string) bool {
	switch ResourceType(t) {
	case ResourcePublic, ResourcePrivate, ResourceNGO:
		return true
	}
	return false
}

// ContactInfo holds optional ways to reach a resource
type ContactInfo struct {
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
}

// Resource represents a third-party entity offering help, discoverable
// by location and category
type Resource struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Type             ResourceType       `bson:"type" json:"type"`
	Category         []string           `bson:"category" json:"category"`
	Description      string             `bson:"description" json:"description"`
	ContactInfo      ContactInfo        `bson:"contactInfo" json:"contactInfo"`
	Address          string             `bson:"address" json:"address"`
	Location         GeoPoint           `bson:"location" json:"location"`
	AvailableSupport []string           `bson:"availableSupport" json:"availableSupport"`
	Owner            primitive.ObjectID `bson:"owner" json:"owner"`
	IsVerified       bool               `bson:"isVerified" json:"isVerified"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EnsureResourceIndexes creates the 2dsphere index backing the candidate
// locator plus the category/type filter indexes.
func EnsureResourceIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
