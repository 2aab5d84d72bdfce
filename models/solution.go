package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SolutionStatus enum
type SolutionStatus string

const (
	SolutionProposed    SolutionStatus = "proposed"
	SolutionApproved    SolutionStatus = "approved"
	SolutionImplemented SolutionStatus = "implemented"
)

// Solution represents a proposed remedy to a problem
type Solution struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Problem     primitive.ObjectID `bson:"problem" json:"problem"`
	Author      primitive.ObjectID `bson:"author" json:"author"`
	Votes       int                `bson:"votes" json:"votes"`
	Likes       int                `bson:"likes" json:"likes"`
	AIGenerated bool               `bson:"aiGenerated" json:"aiGenerated"`
	Status      SolutionStatus     `bson:"status" json:"status"`
	Resources   string             `bson:"resources,omitempty" json:"resources,omitempty"`
	Budget      float64            `bson:"budget,omitempty" json:"budget,omitempty"`
	Timeline    string             `bson:"timeline,omitempty" json:"timeline,omitempty"`
	IsSelected  bool               `bson:"isSelected" json:"isSelected"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
