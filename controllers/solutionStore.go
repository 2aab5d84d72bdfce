package controllers

import (
	"context"
	"time"

	"civicmatch-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// completionStore is the slice of the store the completion step
// mutates. The Mongo implementation runs inside a session so the three
// effects commit or roll back together.
type completionStore interface {
	MarkProblemResolved(ctx context.Context, problemID, solutionID primitive.ObjectID) (bool, error)
	MarkSolutionImplemented(ctx context.Context, solutionID primitive.ObjectID) error
	ApproveSiblings(ctx context.Context, problemID, winnerID primitive.ObjectID) error
}

// runCompletion applies the three completion effects in order. The
// conditional problem update serializes concurrent attempts: the loser
// sees no match and aborts before touching any solution.
func runCompletion(ctx context.Context, store completionStore, problemID, solutionID primitive.ObjectID) error {
	matched, err := store.MarkProblemResolved(ctx, problemID, solutionID)
	if err != nil {
		return err
	}
	if !matched {
		return errAlreadyCompleted
	}
	if err := store.MarkSolutionImplemented(ctx, solutionID); err != nil {
		return err
	}
	return store.ApproveSiblings(ctx, problemID, solutionID)
}

type mongoCompletionStore struct {
	problems  *mongo.Collection
	solutions *mongo.Collection
}

func (s mongoCompletionStore) MarkProblemResolved(ctx context.Context, problemID, solutionID primitive.ObjectID) (bool, error) {
	result, err := s.problems.UpdateOne(ctx,
		bson.M{"_id": problemID, "isCompleted": false},
		bson.M{"$set": bson.M{
			"isCompleted":      true,
			"status":           models.StatusResolved,
			"selectedSolution": solutionID,
			"updatedAt":        time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (s mongoCompletionStore) MarkSolutionImplemented(ctx context.Context, solutionID primitive.ObjectID) error {
	_, err := s.solutions.UpdateOne(ctx,
		bson.M{"_id": solutionID},
		bson.M{"$set": bson.M{
			"isSelected": true,
			"status":     models.SolutionImplemented,
			"updatedAt":  time.Now(),
		}})
	return err
}

func (s mongoCompletionStore) ApproveSiblings(ctx context.Context, problemID, winnerID primitive.ObjectID) error {
	_, err := s.solutions.UpdateMany(ctx,
		bson.M{"problem": problemID, "_id": bson.M{"$ne": winnerID}},
		bson.M{"$set": bson.M{
			"status":    models.SolutionApproved,
			"updatedAt": time.Now(),
		}})
	return err
}

// likeStore is the slice of the store the like toggle reads and
// writes.
type likeStore interface {
	SolutionExists(ctx context.Context, solutionID primitive.ObjectID) (bool, error)
	HasLike(ctx context.Context, userID, solutionID primitive.ObjectID) (bool, error)
	AddLike(ctx context.Context, userID, solutionID primitive.ObjectID) error
	RemoveLike(ctx context.Context, userID, solutionID primitive.ObjectID) error
	CountLikes(ctx context.Context, solutionID primitive.ObjectID) (int64, error)
}

// toggleLike flips the user's like on a solution and returns the
// resulting count and like state.
func toggleLike(ctx context.Context, store likeStore, userID, solutionID primitive.ObjectID) (int64, bool, error) {
	liked, err := store.HasLike(ctx, userID, solutionID)
	if err != nil {
		return 0, false, err
	}
	if liked {
		if err := store.RemoveLike(ctx, userID, solutionID); err != nil {
			return 0, false, err
		}
	} else {
		if err := store.AddLike(ctx, userID, solutionID); err != nil {
			return 0, false, err
		}
	}
	count, err := store.CountLikes(ctx, solutionID)
	if err != nil {
		return 0, false, err
	}
	return count, !liked, nil
}

// likeStatus reports whether the user has liked the solution,
// distinguishing a missing solution from an un-liked one.
func likeStatus(ctx context.Context, store likeStore, userID, solutionID primitive.ObjectID) (bool, error) {
	exists, err := store.SolutionExists(ctx, solutionID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, errSolutionNotFound
	}
	return store.HasLike(ctx, userID, solutionID)
}

type mongoLikeStore struct {
	solutions *mongo.Collection
	likes     *mongo.Collection
}

func (s mongoLikeStore) SolutionExists(ctx context.Context, solutionID primitive.ObjectID) (bool, error) {
	count, err := s.solutions.CountDocuments(ctx, bson.M{"_id": solutionID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s mongoLikeStore) HasLike(ctx context.Context, userID, solutionID primitive.ObjectID) (bool, error) {
	count, err := s.likes.CountDocuments(ctx, bson.M{
		"solution": solutionID,
		"user":     userID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s mongoLikeStore) AddLike(ctx context.Context, userID, solutionID primitive.ObjectID) error {
	like := models.Like{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Solution:  solutionID,
		CreatedAt: time.Now(),
	}
	// The unique (user, solution) index is the backstop against a
	// concurrent double-like; callers map the duplicate-key error.
	_, err := s.likes.InsertOne(ctx, like)
	return err
}

func (s mongoLikeStore) RemoveLike(ctx context.Context, userID, solutionID primitive.ObjectID) error {
	_, err := s.likes.DeleteOne(ctx, bson.M{
		"solution": solutionID,
		"user":     userID,
	})
	return err
}

func (s mongoLikeStore) CountLikes(ctx context.Context, solutionID primitive.ObjectID) (int64, error) {
	return s.likes.CountDocuments(ctx, bson.M{"solution": solutionID})
}
