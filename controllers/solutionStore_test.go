package controllers

import (
	"context"
	"testing"

	"civicmatch-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProblemDoc struct {
	status      models.ProblemStatus
	isCompleted bool
	selected    primitive.ObjectID
}

type fakeSolutionDoc struct {
	problem    primitive.ObjectID
	status     models.SolutionStatus
	isSelected bool
}

type fakeCompletionStore struct {
	problems  map[primitive.ObjectID]*fakeProblemDoc
	solutions map[primitive.ObjectID]*fakeSolutionDoc
}

func (s *fakeCompletionStore) MarkProblemResolved(_ context.Context, problemID, solutionID primitive.ObjectID) (bool, error) {
	p, ok := s.problems[problemID]
	if !ok || p.isCompleted {
		return false, nil
	}
	p.isCompleted = true
	p.status = models.StatusResolved
	p.selected = solutionID
	return true, nil
}

func (s *fakeCompletionStore) MarkSolutionImplemented(_ context.Context, solutionID primitive.ObjectID) error {
	sol := s.solutions[solutionID]
	sol.status = models.SolutionImplemented
	sol.isSelected = true
	return nil
}

func (s *fakeCompletionStore) ApproveSiblings(_ context.Context, problemID, winnerID primitive.ObjectID) error {
	for id, sol := range s.solutions {
		if sol.problem == problemID && id != winnerID {
			sol.status = models.SolutionApproved
		}
	}
	return nil
}

func (s *fakeCompletionStore) snapshot() (map[primitive.ObjectID]fakeProblemDoc, map[primitive.ObjectID]fakeSolutionDoc) {
	problems := make(map[primitive.ObjectID]fakeProblemDoc, len(s.problems))
	for id, p := range s.problems {
		problems[id] = *p
	}
	solutions := make(map[primitive.ObjectID]fakeSolutionDoc, len(s.solutions))
	for id, sol := range s.solutions {
		solutions[id] = *sol
	}
	return problems, solutions
}

func newFakeCompletionStore(problemID primitive.ObjectID, solutionIDs ...primitive.ObjectID) *fakeCompletionStore {
	store := &fakeCompletionStore{
		problems:  map[primitive.ObjectID]*fakeProblemDoc{problemID: {status: models.StatusProcessing}},
		solutions: make(map[primitive.ObjectID]*fakeSolutionDoc, len(solutionIDs)),
	}
	for _, id := range solutionIDs {
		store.solutions[id] = &fakeSolutionDoc{problem: problemID, status: models.SolutionProposed}
	}
	return store
}

func TestRunCompletionPostconditions(t *testing.T) {
	problemID := primitive.NewObjectID()
	winner := primitive.NewObjectID()
	siblingA := primitive.NewObjectID()
	siblingB := primitive.NewObjectID()
	store := newFakeCompletionStore(problemID, winner, siblingA, siblingB)

	require.NoError(t, runCompletion(context.Background(), store, problemID, winner))

	problem := store.problems[problemID]
	assert.True(t, problem.isCompleted)
	assert.Equal(t, models.StatusResolved, problem.status)
	assert.Equal(t, winner, problem.selected)

	selectedCount := 0
	for id, sol := range store.solutions {
		if id == winner {
			continue
		}
		assert.Equal(t, models.SolutionApproved, sol.status)
		assert.False(t, sol.isSelected)
	}
	for _, sol := range store.solutions {
		if sol.isSelected {
			selectedCount++
			assert.Equal(t, models.SolutionImplemented, sol.status)
		}
	}
	assert.Equal(t, 1, selectedCount)
}

func TestRunCompletionSecondAttemptFails(t *testing.T) {
	problemID := primitive.NewObjectID()
	winner := primitive.NewObjectID()
	rival := primitive.NewObjectID()
	store := newFakeCompletionStore(problemID, winner, rival)

	require.NoError(t, runCompletion(context.Background(), store, problemID, winner))
	problems, solutions := store.snapshot()

	err := runCompletion(context.Background(), store, problemID, rival)
	require.ErrorIs(t, err, errAlreadyCompleted)

	problemsAfter, solutionsAfter := store.snapshot()
	assert.Equal(t, problems, problemsAfter)
	assert.Equal(t, solutions, solutionsAfter)
	assert.Equal(t, winner, store.problems[problemID].selected)
}

type fakeLikeStore struct {
	solutions map[primitive.ObjectID]bool
	likes     map[[2]primitive.ObjectID]bool
}

func newFakeLikeStore(solutionIDs ...primitive.ObjectID) *fakeLikeStore {
	store := &fakeLikeStore{
		solutions: make(map[primitive.ObjectID]bool, len(solutionIDs)),
		likes:     make(map[[2]primitive.ObjectID]bool),
	}
	for _, id := range solutionIDs {
		store.solutions[id] = true
	}
	return store
}

func (s *fakeLikeStore) SolutionExists(_ context.Context, solutionID primitive.ObjectID) (bool, error) {
	return s.solutions[solutionID], nil
}

func (s *fakeLikeStore) HasLike(_ context.Context, userID, solutionID primitive.ObjectID) (bool, error) {
	return s.likes[[2]primitive.ObjectID{userID, solutionID}], nil
}

func (s *fakeLikeStore) AddLike(_ context.Context, userID, solutionID primitive.ObjectID) error {
	s.likes[[2]primitive.ObjectID{userID, solutionID}] = true
	return nil
}

func (s *fakeLikeStore) RemoveLike(_ context.Context, userID, solutionID primitive.ObjectID) error {
	delete(s.likes, [2]primitive.ObjectID{userID, solutionID})
	return nil
}

func (s *fakeLikeStore) CountLikes(_ context.Context, solutionID primitive.ObjectID) (int64, error) {
	var count int64
	for key, liked := range s.likes {
		if liked && key[1] == solutionID {
			count++
		}
	}
	return count, nil
}

func TestToggleLikeRoundTrip(t *testing.T) {
	solutionID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	otherUser := primitive.NewObjectID()
	store := newFakeLikeStore(solutionID)
	require.NoError(t, store.AddLike(context.Background(), otherUser, solutionID))

	count, liked, err := toggleLike(context.Background(), store, userID, solutionID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(2), count)

	count, liked, err = toggleLike(context.Background(), store, userID, solutionID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(1), count)
}

func TestLikeStatus(t *testing.T) {
	solutionID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	store := newFakeLikeStore(solutionID)

	liked, err := likeStatus(context.Background(), store, userID, solutionID)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, store.AddLike(context.Background(), userID, solutionID))
	liked, err = likeStatus(context.Background(), store, userID, solutionID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestLikeStatusUnknownSolution(t *testing.T) {
	store := newFakeLikeStore()

	_, err := likeStatus(context.Background(), store, primitive.NewObjectID(), primitive.NewObjectID())
	require.ErrorIs(t, err, errSolutionNotFound)
}
