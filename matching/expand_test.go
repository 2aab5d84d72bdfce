package matching

import (
	"testing"

	"civicmatch-be/models"

	"github.com/stretchr/testify/assert"
)

func TestExpandKnownCategory(t *testing.T) {
	expanded := Expand(models.CategoryEnvironment)

	assert.Contains(t, expanded, "환경")
	assert.Contains(t, expanded, "재활용")
	assert.Contains(t, expanded, "쓰레기")
	assert.NotContains(t, expanded, "교통")

	// Category plus keywords, no duplicate of the category itself.
	seen := make(map[string]int)
	for _, kw := range expanded {
		seen[kw]++
	}
	assert.Equal(t, 1, seen["환경"])
}

func TestExpandAllCategoriesCoverKeywords(t *testing.T) {
	for _, category := range models.ValidCategories {
		expanded := Expand(category)
		assert.Equal(t, string(category), expanded[0],
			"expansion starts with the category itself")
		assert.GreaterOrEqual(t, len(expanded), 5, "category %s", category)
	}
}

func TestExpandUnknownCategory(t *testing.T) {
	expanded := Expand(models.ProblemCategory("기타"))
	assert.Equal(t, []string{"기타"}, expanded)
}
