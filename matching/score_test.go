package matching

import (
	"math"
	"testing"

	"civicmatch-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resourceAt(lng, lat float64, categories, support []string) models.Resource {
	return models.Resource{
		Category:         categories,
		AvailableSupport: support,
		Location: models.GeoPoint{
			Type:        "Point",
			Coordinates: []float64{lng, lat},
		},
	}
}

func TestHaversine(t *testing.T) {
	assert.Zero(t, Haversine(37.50, 127.00, 37.50, 127.00))

	// One degree of latitude on a spherical earth is R*pi/180 meters.
	oneDegree := EarthRadiusMeters * math.Pi / 180
	assert.InDelta(t, oneDegree, Haversine(0, 0, 1, 0), 0.001)

	// Symmetric in its endpoints.
	d1 := Haversine(37.50, 127.00, 37.51, 127.02)
	d2 := Haversine(37.51, 127.02, 37.50, 127.00)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestScoreResourcePerfectMatch(t *testing.T) {
	// Resource at the exact problem coordinates with 3 overlapping
	// categories and 4 overlapping support tags scores the full 100.
	problemCoords := []float64{127.00, 37.50}
	matchCategories := Expand(models.CategoryEnvironment)

	resource := resourceAt(127.00, 37.50,
		[]string{"환경", "청소", "재활용"},
		[]string{"환경", "청소", "재활용", "쓰레기"},
	)

	score := ScoreResource(problemCoords, matchCategories, resource)

	assert.Equal(t, 50, score.DistanceScore)
	assert.Equal(t, 30, score.CategoryScore)
	assert.Equal(t, 20, score.SupportScore)
	assert.Equal(t, 100, score.Total)
}

func TestScoreResourceDistanceBuckets(t *testing.T) {
	// Pure latitude offsets give exact haversine distances:
	// deg * R * pi / 180 meters.
	tests := []struct {
		name         string
		latOffset    float64
		wantDistance int
		approxMeters float64
	}{
		{"zero distance", 0, 50, 0},
		{"about 111m", 0.001, 49, 111.19},
		{"about 1.1km", 0.01, 39, 1111.95},
		{"beyond 5km", 0.05, 0, 5559.75},
		{"far beyond 5km", 0.5, 0, 55597.46},
	}

	problemCoords := []float64{127.00, 37.50}
	matchCategories := Expand(models.CategoryEnvironment)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := resourceAt(127.00, 37.50+tt.latOffset, []string{"환경"}, nil)
			score := ScoreResource(problemCoords, matchCategories, resource)
			assert.Equal(t, tt.wantDistance, score.DistanceScore)
			assert.InDelta(t, tt.approxMeters, score.DistanceMeters, 0.5)
		})
	}
}

func TestScoreResourceDistanceMonotonic(t *testing.T) {
	problemCoords := []float64{127.00, 37.50}
	matchCategories := Expand(models.CategoryTraffic)

	prev := 51
	for _, offset := range []float64{0, 0.001, 0.005, 0.01, 0.02, 0.03, 0.05, 0.1} {
		resource := resourceAt(127.00, 37.50+offset, nil, nil)
		score := ScoreResource(problemCoords, matchCategories, resource)
		assert.LessOrEqual(t, score.DistanceScore, prev,
			"distance score must not increase with distance")
		prev = score.DistanceScore
	}
}

func TestScoreResourceSaturation(t *testing.T) {
	problemCoords := []float64{127.00, 37.50}
	matchCategories := Expand(models.CategoryEnvironment)

	tests := []struct {
		name         string
		categories   []string
		support      []string
		wantCategory int
		wantSupport  int
	}{
		{"no overlap", []string{"교통"}, []string{"도로"}, 0, 0},
		{"one each", []string{"환경"}, []string{"청소"}, 10, 5},
		{"two categories", []string{"환경", "청소"}, nil, 20, 0},
		{"category saturation at three", []string{"환경", "청소", "재활용"}, nil, 30, 0},
		{"category capped beyond three", []string{"환경", "청소", "재활용", "쓰레기", "공원"}, nil, 30, 0},
		{"support saturation at four", nil, []string{"환경", "청소", "재활용", "쓰레기"}, 0, 20},
		{"support capped beyond four", nil, []string{"환경", "청소", "재활용", "쓰레기", "공원", "녹지"}, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := resourceAt(127.00, 37.50, tt.categories, tt.support)
			score := ScoreResource(problemCoords, matchCategories, resource)
			assert.Equal(t, tt.wantCategory, score.CategoryScore)
			assert.Equal(t, tt.wantSupport, score.SupportScore)
		})
	}
}

func TestScoreResourceBoundsAndAdditivity(t *testing.T) {
	problemCoords := []float64{127.00, 37.50}

	cases := []models.Resource{
		resourceAt(127.00, 37.50, []string{"환경", "청소", "재활용", "쓰레기"}, []string{"환경", "청소", "재활용", "쓰레기", "공원"}),
		resourceAt(127.01, 37.51, []string{"청소"}, []string{"재활용"}),
		resourceAt(128.00, 38.50, nil, nil),
		resourceAt(127.00, 37.50, nil, []string{"무관한지원"}),
	}

	for _, category := range models.ValidCategories {
		matchCategories := Expand(category)
		for _, resource := range cases {
			score := ScoreResource(problemCoords, matchCategories, resource)
			assert.GreaterOrEqual(t, score.Total, 0)
			assert.LessOrEqual(t, score.Total, 100)
			assert.Equal(t, score.Total, score.DistanceScore+score.CategoryScore+score.SupportScore)
		}
	}
}

func TestRankDescendingAndStable(t *testing.T) {
	idOf := func(name string) models.Resource {
		return models.Resource{Name: name}
	}

	matches := []Match{
		{Resource: idOf("low"), MatchScore: 10},
		{Resource: idOf("tied-first"), MatchScore: 60},
		{Resource: idOf("high"), MatchScore: 95},
		{Resource: idOf("tied-second"), MatchScore: 60},
		{Resource: idOf("tied-third"), MatchScore: 60},
	}

	Rank(matches)

	require.Len(t, matches, 5)
	assert.Equal(t, "high", matches[0].Name)
	// Equal scores keep retrieval order.
	assert.Equal(t, "tied-first", matches[1].Name)
	assert.Equal(t, "tied-second", matches[2].Name)
	assert.Equal(t, "tied-third", matches[3].Name)
	assert.Equal(t, "low", matches[4].Name)
}
