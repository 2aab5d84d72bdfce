package matching

import (
	"math"
	"sort"

	"civicmatch-be/models"
)

// MaxCandidates caps how many resources the locator may return per match.
const MaxCandidates = 10

// EarthRadiusMeters is the spherical-earth radius used for all
// distance math, including converting meters to radians for
// $centerSphere queries.
const EarthRadiusMeters = 6371000.0

// Score is the per-part breakdown of a resource's relevance to a
// problem. Total is always DistanceScore+CategoryScore+SupportScore and
// lies in [0, 100].
type Score struct {
	Total          int     `json:"total"`
	DistanceScore  int     `json:"distanceScore"`
	CategoryScore  int     `json:"categoryScore"`
	SupportScore   int     `json:"supportScore"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// Match pairs a candidate resource with its score.
type Match struct {
	models.Resource
	MatchScore   int   `json:"matchScore"`
	MatchDetails Score `json:"matchDetails"`
}

// Haversine returns the great-circle distance in meters between two
// points on a spherical earth.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ScoreResource computes the composite relevance of a resource to a
// problem located at problemCoords ([longitude, latitude]), with
// matchCategories the expanded category set.
//
// Distance contributes up to 50 points, fading to zero in 100m buckets
// beyond 5km. Category overlap contributes 10 points per match up to
// 30; support overlap 5 points per match up to 20.
func ScoreResource(problemCoords []float64, matchCategories []string, resource models.Resource) Score {
	distanceMeters := Haversine(
		problemCoords[1], problemCoords[0],
		resource.Location.Coordinates[1], resource.Location.Coordinates[0],
	)
	distanceScore := 50 - int(math.Floor(distanceMeters/100))
	if distanceScore < 0 {
		distanceScore = 0
	}

	categoryScore := 10 * countOverlap(resource.Category, matchCategories)
	if categoryScore > 30 {
		categoryScore = 30
	}

	supportScore := 5 * countOverlap(resource.AvailableSupport, matchCategories)
	if supportScore > 20 {
		supportScore = 20
	}

	return Score{
		Total:          distanceScore + categoryScore + supportScore,
		DistanceScore:  distanceScore,
		CategoryScore:  categoryScore,
		SupportScore:   supportScore,
		DistanceMeters: distanceMeters,
	}
}

// Rank orders matches by descending score. The sort is stable, so
// equal-score candidates keep their retrieval order (nearest first).
func Rank(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
}

func countOverlap(values, matchCategories []string) int {
	set := make(map[string]struct{}, len(matchCategories))
	for _, c := range matchCategories {
		set[c] = struct{}{}
	}
	count := 0
	for _, v := range values {
		if _, ok := set[v]; ok {
			count++
		}
	}
	return count
}
