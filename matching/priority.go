package matching

// Priority levels
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// SimilarProblemRadiusMeters bounds the similar-problem count that
// drives priority classification.
const SimilarProblemRadiusMeters = 100.0

// Classification is the outcome of priority scoring for a new problem.
type Classification struct {
	Priority  int `json:"priority"`
	Frequency int `json:"frequency"`
}

// Classify derives a problem's priority from the number of similar
// unresolved problems already reported nearby. Frequency counts the
// problem being classified itself, so it is never below 1: a first
// report classifies as medium, and the low branch cannot fire until
// product clarifies the low-priority rule. The branch stays so a
// future rule change lands in one place.
func Classify(similarCount int64) Classification {
	frequency := int(similarCount) + 1

	priority := PriorityMedium
	switch {
	case frequency >= 3:
		priority = PriorityHigh
	case frequency == 0:
		// Unreachable while frequency = count+1; see doc comment.
		priority = PriorityLow
	}

	return Classification{Priority: priority, Frequency: frequency}
}

// RadiusForPriority returns the candidate search radius in meters for
// resource matching. Higher priority widens the pool.
func RadiusForPriority(priority int) float64 {
	switch priority {
	case PriorityHigh:
		return 10000
	case PriorityMedium:
		return 5000
	default:
		return 3000
	}
}
