package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		similarCount  int64
		wantPriority  int
		wantFrequency int
	}{
		{"no similar problems", 0, PriorityMedium, 1},
		{"one similar problem", 1, PriorityMedium, 2},
		{"two similar problems", 2, PriorityHigh, 3},
		{"many similar problems", 7, PriorityHigh, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.similarCount)
			assert.Equal(t, tt.wantPriority, got.Priority)
			assert.Equal(t, tt.wantFrequency, got.Frequency)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify(2)
	second := Classify(2)
	assert.Equal(t, first, second)
}

func TestRadiusForPriority(t *testing.T) {
	assert.Equal(t, 10000.0, RadiusForPriority(PriorityHigh))
	assert.Equal(t, 5000.0, RadiusForPriority(PriorityMedium))
	assert.Equal(t, 3000.0, RadiusForPriority(PriorityLow))
	// Anything out of range falls back to the narrowest search.
	assert.Equal(t, 3000.0, RadiusForPriority(0))
}

func TestClassifyThenRadius(t *testing.T) {
	// A problem with two unresolved same-category neighbors within
	// 100m is high priority and searches the widest radius.
	classification := Classify(2)
	assert.Equal(t, 3, classification.Frequency)
	assert.Equal(t, PriorityHigh, classification.Priority)
	assert.Equal(t, 10000.0, RadiusForPriority(classification.Priority))
}
