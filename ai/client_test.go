package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedSolution(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "plain JSON",
			content: `{"title": "Fix lighting", "description": "Install street lamps", "resources": "lamps", "budget": "500000", "timeline": "2 weeks"}`,
		},
		{
			name: "fenced JSON",
			content: "```json\n" +
				`{"title": "Fix lighting", "description": "Install street lamps", "resources": "", "budget": "", "timeline": ""}` +
				"\n```",
		},
		{
			name:    "JSON wrapped in prose",
			content: `Here is my proposal: {"title": "Fix lighting", "description": "Install street lamps"} Hope this helps!`,
		},
		{
			name:    "no JSON at all",
			content: "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			content: `{"title": "Fix lighting", "description": `,
			wantErr: true,
		},
		{
			name:    "missing required fields",
			content: `{"budget": "100", "timeline": "1 week"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solution, err := ParseGeneratedSolution(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Fix lighting", solution.Title)
			assert.Equal(t, "Install street lamps", solution.Description)
		})
	}
}
