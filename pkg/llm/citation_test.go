package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCitations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		markers  []string
	}{
		{"adjacent markers", "Answer[doc1][doc2].", "Answer.", []string{"[doc1]", "[doc2]"}},
		{"text between markers survives", "A [doc1] and B [doc2] end", "A  and B  end", []string{"[doc1]", "[doc2]"}},
		{"no markers", "plain text", "plain text", nil},
		{"unrelated brackets kept", "see [note] here", "see [note] here", nil},
		{"unterminated marker kept", "broken [doc1 tail", "broken [doc1 tail", nil},
		{"empty", "", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, markers := StripCitations(tc.input)
			assert.Equal(t, tc.expected, out)
			assert.Equal(t, tc.markers, markers)
			assert.NotContains(t, out, "[doc1]")
		})
	}
}

func TestApplyOptions(t *testing.T) {
	opts := Apply(Options{Temperature: 0.7, TopP: 0.95, MaxTokens: 4096, Model: "base"},
		WithTemperature(0.2), WithModel("override"))

	assert.InDelta(t, 0.2, opts.Temperature, 1e-9)
	assert.InDelta(t, 0.95, opts.TopP, 1e-9)
	assert.Equal(t, 4096, opts.MaxTokens)
	assert.Equal(t, "override", opts.Model)
}
