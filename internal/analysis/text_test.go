package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// failingClassifier always errors, exercising the fallback path.
type failingClassifier struct{}

func (failingClassifier) Classify(string) (Sentiment, error) {
	return Sentiment{}, errors.New("model unavailable")
}

// fixedClassifier returns a canned sentiment.
type fixedClassifier struct {
	sentiment Sentiment
}

func (f fixedClassifier) Classify(string) (Sentiment, error) {
	return f.sentiment, nil
}

func TestTextScorerShortText(t *testing.T) {
	scorer := NewTextScorer(NewLexiconClassifier())

	tests := []struct {
		name        string
		description string
	}{
		{name: "empty string", description: ""},
		{name: "whitespace only", description: "   \t  "},
		{name: "one word", description: "flood"},
		{name: "four words", description: "road flooded near school"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score(tt.description)
			assert.Equal(t, 0.1, result.Value)
			assert.False(t, result.Fallback)
		})
	}
}

func TestTextScorerSentimentMapping(t *testing.T) {
	tests := []struct {
		name      string
		sentiment Sentiment
		expected  float64
	}{
		{
			name:      "negative sentiment passes confidence through",
			sentiment: Sentiment{Label: LabelNegative, Confidence: 0.9},
			expected:  0.9,
		},
		{
			name:      "positive sentiment inverts confidence",
			sentiment: Sentiment{Label: LabelPositive, Confidence: 0.9},
			expected:  0.09999999999999998,
		},
		{
			name:      "neutral positive maps to midpoint",
			sentiment: Sentiment{Label: LabelPositive, Confidence: 0.5},
			expected:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewTextScorer(fixedClassifier{sentiment: tt.sentiment})
			result := scorer.Score("one two three four five six")
			assert.InDelta(t, tt.expected, result.Value, 1e-12)
			assert.False(t, result.Fallback)
		})
	}
}

func TestTextScorerClassifierFailure(t *testing.T) {
	scorer := NewTextScorer(failingClassifier{})

	result := scorer.Score("a description long enough to reach the classifier")

	assert.Equal(t, 0.3, result.Value)
	assert.True(t, result.Fallback)
}

func TestTextScorerDistressText(t *testing.T) {
	scorer := NewTextScorer(NewLexiconClassifier())

	result := scorer.Score("Heavy flooding on Marina Beach Road, water is two feet high")

	// One distress hit plus one intensifier from the lexicon classifier.
	assert.InDelta(t, 0.66875, result.Value, 1e-12)
	assert.False(t, result.Fallback)
}

func TestTextScorerBounds(t *testing.T) {
	scorer := NewTextScorer(NewLexiconClassifier())

	descriptions := []string{
		"Heavy flooding on Marina Beach Road, water is two feet high",
		"The beach is beautiful and calm today, enjoying the pleasant weather",
		"Fire and smoke near the old market, people trapped inside the building",
		"Nothing much happening around here this afternoon it seems",
		"The road is not safe anymore tonight after the storm",
	}

	for _, desc := range descriptions {
		result := scorer.Score(desc)
		assert.GreaterOrEqual(t, result.Value, 0.0, "description: %s", desc)
		assert.LessOrEqual(t, result.Value, 1.0, "description: %s", desc)
		assert.False(t, result.Fallback, "description: %s", desc)
	}
}
