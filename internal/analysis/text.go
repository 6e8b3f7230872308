package analysis

import "strings"

const (
	// Descriptions below this token count are weak evidence regardless of
	// content and score a fixed very-low value.
	minDescriptionTokens = 5

	shortTextScore    = 0.1
	textFallbackScore = 0.3
)

// TextScorer turns a report description into a bounded trust signal. The
// classifier is injected at construction and reused across requests; the
// scorer itself never returns an error.
type TextScorer struct {
	classifier SentimentClassifier
}

// NewTextScorer creates a text scorer backed by the given classifier.
func NewTextScorer(classifier SentimentClassifier) *TextScorer {
	return &TextScorer{classifier: classifier}
}

// Score maps a description to [0,1]. NEGATIVE sentiment reads as distress and
// therefore stronger evidence of a genuine hazard; POSITIVE sentiment is
// evidence against one. Classifier failures substitute the fallback constant.
func (ts *TextScorer) Score(description string) SignalScore {
	if len(strings.Fields(description)) < minDescriptionTokens {
		return SignalScore{Value: shortTextScore}
	}

	sentiment, err := ts.classifier.Classify(description)
	if err != nil {
		return SignalScore{Value: textFallbackScore, Fallback: true}
	}

	value := sentiment.Confidence
	if sentiment.Label == LabelPositive {
		value = 1.0 - sentiment.Confidence
	}

	return SignalScore{Value: clip(value, 0, 1)}
}
