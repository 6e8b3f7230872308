package analysis

import (
	"math"
	"strings"
	"unicode"
)

var (
	// Distress vocabulary: presence reads as NEGATIVE sentiment, which for
	// hazard reports is the stronger signal.
	negativeWords = []string{
		"flood", "flooding", "flooded", "fire", "smoke", "collapse", "collapsed",
		"damage", "damaged", "danger", "dangerous", "trapped", "stuck", "injured",
		"emergency", "storm", "cyclone", "landslide", "blocked", "broken", "burst",
		"overflow", "overflowing", "stranded", "submerged", "outage", "accident",
		"terrible", "awful", "horrible", "bad", "worst", "scary", "panic", "help",
	}

	positiveWords = []string{
		"safe", "clear", "cleared", "calm", "fine", "good", "great", "resolved",
		"restored", "fixed", "normal", "open", "reopened", "dry", "passable",
		"wonderful", "beautiful", "pleasant", "lovely", "enjoying",
	}

	// Intensifiers amplify whichever sentiment dominates.
	intensifiers = []string{
		"very", "extremely", "severely", "severe", "heavy", "heavily", "massive",
		"huge", "completely", "totally", "really", "so",
	}

	negations = []string{
		"not", "no", "never", "cannot", "can't", "won't", "don't", "doesn't",
		"didn't", "isn't", "aren't", "wasn't", "weren't",
	}
)

// LexiconClassifier is a deterministic word-list sentiment classifier. It is
// the default stand-in for a model-backed classifier and honours the same
// contract: a binary label plus a confidence in [0,1].
type LexiconClassifier struct{}

// NewLexiconClassifier returns the default classifier.
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{}
}

// Classify scores text against the distress and calm lexicons. Text that
// matches neither lexicon is reported as POSITIVE at confidence 0.5, which the
// text scorer maps to a neutral 0.5 signal.
func (lc *LexiconClassifier) Classify(text string) (Sentiment, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	negativeScore := 0
	positiveScore := 0
	intensifierCount := 0
	negationCount := 0

	for _, word := range words {
		switch {
		case containsWord(negativeWords, word):
			negativeScore++
		case containsWord(positiveWords, word):
			positiveScore++
		case containsWord(intensifiers, word):
			intensifierCount++
		case containsWord(negations, word):
			negationCount++
		}
	}

	balance := float64(negativeScore - positiveScore)

	// An odd number of negations flips the dominant sentiment.
	if negationCount%2 == 1 {
		balance = -balance
	}

	if balance == 0 {
		return Sentiment{Label: LabelPositive, Confidence: 0.5}, nil
	}

	dominant := math.Abs(balance)
	strength := (dominant + 0.5*float64(intensifierCount)) / 4.0
	confidence := 0.5 + 0.45*math.Min(1, strength)

	label := LabelNegative
	if balance < 0 {
		label = LabelPositive
	}

	return Sentiment{Label: label, Confidence: confidence}, nil
}

func containsWord(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}
