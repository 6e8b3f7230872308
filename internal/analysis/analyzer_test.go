package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeReportNoImages(t *testing.T) {
	analyzer := NewAnalyzer(NewLexiconClassifier())

	result := analyzer.AnalyzeReport(
		"Heavy flooding on Marina Beach Road, water is two feet high", nil)

	// With no images the image signal is 0.0, so the trust score is just the
	// weighted text signal.
	assert.InDelta(t, 0.66875, result.Text.Value, 1e-12)
	assert.Equal(t, 0.0, result.Image.Value)
	assert.False(t, result.Image.Fallback)
	assert.Equal(t, CombineTrust(result.Text.Value, 0.0), result.TrustScore)
	assert.Equal(t, 0.43, result.TrustScore)
}

func TestAnalyzeReportAveragesImages(t *testing.T) {
	analyzer := NewAnalyzer(NewLexiconClassifier())

	sharp := encodePNG(t, 32, 32, func(x, y int) uint8 {
		if (x+y)%2 == 0 {
			return 255
		}
		return 0
	})
	flat := encodePNG(t, 32, 32, func(x, y int) uint8 { return 128 })

	result := analyzer.AnalyzeReport(
		"Heavy flooding on Marina Beach Road, water is two feet high",
		[][]byte{sharp, flat})

	// (1.0 + 0.0) / 2
	assert.Equal(t, 0.5, result.Image.Value)
	assert.False(t, result.Image.Fallback)
	assert.Equal(t, CombineTrust(result.Text.Value, 0.5), result.TrustScore)
}

func TestAnalyzeReportUndecodableImagePenalty(t *testing.T) {
	analyzer := NewAnalyzer(NewLexiconClassifier())

	result := analyzer.AnalyzeReport(
		"Heavy flooding on Marina Beach Road, water is two feet high",
		[][]byte{[]byte("corrupt upload")})

	assert.Equal(t, 0.0, result.Image.Value)
	assert.True(t, result.Image.Fallback)
	assert.Equal(t, CombineTrust(result.Text.Value, 0.0), result.TrustScore)
}

func TestAnalyzeReportDeterministic(t *testing.T) {
	analyzer := NewAnalyzer(NewLexiconClassifier())

	description := "Tree fall blocking the main road after the storm last night"
	first := analyzer.AnalyzeReport(description, nil)
	second := analyzer.AnalyzeReport(description, nil)

	assert.Equal(t, first, second)
}
