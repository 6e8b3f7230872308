package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineTrust(t *testing.T) {
	tests := []struct {
		name       string
		textScore  float64
		imageScore float64
		expected   float64
	}{
		{
			name:       "both signals at maximum",
			textScore:  1.0,
			imageScore: 1.0,
			expected:   1.0,
		},
		{
			name:       "both signals at minimum",
			textScore:  0.0,
			imageScore: 0.0,
			expected:   0.0,
		},
		{
			name:       "text only",
			textScore:  1.0,
			imageScore: 0.0,
			expected:   0.65,
		},
		{
			name:       "image only",
			textScore:  0.0,
			imageScore: 1.0,
			expected:   0.35,
		},
		{
			name:       "rounds to two decimals",
			textScore:  0.66875,
			imageScore: 0.0,
			expected:   0.43,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CombineTrust(tt.textScore, tt.imageScore))
		})
	}
}

func TestCombineTrustWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, TextWeight+ImageWeight, 1e-10, "weights should sum to 1.0")
}

func TestCombineTrustBounds(t *testing.T) {
	inputs := []float64{0.0, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0}

	for _, text := range inputs {
		for _, img := range inputs {
			result := CombineTrust(text, img)
			assert.GreaterOrEqual(t, result, 0.0)
			assert.LessOrEqual(t, result, 1.0)
		}
	}
}

func TestCombineTrustMonotonic(t *testing.T) {
	steps := []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}

	// Non-decreasing in the text signal with image fixed
	for _, img := range steps {
		prev := -1.0
		for _, text := range steps {
			result := CombineTrust(text, img)
			assert.GreaterOrEqual(t, result, prev,
				"combine(%f, %f) decreased", text, img)
			prev = result
		}
	}

	// Non-decreasing in the image signal with text fixed
	for _, text := range steps {
		prev := -1.0
		for _, img := range steps {
			result := CombineTrust(text, img)
			assert.GreaterOrEqual(t, result, prev,
				"combine(%f, %f) decreased", text, img)
			prev = result
		}
	}
}
