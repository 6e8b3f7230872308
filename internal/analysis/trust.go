package analysis

import "math"

// Fixed linear weights. Text dominates because it is always present; images
// are optional and noisier. The weights sum to 1.0, so no clamping is needed
// on already-bounded inputs.
const (
	TextWeight  = 0.65
	ImageWeight = 0.35
)

// CombineTrust aggregates the two signal scores into the final trust score,
// rounded to 2 decimal places. Deterministic and side-effect-free.
func CombineTrust(textScore, imageScore float64) float64 {
	return round2(TextWeight*textScore + ImageWeight*imageScore)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
