package analysis

// Analyzer bundles the signal scorers and the trust aggregation into one
// explicit dependency. It is constructed once at startup and reused across
// requests; it holds no per-request state.
type Analyzer struct {
	text  *TextScorer
	image *ImageScorer
}

// NewAnalyzer creates an analyzer around the given sentiment classifier.
func NewAnalyzer(classifier SentimentClassifier) *Analyzer {
	return &Analyzer{
		text:  NewTextScorer(classifier),
		image: NewImageScorer(),
	}
}

// AnalyzeReport runs both scorers over one report's inputs and combines them.
// Per-image scores are averaged arithmetically; an empty image list scores 0.0
// without counting as a fallback.
func (a *Analyzer) AnalyzeReport(description string, images [][]byte) TrustResult {
	textScore := a.text.Score(description)

	imageScore := SignalScore{Value: 0.0}
	if len(images) > 0 {
		sum := 0.0
		fallback := false
		for _, img := range images {
			s := a.image.Score(img)
			sum += s.Value
			fallback = fallback || s.Fallback
		}
		imageScore = SignalScore{Value: sum / float64(len(images)), Fallback: fallback}
	}

	return TrustResult{
		TrustScore: CombineTrust(textScore.Value, imageScore.Value),
		Text:       textScore,
		Image:      imageScore,
	}
}
