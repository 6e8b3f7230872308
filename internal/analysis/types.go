package analysis

// SignalScore is the output of a single signal scorer. Fallback is true when
// the scorer could not compute a real value and substituted its documented
// low-confidence constant instead.
type SignalScore struct {
	Value    float64 `json:"value"`
	Fallback bool    `json:"fallback"`
}

// SentimentLabel is the binary classification label for report text.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNegative SentimentLabel = "NEGATIVE"
)

// Sentiment is the result of a binary sentiment classification.
type Sentiment struct {
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
}

// SentimentClassifier is the narrow contract behind which any text model can
// sit. Confidence is in [0,1].
type SentimentClassifier interface {
	Classify(text string) (Sentiment, error)
}

// TrustResult carries the aggregated trust score with its component signals.
type TrustResult struct {
	TrustScore float64     `json:"trust_score"`
	Text       SignalScore `json:"text"`
	Image      SignalScore `json:"image"`
}
