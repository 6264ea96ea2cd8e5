package domain

import "context"

// SentimentScorer maps text to a polarity in [-1, 1]. It never fails;
// implementations degrade to a fallback score instead.
type SentimentScorer interface {
	Score(ctx context.Context, text string) float64
}

// SemanticMatcher rates how close two texts are in meaning, in [0, 1].
type SemanticMatcher interface {
	Similarity(a, b string) float64
}
