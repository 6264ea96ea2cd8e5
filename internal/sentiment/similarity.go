package sentiment

// StubSimilarity is what AlwaysSimilar reports for every pair of texts.
const StubSimilarity = 1.0

// AlwaysSimilar is a placeholder semantic matcher. No semantic model is
// wired yet, so every rewrite is treated as meaning the same as its headline.
type AlwaysSimilar struct{}

func (AlwaysSimilar) Similarity(_, _ string) float64 {
	return StubSimilarity
}
