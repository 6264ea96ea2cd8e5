package sentiment

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/pscheid92/headlinepulse/internal/metrics"
)

// Prediction is a pretrained classifier's verdict for one text.
type Prediction struct {
	Label      string
	Confidence float64
}

// Classifier is a pretrained binary sentiment model.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}

// ModelScorer scores text with a Classifier and falls back to the lexicon
// whenever the model fails or returns something unusable.
type ModelScorer struct {
	classifier Classifier
	fallback   *Lexicon
}

func NewModelScorer(classifier Classifier, fallback *Lexicon) *ModelScorer {
	if fallback == nil {
		fallback = Default()
	}
	return &ModelScorer{classifier: classifier, fallback: fallback}
}

// Score maps a NEGATIVE prediction to -confidence and anything else to
// +confidence.
func (s *ModelScorer) Score(ctx context.Context, text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	start := time.Now()
	prediction, err := s.classifier.Classify(ctx, text)
	metrics.SentimentScoreDuration.WithLabelValues("model").Observe(time.Since(start).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "Sentiment model failed, using lexicon", "error", err)
		metrics.SentimentFallbacksTotal.WithLabelValues("error").Inc()
		return s.fallback.Score(ctx, text)
	}

	score, ok := predictionScore(prediction)
	if !ok {
		slog.WarnContext(ctx, "Sentiment model returned unusable prediction, using lexicon",
			"label", prediction.Label,
			"confidence", prediction.Confidence)
		metrics.SentimentFallbacksTotal.WithLabelValues("invalid").Inc()
		return s.fallback.Score(ctx, text)
	}
	return score
}

func predictionScore(p Prediction) (float64, bool) {
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return 0, false
	}
	switch strings.ToUpper(p.Label) {
	case "NEGATIVE", "NEG", "LABEL_0":
		return -p.Confidence, true
	case "POSITIVE", "POS", "LABEL_1":
		return p.Confidence, true
	default:
		return 0, false
	}
}
