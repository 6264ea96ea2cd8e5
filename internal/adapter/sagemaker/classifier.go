// Package sagemaker scores headlines with a pretrained sentiment model hosted
// on an AWS SageMaker endpoint.
package sagemaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	"github.com/pscheid92/headlinepulse/internal/sentiment"
	"github.com/sony/gobreaker"
)

const breakerName = "sagemaker"

// InvokeEndpointAPI is the slice of the SageMaker runtime client in use.
type InvokeEndpointAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// Classifier implements sentiment.Classifier. Repeated endpoint failures open
// a circuit breaker so scoring falls back to the lexicon without waiting on
// the network.
type Classifier struct {
	client   InvokeEndpointAPI
	endpoint string
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
}

var _ sentiment.Classifier = (*Classifier)(nil)

func NewClassifier(client InvokeEndpointAPI, endpoint string) *Classifier {
	return &Classifier{
		client:   client,
		endpoint: endpoint,
		timeout:  5 * time.Second,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
				metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			},
		}),
	}
}

type request struct {
	Inputs string `json:"inputs"`
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *Classifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	payload, err := json.Marshal(request{Inputs: text})
	if err != nil {
		return sentiment.Prediction{}, fmt.Errorf("failed to encode request: %w", err)
	}

	out, err := c.cb.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
			EndpointName: aws.String(c.endpoint),
			Body:         payload,
			ContentType:  aws.String("application/json"),
			Accept:       aws.String("application/json"),
		})
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, errors.New("received nil response from endpoint")
		}
		return resp.Body, nil
	})
	if err != nil {
		return sentiment.Prediction{}, fmt.Errorf("failed to invoke endpoint %s: %w", c.endpoint, err)
	}

	return parsePrediction(out.([]byte))
}

// parsePrediction accepts a single {"label","score"} object or the
// Hugging Face list form, taking the top entry.
func parsePrediction(body []byte) (sentiment.Prediction, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return sentiment.Prediction{}, errors.New("empty response body")
	}

	var p prediction
	if strings.HasPrefix(trimmed, "[") {
		var list []prediction
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return sentiment.Prediction{}, fmt.Errorf("unable to parse prediction: %w", err)
		}
		if len(list) == 0 {
			return sentiment.Prediction{}, errors.New("endpoint returned no predictions")
		}
		p = list[0]
		for _, candidate := range list[1:] {
			if candidate.Score > p.Score {
				p = candidate
			}
		}
	} else if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return sentiment.Prediction{}, fmt.Errorf("unable to parse prediction: %w", err)
	}

	if p.Label == "" {
		return sentiment.Prediction{}, fmt.Errorf("prediction without label: %s", trimmed)
	}
	return sentiment.Prediction{Label: p.Label, Confidence: p.Score}, nil
}
