package sentiment

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonreiter/govader"
	"github.com/pscheid92/headlinepulse/internal/metrics"
)

// newsLexicon holds headline vocabulary the stock VADER word list lacks.
//
//go:embed lexicon.tsv
var newsLexicon string

// Lexicon scores text with VADER: word valences are adjusted for boosters,
// negation, capitalisation, "but" contrast and punctuation, then normalised
// into [-1, 1].
//
// A Lexicon is immutable after construction and safe for concurrent use.
type Lexicon struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the process-wide scorer, building the VADER analyzer and
// merging the embedded news vocabulary on first use.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := NewLexicon(strings.NewReader(newsLexicon))
		if err != nil {
			panic(fmt.Sprintf("embedded sentiment lexicon is invalid: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// NewLexicon builds a VADER analyzer and layers "token<TAB>valence" lines
// from r over its word list. Blank lines and lines starting with '#' are
// ignored.
func NewLexicon(r io.Reader) (*Lexicon, error) {
	extra, err := parseValences(r)
	if err != nil {
		return nil, err
	}

	analyzer := govader.NewSentimentIntensityAnalyzer()
	for token, v := range extra {
		analyzer.Lexicon[token] = v
	}
	return &Lexicon{analyzer: analyzer}, nil
}

func parseValences(r io.Reader) (map[string]float64, error) {
	valence := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected token and valence", line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid valence %q: %w", line, fields[1], err)
		}
		valence[strings.ToLower(fields[0])] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return valence, nil
}

// Size returns the number of scored tokens.
func (l *Lexicon) Size() int {
	return len(l.analyzer.Lexicon)
}

// Score returns the compound polarity of text in [-1, 1]. Empty or
// unrecognised text scores 0.
func (l *Lexicon) Score(_ context.Context, text string) float64 {
	start := time.Now()
	defer func() {
		metrics.SentimentScoreDuration.WithLabelValues("lexicon").Observe(time.Since(start).Seconds())
	}()

	// VADER splits on single spaces only.
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return 0
	}
	return max(-1, min(1, l.analyzer.PolarityScores(text).Compound))
}
