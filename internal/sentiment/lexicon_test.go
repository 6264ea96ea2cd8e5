package sentiment

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(text string) float64 {
	return Default().Score(context.Background(), text)
}

func TestDefault_LoadsEmbeddedLexicon(t *testing.T) {
	base, err := NewLexicon(strings.NewReader(""))
	require.NoError(t, err)

	assert.Greater(t, base.Size(), 7000)
	assert.Greater(t, Default().Size(), base.Size())
	assert.Same(t, Default(), Default())
}

func TestScore_EmptyAndNeutral(t *testing.T) {
	assert.Zero(t, score(""))
	assert.Zero(t, score("   \t\n"))
	assert.Zero(t, score("The committee met on Tuesday"))
}

func TestScore_Polarity(t *testing.T) {
	assert.Greater(t, score("A great thing happened"), 0.0)
	assert.Less(t, score("Deadly storm leaves town in chaos"), 0.0)
}

func TestScore_HeadlineSign(t *testing.T) {
	negative := []string{
		"Gunman slaughters dozens in horrific massacre",
		"Terrorist bombing kills victims at crowded market",
		"Deadly earthquake leaves thousands wounded",
		"Factory collapse: workers murdered, families grieve",
	}
	for _, text := range negative {
		assert.Less(t, score(text), 0.0, text)
	}

	positive := []string{
		"Economy booms as markets soar to record highs",
		"Brave firefighters rescue family, neighbours celebrate heroes",
		"Scientists announce breakthrough cure, patients celebrate",
		"Peace agreement ends war as ceasefire brings victory for diplomacy",
	}
	for _, text := range positive {
		assert.Greater(t, score(text), 0.0, text)
	}
}

func TestScore_Range(t *testing.T) {
	texts := []string{
		"great great great wonderful amazing best victory triumph!!!!!!!!",
		"WAR MURDER TERROR CATASTROPHE TRAGEDY KILLED!!!!",
		"Markets RALLY as inflation fears fade, but layoffs loom???",
		strings.Repeat("horrible ", 200),
	}
	for _, text := range texts {
		s := score(text)
		assert.GreaterOrEqual(t, s, -1.0, text)
		assert.LessOrEqual(t, s, 1.0, text)
	}
}

func TestScore_Deterministic(t *testing.T) {
	text := "Stocks surge after surprise rate cut"
	assert.Equal(t, score(text), score(text))
}

func TestScore_Negation(t *testing.T) {
	assert.Greater(t, score("the plan is good"), 0.0)
	assert.Less(t, score("the plan is not good"), 0.0)
	assert.Less(t, score("the plan isn't good"), 0.0)
}

func TestScore_Boosters(t *testing.T) {
	assert.Greater(t, score("a very good result"), score("a good result"))
	assert.Less(t, score("a slightly good result"), score("a good result"))
}

func TestScore_CapsEmphasis(t *testing.T) {
	assert.Greater(t, score("This is GREAT news"), score("This is great news"))
}

func TestScore_Exclamation(t *testing.T) {
	assert.Greater(t, score("great news!"), score("great news"))
	assert.Equal(t, score("great news!!!!"), score("great news!!!!!!!"))
}

func TestScore_ButContrast(t *testing.T) {
	assert.Less(t, score("good but terrible"), score("good and terrible"))
}

func TestScore_ConcurrentUse(t *testing.T) {
	const text = "Brave rescue ends tragic week"
	want := score(text)

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Go(func() {
			results[i] = Default().Score(context.Background(), text)
		})
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestNewLexicon(t *testing.T) {
	base, err := NewLexicon(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, base.Score(context.Background(), "zorbly day"))

	lex, err := NewLexicon(strings.NewReader("# comment\n\nzorbly\t2.0\nGlumph -1.5\n"))
	require.NoError(t, err)

	assert.Equal(t, base.Size()+2, lex.Size())
	assert.Greater(t, lex.Score(context.Background(), "zorbly day"), 0.0)
	assert.Less(t, lex.Score(context.Background(), "glumph day"), 0.0)
}

func TestNewLexicon_Invalid(t *testing.T) {
	_, err := NewLexicon(strings.NewReader("sunny\n"))
	assert.ErrorContains(t, err, "line 1")

	_, err = NewLexicon(strings.NewReader("sunny\tbright\n"))
	assert.ErrorContains(t, err, "invalid valence")
}
