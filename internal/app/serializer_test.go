package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializer_Headline(t *testing.T) {
	f := newFixture(t)
	h := f.headline(t, "A great thing happened", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))

	view, err := f.serializer.Headline(context.Background(), h, HeadlineOptions{})

	require.NoError(t, err)
	assert.Equal(t, h.ID, view.ID)
	assert.Equal(t, "A great thing happened", view.Text)
	assert.Equal(t, h.SentimentScore, view.SentimentScore)
	assert.Equal(t, "2024-03-09", view.Date)
	assert.Equal(t, f.source.ID, view.SourceID)
	assert.Equal(t, "Amazing News", view.Source)
	assert.Equal(t, h.URL, view.URL)
	assert.Nil(t, view.Rewrites)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"rewrites"`)
}

func TestSerializer_HeadlineWithoutRewritesKeepsEmptyList(t *testing.T) {
	f := newFixture(t)
	h := f.headline(t, "A great thing happened", testNow)

	view, err := f.serializer.Headline(context.Background(), h, HeadlineOptions{WithRewrites: true})
	require.NoError(t, err)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rewrites":[]`)
}

func TestSerializer_ViewerFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.headline(t, "A great thing happened", testNow)
	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)
	f.rewrite(t, "alice one", h, alice)
	f.rewrite(t, "bob one", h, bob)
	f.rewrite(t, "alice two", h, alice)

	all, err := f.serializer.Headline(ctx, h, HeadlineOptions{WithRewrites: true})
	require.NoError(t, err)
	assert.Len(t, all.Rewrites, 3)

	onlyAlice, err := f.serializer.Headline(ctx, h, HeadlineOptions{WithRewrites: true, Viewer: &alice.ID})
	require.NoError(t, err)
	require.Len(t, onlyAlice.Rewrites, 2)
	assert.Equal(t, "alice one", onlyAlice.Rewrites[0].Text)
	assert.Equal(t, "alice two", onlyAlice.Rewrites[1].Text)

	stranger := uuid.New()
	none, err := f.serializer.Headline(ctx, h, HeadlineOptions{WithRewrites: true, Viewer: &stranger})
	require.NoError(t, err)
	assert.NotNil(t, none.Rewrites)
	assert.Empty(t, none.Rewrites)
}

func TestSerializer_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.headline(t, "A great thing happened", testNow)
	f.rewrite(t, "An ok thing happened", h, f.user(t, "writer", false))
	opts := HeadlineOptions{WithRewrites: true}

	first, err := f.serializer.Headline(ctx, h, opts)
	require.NoError(t, err)
	second, err := f.serializer.Headline(ctx, h, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSerializer_Rewrite(t *testing.T) {
	f := newFixture(t)
	r := &domain.Rewrite{
		ID:             uuid.New(),
		Text:           "An ok thing happened",
		UserID:         uuid.New(),
		HeadlineID:     uuid.New(),
		SentimentScore: 0.1,
		SentimentMatch: -0.5,
		SemanticMatch:  1,
		Timestamp:      testNow,
	}

	view := f.serializer.Rewrite(r)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, r.ID.String(), decoded["id"])
	assert.Equal(t, -0.5, decoded["sentiment_match"])
	assert.Equal(t, 1.0, decoded["semantic_match"])
	assert.Equal(t, "2024-03-14T15:09:26Z", decoded["timestamp"])
}

func TestSerializer_MissingSource(t *testing.T) {
	f := newFixture(t)
	h := &domain.Headline{ID: uuid.New(), Text: "orphan", SourceID: uuid.New(), Date: testNow}

	_, err := f.serializer.Headline(context.Background(), h, HeadlineOptions{})

	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}
