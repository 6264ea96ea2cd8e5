package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

type fixtures struct {
	users     *UserRepo
	sources   *SourceRepo
	headlines *HeadlineRepo
	rewrites  *RewriteRepo
}

func newFixtures(t *testing.T) fixtures {
	pool := setupTestDB(t)
	return fixtures{
		users:     NewUserRepo(pool),
		sources:   NewSourceRepo(pool),
		headlines: NewHeadlineRepo(pool),
		rewrites:  NewRewriteRepo(pool),
	}
}

func (f fixtures) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", Active: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f fixtures) headline(t *testing.T, text string, date time.Time) *domain.Headline {
	t.Helper()
	src := &domain.Source{Name: "NYT", URL: "nytimes.com", Alignment: "left"}
	require.NoError(t, f.sources.Upsert(context.Background(), src))
	h := &domain.Headline{Text: text, SentimentScore: 0.5, Date: date, URL: "https://nytimes.com/x", SourceID: src.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.headlines.Create(context.Background(), h))
	return h
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	created := f.user(t, "reader")

	byID, err := f.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", byID.Username)
	assert.True(t, byID.Active)
	assert.False(t, byID.Anonymous)

	byEmail, err := f.users.GetByLogin(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = f.users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepo_UniqueConstraints(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	f.user(t, "reader")

	err := f.users.Create(ctx, &domain.User{Username: "reader", Email: "fresh@example.com", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrConflict)

	other := f.user(t, "other")
	other.Email = "reader@example.com"
	assert.ErrorIs(t, f.users.Update(ctx, other), domain.ErrConflict)

	assert.ErrorIs(t, f.users.Update(ctx, &domain.User{ID: uuid.New(), Username: "ghost", Email: "ghost@example.com"}), domain.ErrUserNotFound)
}

func TestSourceRepo_UpsertByName(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	first := &domain.Source{Name: "WSJ", URL: "wsj.com", FeedURLs: []string{"https://feeds.a.dj.com/rss/RSSWorldNews.xml"}}
	require.NoError(t, f.sources.Upsert(ctx, first))
	second := &domain.Source{Name: "WSJ", URL: "wsj.com", Alignment: "right", FeedURLs: []string{"a", "b"}}
	require.NoError(t, f.sources.Upsert(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	got, err := f.sources.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "right", got.Alignment)
	assert.Equal(t, []string{"a", "b"}, got.FeedURLs)

	all, err := f.sources.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.sources.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestHeadlineRepo(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	h := f.headline(t, "Markets rally", testDay)
	f.headline(t, "Old news", testDay.AddDate(0, 0, -10))

	got, err := f.headlines.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Markets rally", got.Text)
	assert.True(t, testDay.Equal(got.Date))

	exists, err := f.headlines.ExistsByText(ctx, "Markets rally")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = f.headlines.ExistsByText(ctx, "Never printed")
	require.NoError(t, err)
	assert.False(t, exists)

	ids, err := f.headlines.ListIDsSince(ctx, testDay.AddDate(0, 0, -4))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{h.ID}, ids)

	_, err = f.headlines.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrHeadlineNotFound)

	orphan := &domain.Headline{Text: "orphan", Date: testDay, SourceID: uuid.New()}
	assert.ErrorIs(t, f.headlines.Create(ctx, orphan), domain.ErrConflict)
}

func TestRewriteRepo(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	user := f.user(t, "writer")
	h := f.headline(t, "Markets rally", testDay)

	var created []*domain.Rewrite
	for _, text := range []string{"first", "second", "third"} {
		rw := &domain.Rewrite{
			Text: text, UserID: user.ID, HeadlineID: h.ID,
			SentimentScore: 0.1, SentimentMatch: -0.4, SemanticMatch: 1,
			Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, f.rewrites.Create(ctx, rw))
		created = append(created, rw)
	}

	got, err := f.rewrites.GetByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].Text, got.Text)
	assert.Equal(t, -0.4, got.SentimentMatch)
	assert.True(t, created[0].Timestamp.Equal(got.Timestamp))

	require.NoError(t, f.rewrites.Delete(ctx, created[1].ID))
	assert.ErrorIs(t, f.rewrites.Delete(ctx, created[1].ID), domain.ErrRewriteNotFound)

	byHeadline, err := f.rewrites.ListByHeadline(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, byHeadline, 2)
	assert.Equal(t, "first", byHeadline[0].Text)
	assert.Equal(t, "third", byHeadline[1].Text)

	byUser, err := f.rewrites.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	err = f.rewrites.Create(ctx, &domain.Rewrite{Text: "x", UserID: uuid.New(), HeadlineID: h.ID, Timestamp: time.Now()})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
