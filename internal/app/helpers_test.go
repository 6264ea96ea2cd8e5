package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/adapter/memory"
	"github.com/pscheid92/headlinepulse/internal/domain"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
	"github.com/pscheid92/headlinepulse/internal/sentiment"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

var errStorage = errors.New("storage unavailable")

// --- Mock implementations ---

type fixedScorer map[string]float64

func (s fixedScorer) Score(_ context.Context, text string) float64 {
	return s[text]
}

type mockUserRepo struct {
	domain.UserRepository
	getByIDFn func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	createFn  func(ctx context.Context, user *domain.User) error
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return m.UserRepository.GetByID(ctx, userID)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return m.UserRepository.Create(ctx, user)
}

type mockRewriteRepo struct {
	domain.RewriteRepository
	createFn func(ctx context.Context, rewrite *domain.Rewrite) error
	deleteFn func(ctx context.Context, rewriteID uuid.UUID) error
}

func (m *mockRewriteRepo) Create(ctx context.Context, rewrite *domain.Rewrite) error {
	if m.createFn != nil {
		return m.createFn(ctx, rewrite)
	}
	return m.RewriteRepository.Create(ctx, rewrite)
}

func (m *mockRewriteRepo) Delete(ctx context.Context, rewriteID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, rewriteID)
	}
	return m.RewriteRepository.Delete(ctx, rewriteID)
}

// --- Fixture ---

type fixture struct {
	store      *memory.Store
	clock      *clockwork.FakeClock
	identity   *IdentityResolver
	serializer *Serializer
	workflow   *RewriteWorkflow
	headlines  *HeadlineService
	source     *domain.Source
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(testNow)
	scorer := sentiment.Default()
	serializer := NewSerializer(store.Sources(), store.Rewrites())

	source := &domain.Source{Name: "Amazing News", URL: "amazing.example", Alignment: "center"}
	require.NoError(t, store.Sources().Upsert(context.Background(), source))

	return &fixture{
		store:      store,
		clock:      clock,
		identity:   NewIdentityResolver(store.Users(), clock),
		serializer: serializer,
		workflow:   NewRewriteWorkflow(store.Headlines(), store.Rewrites(), scorer, sentiment.AlwaysSimilar{}, serializer, clock),
		headlines:  NewHeadlineService(store.Headlines(), nil, scorer, clock, DefaultHeadlineWindow),
		source:     source,
	}
}

func (f *fixture) headline(t *testing.T, text string, date time.Time) *domain.Headline {
	t.Helper()
	h, err := f.headlines.Create(context.Background(), text, date, f.source.ID, "https://amazing.example/"+uuid.NewString())
	require.NoError(t, err)
	return h
}

func (f *fixture) user(t *testing.T, username string, anonymous bool) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:  username,
		Email:     username + "@example.com",
		Active:    true,
		Anonymous: anonymous,
		CreatedAt: testNow,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) rewrite(t *testing.T, text string, h *domain.Headline, u *domain.User) *domain.Rewrite {
	t.Helper()
	rw, err := f.workflow.Submit(context.Background(), SubmitRewrite{Text: text, HeadlineID: h.ID.String(), UserID: u.ID})
	require.NoError(t, err)
	return rw
}

func requireAppError(t *testing.T, err error, wantType apperrors.ErrorType, wantStatus int, wantMessage string) {
	t.Helper()
	require.Error(t, err)
	structured := apperrors.AsStructuredError(err)
	require.Equal(t, wantType, structured.Type, "error: %v", err)
	require.Equal(t, wantStatus, structured.HTTPStatus())
	if wantMessage != "" {
		require.Equal(t, wantMessage, structured.Message)
	}
}
