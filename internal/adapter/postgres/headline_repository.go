package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

var headlineColumns = []string{"id", "text", "sentiment_score", "date", "url", "source_id", "created_at"}

type HeadlineRepo struct {
	pool *pgxpool.Pool
}

func NewHeadlineRepo(pool *pgxpool.Pool) *HeadlineRepo {
	return &HeadlineRepo{pool: pool}
}

func (r *HeadlineRepo) GetByID(ctx context.Context, headlineID uuid.UUID) (*domain.Headline, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(headlineColumns...).From("headlines").Where(sq.Eq{"id": headlineID}))
	if err != nil {
		return nil, err
	}

	var h domain.Headline
	err = row.Scan(&h.ID, &h.Text, &h.SentimentScore, &h.Date, &h.URL, &h.SourceID, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrHeadlineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get headline: %w", err)
	}
	return &h, nil
}

func (r *HeadlineRepo) Create(ctx context.Context, h *domain.Headline) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := exec(ctx, r.pool, psql.Insert("headlines").
		Columns(headlineColumns...).
		Values(h.ID, h.Text, h.SentimentScore, h.Date, h.URL, h.SourceID, h.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create headline: %w", mapWriteError(err))
	}
	return nil
}

func (r *HeadlineRepo) ExistsByText(ctx context.Context, text string) (bool, error) {
	row, err := queryRow(ctx, r.pool, psql.Select("1").From("headlines").Where(sq.Eq{"text": text}).Limit(1))
	if err != nil {
		return false, err
	}
	var one int
	err = row.Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check headline text: %w", err)
	}
	return true, nil
}

func (r *HeadlineRepo) ListIDsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	rows, err := query(ctx, r.pool, psql.Select("id").From("headlines").
		Where(sq.GtOrEq{"date": since}).
		OrderBy("date", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent headlines: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to list recent headlines: %w", err)
	}
	return ids, nil
}
