package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

var sourceColumns = []string{"id", "name", "url", "alignment", "feed_urls"}

type SourceRepo struct {
	pool *pgxpool.Pool
}

func NewSourceRepo(pool *pgxpool.Pool) *SourceRepo {
	return &SourceRepo{pool: pool}
}

func scanSource(row pgx.Row) (domain.Source, error) {
	var s domain.Source
	err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Alignment, &s.FeedURLs)
	return s, err
}

func (r *SourceRepo) GetByID(ctx context.Context, sourceID uuid.UUID) (*domain.Source, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(sourceColumns...).From("sources").Where(sq.Eq{"id": sourceID}))
	if err != nil {
		return nil, err
	}
	src, err := scanSource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &src, nil
}

func (r *SourceRepo) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := query(ctx, r.pool, psql.Select(sourceColumns...).From("sources").OrderBy("name"))
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	sources, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Source, error) {
		return scanSource(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

func (r *SourceRepo) Upsert(ctx context.Context, source *domain.Source) error {
	id := source.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	feeds := source.FeedURLs
	if feeds == nil {
		feeds = []string{}
	}

	row, err := queryRow(ctx, r.pool, psql.Insert("sources").
		Columns(sourceColumns...).
		Values(id, source.Name, source.URL, source.Alignment, feeds).
		Suffix(`ON CONFLICT (name) DO UPDATE SET
			url = EXCLUDED.url,
			alignment = EXCLUDED.alignment,
			feed_urls = EXCLUDED.feed_urls
		RETURNING id`))
	if err != nil {
		return err
	}
	if err := row.Scan(&source.ID); err != nil {
		return fmt.Errorf("failed to upsert source: %w", mapWriteError(err))
	}
	return nil
}
