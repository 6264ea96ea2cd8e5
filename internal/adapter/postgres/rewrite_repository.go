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

var rewriteColumns = []string{"id", "text", "user_id", "headline_id", "sentiment_score", "sentiment_match", "semantic_match", "timestamp"}

// RewriteRepo lists rewrites by the identity column seq, which preserves
// insertion order.
type RewriteRepo struct {
	pool *pgxpool.Pool
}

func NewRewriteRepo(pool *pgxpool.Pool) *RewriteRepo {
	return &RewriteRepo{pool: pool}
}

func scanRewrite(row pgx.Row) (domain.Rewrite, error) {
	var rw domain.Rewrite
	err := row.Scan(&rw.ID, &rw.Text, &rw.UserID, &rw.HeadlineID, &rw.SentimentScore, &rw.SentimentMatch, &rw.SemanticMatch, &rw.Timestamp)
	return rw, err
}

func (r *RewriteRepo) GetByID(ctx context.Context, rewriteID uuid.UUID) (*domain.Rewrite, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(rewriteColumns...).From("rewrites").Where(sq.Eq{"id": rewriteID}))
	if err != nil {
		return nil, err
	}
	rw, err := scanRewrite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRewriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rewrite: %w", err)
	}
	return &rw, nil
}

func (r *RewriteRepo) Create(ctx context.Context, rw *domain.Rewrite) error {
	if rw.ID == uuid.Nil {
		rw.ID = uuid.New()
	}
	_, err := exec(ctx, r.pool, psql.Insert("rewrites").
		Columns(rewriteColumns...).
		Values(rw.ID, rw.Text, rw.UserID, rw.HeadlineID, rw.SentimentScore, rw.SentimentMatch, rw.SemanticMatch, rw.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to create rewrite: %w", mapWriteError(err))
	}
	return nil
}

func (r *RewriteRepo) Delete(ctx context.Context, rewriteID uuid.UUID) error {
	tag, err := exec(ctx, r.pool, psql.Delete("rewrites").Where(sq.Eq{"id": rewriteID}))
	if err != nil {
		return fmt.Errorf("failed to delete rewrite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRewriteNotFound
	}
	return nil
}

func (r *RewriteRepo) ListByHeadline(ctx context.Context, headlineID uuid.UUID) ([]domain.Rewrite, error) {
	return r.list(ctx, sq.Eq{"headline_id": headlineID})
}

func (r *RewriteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Rewrite, error) {
	return r.list(ctx, sq.Eq{"user_id": userID})
}

func (r *RewriteRepo) list(ctx context.Context, where sq.Sqlizer) ([]domain.Rewrite, error) {
	rows, err := query(ctx, r.pool, psql.Select(rewriteColumns...).From("rewrites").Where(where).OrderBy("seq"))
	if err != nil {
		return nil, fmt.Errorf("failed to list rewrites: %w", err)
	}
	rewrites, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Rewrite, error) {
		return scanRewrite(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rewrites: %w", err)
	}
	return rewrites, nil
}
