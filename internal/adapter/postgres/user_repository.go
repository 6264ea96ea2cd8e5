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

var userColumns = []string{"id", "username", "email", "password_hash", "admin", "active", "anonymous", "created_at"}

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Admin, &u.Active, &u.Anonymous, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) get(ctx context.Context, where sq.Sqlizer) (*domain.User, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return r.get(ctx, sq.Eq{"id": userID})
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.get(ctx, sq.Or{sq.Eq{"username": login}, sq.Eq{"email": login}})
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	_, err := exec(ctx, r.pool, psql.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Username, user.Email, user.PasswordHash, user.Admin, user.Active, user.Anonymous, user.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapWriteError(err))
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	tag, err := exec(ctx, r.pool, psql.Update("users").
		SetMap(map[string]any{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"admin":         user.Admin,
			"active":        user.Active,
			"anonymous":     user.Anonymous,
		}).
		Where(sq.Eq{"id": user.ID}))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
