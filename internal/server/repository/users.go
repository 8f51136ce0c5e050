package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgconn"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
)

// pgUniqueViolation - код ошибки PostgreSQL при нарушении уникальности.
const pgUniqueViolation = "23505"

type UsersRepository struct {
	db *sql.DB
}

func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create сохраняет пользователя. id и created_at назначает база.
// Занятый email возвращается как ErrAlreadyExists.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string, role models.Role) (models.User, error) {
	u := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role)
		 VALUES ($1,$2,$3)
		 RETURNING id, created_at`,
		email, passwordHash, string(role),
	).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.User{}, serr.ErrAlreadyExists
		}
		return models.User{}, serr.ErrInternal
	}

	return u, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		u    models.User
		role string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email=$1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, serr.ErrNotFound
		}
		return models.User{}, serr.ErrInternal
	}

	u.Role = models.Role(role)
	return u, nil
}

// Ping проверяет доступность базы (для /healthz).
func (r *UsersRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return serr.ErrInternal
	}
	return nil
}
