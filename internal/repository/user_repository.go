package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// UserRepository defines persistence access for shoppers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListActive(ctx context.Context) ([]domain.User, error)
	SetValidationToken(ctx context.Context, id, token string) error
	MarkValidated(ctx context.Context, id string) error
	IncrementTokenVersion(ctx context.Context, id string) (int, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, email, password_hash, active, validated, validation_token, token_version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name.First,
		user.Name.Last,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.Validated,
		user.ValidationToken,
		user.TokenVersion,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET first_name=$1, last_name=$2, email=$3, password_hash=$4, active=$5, validated=$6, validation_token=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name.First,
		user.Name.Last,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.Validated,
		user.ValidationToken,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const userColumns = `id, first_name, last_name, email, password_hash, active, validated, validation_token, token_version, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE active ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) SetValidationToken(ctx context.Context, id, token string) error {
	const query = `UPDATE users SET validation_token=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, token, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) MarkValidated(ctx context.Context, id string) error {
	const query = `UPDATE users SET validated=TRUE, validation_token='', updated_at=NOW() WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementTokenVersion advances the revocation counter in a single
// conditional update; concurrent calls serialize at the row level.
func (r *userRepository) IncrementTokenVersion(ctx context.Context, id string) (int, error) {
	const query = `UPDATE users SET token_version = token_version + 1, updated_at=NOW() WHERE id=$1 RETURNING token_version`

	var version int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name.First,
		&user.Name.Last,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.Validated,
		&user.ValidationToken,
		&user.TokenVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
