package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// AdminRepository defines persistence access for back-office principals.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	IncrementTokenVersion(ctx context.Context, id string) (int, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (first_name, last_name, email, password_hash, token_version)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		admin.Name.First,
		admin.Name.Last,
		admin.Email,
		admin.PasswordHash,
		admin.TokenVersion,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

const adminColumns = `id, first_name, last_name, email, password_hash, token_version, created_at, updated_at`

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE id=$1`
	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE email=$1`
	return scanAdmin(r.pool.QueryRow(ctx, query, email))
}

// IncrementTokenVersion advances the revocation counter in a single
// conditional update.
func (r *adminRepository) IncrementTokenVersion(ctx context.Context, id string) (int, error) {
	const query = `UPDATE admins SET token_version = token_version + 1, updated_at=NOW() WHERE id=$1 RETURNING token_version`

	var version int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Name.First,
		&admin.Name.Last,
		&admin.Email,
		&admin.PasswordHash,
		&admin.TokenVersion,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
