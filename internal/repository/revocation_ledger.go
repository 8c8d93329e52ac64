package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
)

// revocationLedger dispatches version reads and increments to the store
// matching the payload role, so admin-originated revocations land in the
// admin table and never leak into the user table.
type revocationLedger struct {
	users  UserRepository
	admins AdminRepository
}

// NewRevocationLedger builds the per-role ledger over both principal stores.
func NewRevocationLedger(users UserRepository, admins AdminRepository) auth.RevocationLedger {
	return &revocationLedger{users: users, admins: admins}
}

func (l *revocationLedger) CurrentVersion(ctx context.Context, role domain.Role, principalID string) (int, bool, error) {
	switch role {
	case domain.RoleUser:
		user, err := l.users.GetByID(ctx, principalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return user.TokenVersion, true, nil
	case domain.RoleAdmin:
		admin, err := l.admins.GetByID(ctx, principalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return admin.TokenVersion, true, nil
	default:
		return 0, false, fmt.Errorf("unknown role %q", role)
	}
}

func (l *revocationLedger) Revoke(ctx context.Context, role domain.Role, principalID string) (int, error) {
	switch role {
	case domain.RoleUser:
		return l.users.IncrementTokenVersion(ctx, principalID)
	case domain.RoleAdmin:
		return l.admins.IncrementTokenVersion(ctx, principalID)
	default:
		return 0, fmt.Errorf("unknown role %q", role)
	}
}
