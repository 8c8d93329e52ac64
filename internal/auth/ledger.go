package auth

import (
	"context"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// RevocationLedger reads and advances the persisted per-principal token
// version. Revoke must be atomic at the storage layer: concurrent calls for
// the same principal net to a deterministic higher count, never a lost
// increment. There is no decrement.
type RevocationLedger interface {
	CurrentVersion(ctx context.Context, role domain.Role, principalID string) (version int, found bool, err error)
	Revoke(ctx context.Context, role domain.Role, principalID string) (newVersion int, err error)
}
