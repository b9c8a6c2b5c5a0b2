package ireconciliationrepo

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
)

// IReconciliationRepository stores charges that still need an operator.
type IReconciliationRepository interface {
	// Insert stores the hazard. It reports false when a hazard with the same
	// idempotency key was already recorded.
	Insert(ctx context.Context, h reconciliation.Hazard) (bool, error)
}
