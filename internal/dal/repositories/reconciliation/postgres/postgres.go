package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
)

// ReconciliationRepository stores hazards reported by the checkout.
type ReconciliationRepository struct {
	conn postgres.Conn
}

// NewReconciliationRepository creates a new reconciliation repository.
func NewReconciliationRepository(conn postgres.Conn) *ReconciliationRepository {
	return &ReconciliationRepository{
		conn: conn,
	}
}

// Insert stores the hazard unless one with the same idempotency key exists.
func (r *ReconciliationRepository) Insert(ctx context.Context, h reconciliation.Hazard) (bool, error) {
	items, err := json.Marshal(h.Items)
	if err != nil {
		return false, fmt.Errorf("failed to marshal hazard items: %w", err)
	}

	var userID *string
	if h.UserID != "" {
		userID = &h.UserID
	}

	query, args, err := sq.Insert("charge_reconciliation").
		Columns(
			"idempotency_key",
			"charge_id",
			"receipt_url",
			"user_id",
			"email",
			"amount",
			"currency",
			"items",
			"reason",
			"occurred_at",
		).
		Values(
			h.IdempotencyKey,
			h.ChargeID,
			h.ReceiptURL,
			userID,
			h.Email,
			h.Amount,
			h.Currency,
			items,
			h.Reason,
			h.OccurredAt,
		).
		Suffix("ON CONFLICT (idempotency_key) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert charge reconciliation: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
