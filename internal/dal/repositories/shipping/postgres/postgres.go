package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
)

// ShippingRepository writes shipping_info rows.
type ShippingRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewShippingRepository creates a new shipping repository.
func NewShippingRepository(conn postgres.Conn) *ShippingRepository {
	return &ShippingRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ShippingRepository) MarkShipped(ctx context.Context, orderID int64, at time.Time) (bool, error) {
	query, args, err := r.sb.
		Insert("shipping_info").
		Columns("order_id", "shipped_date").
		Values(orderID, at).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert shipping info: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ShippingRepository) MarkArrived(ctx context.Context, orderID int64, at time.Time) (bool, error) {
	query, args, err := r.sb.
		Update("shipping_info").
		Set("arrival_date", at).
		Where(sq.Eq{"order_id": orderID}).
		Where(sq.NotEq{"shipped_date": nil}).
		Where(sq.Eq{"arrival_date": nil}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update shipping info: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
