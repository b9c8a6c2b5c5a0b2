package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation          = "23505"
	idempotencyKeyConstraint = "orders_idempotency_key_key"
)

// OrderDal represents order data access layer model
type OrderDal struct {
	Id             int64
	UserId         *string
	FirstName      string
	LastName       string
	Email          string
	Address        string
	ZipCode        string
	Place          string
	Phone          string
	PaidAmount     string
	Currency       string
	ChargeId       string
	ReceiptUrl     string
	IdempotencyKey string
	Status         string
	CreatedAt      time.Time
	ShippedDate    *time.Time
	ArrivalDate    *time.Time
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (*order.Order, error) {
	paid, err := money.Parse(o.PaidAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse paid amount of order %d: %w", o.Id, err)
	}

	model := &order.Order{
		ID:             o.Id,
		FirstName:      o.FirstName,
		LastName:       o.LastName,
		Email:          o.Email,
		Address:        o.Address,
		ZipCode:        o.ZipCode,
		Place:          o.Place,
		Phone:          o.Phone,
		PaidAmount:     paid,
		ChargeID:       o.ChargeId,
		ReceiptURL:     o.ReceiptUrl,
		IdempotencyKey: o.IdempotencyKey,
		Status:         order.Status(o.Status),
		CreatedAt:      o.CreatedAt,
		OrderItems:     []orderitem.OrderItem{}, // Will be populated separately
	}
	if o.UserId != nil {
		model.UserID = *o.UserId
	}
	if o.ShippedDate != nil || o.ArrivalDate != nil {
		model.ShippingInfo = &order.ShippingInfo{
			OrderID:     o.Id,
			ShippedDate: o.ShippedDate,
			ArrivalDate: o.ArrivalDate,
		}
	}

	return model, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order, currency string) *OrderDal {
	dal := &OrderDal{
		Id:             o.ID,
		FirstName:      o.FirstName,
		LastName:       o.LastName,
		Email:          o.Email,
		Address:        o.Address,
		ZipCode:        o.ZipCode,
		Place:          o.Place,
		Phone:          o.Phone,
		PaidAmount:     o.PaidAmount.String(),
		Currency:       currency,
		ChargeId:       o.ChargeID,
		ReceiptUrl:     o.ReceiptURL,
		IdempotencyKey: o.IdempotencyKey,
		Status:         o.Status.String(),
		CreatedAt:      o.CreatedAt,
	}
	if o.UserID != "" {
		dal.UserId = &o.UserID
	}

	return dal
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn     postgres.Conn
	sb       sq.StatementBuilderType
	currency string
}

// NewPostgresOrderRepository creates a new Postgres order repository.
// Headers are stored in the given currency.
func NewPostgresOrderRepository(conn postgres.Conn, currency string) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn:     conn,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		currency: currency,
	}
}

// Create inserts the order header and returns the assigned ID.
// Order items are not written here.
func (r *PostgresOrderRepository) Create(ctx context.Context, o order.Order) (int64, error) {
	dal := OrderDalFromModel(&o, r.currency)

	sql, args, err := r.sb.
		Insert("orders").
		Columns(
			"user_id",
			"first_name",
			"last_name",
			"email",
			"address",
			"zip_code",
			"place",
			"phone",
			"paid_amount",
			"currency",
			"charge_id",
			"receipt_url",
			"idempotency_key",
			"status",
			"created_at",
		).
		Values(
			dal.UserId,
			dal.FirstName,
			dal.LastName,
			dal.Email,
			dal.Address,
			dal.ZipCode,
			dal.Place,
			dal.Phone,
			dal.PaidAmount,
			dal.Currency,
			dal.ChargeId,
			dal.ReceiptUrl,
			dal.IdempotencyKey,
			dal.Status,
			dal.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == idempotencyKeyConstraint {
			return 0, fmt.Errorf("failed to insert order: %w", iorderrepo.ErrDuplicateIdempotencyKey)
		}

		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	return id, nil
}

// Query retrieves orders newest first based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select(
			"o.id",
			"o.user_id",
			"o.first_name",
			"o.last_name",
			"o.email",
			"o.address",
			"o.zip_code",
			"o.place",
			"o.phone",
			"o.paid_amount::text",
			"o.currency",
			"o.charge_id",
			"o.receipt_url",
			"o.idempotency_key",
			"o.status",
			"o.created_at",
			"s.shipped_date",
			"s.arrival_date",
		).
		From("orders o").
		LeftJoin("shipping_info s ON s.order_id = o.id").
		OrderBy("o.created_at DESC", "o.id DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"o.id": filter.Ids})
	}

	if len(filter.UserIds) > 0 {
		query = query.Where(sq.Eq{"o.user_id": filter.UserIds})
	}

	if len(filter.IdempotencyKeys) > 0 {
		query = query.Where(sq.Eq{"o.idempotency_key": filter.IdempotencyKeys})
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		search := sq.Or{
			sq.ILike{"o.first_name": pattern},
			sq.ILike{"o.last_name": pattern},
			sq.ILike{"o.email": pattern},
		}
		if id, err := strconv.ParseInt(q, 10, 64); err == nil {
			search = append(search, sq.Eq{"o.id": id})
		}
		query = query.Where(search)
	}

	switch filter.Shipping {
	case order.ShippingFilterNotShipped:
		query = query.Where(sq.Eq{"s.shipped_date": nil})
	case order.ShippingFilterShippedNotArrived:
		query = query.Where(sq.NotEq{"s.shipped_date": nil}).Where(sq.Eq{"s.arrival_date": nil})
	case order.ShippingFilterArrived:
		query = query.Where(sq.NotEq{"s.arrival_date": nil})
	}

	if filter.PageSize > 0 {
		query = query.Limit(uint64(filter.Limit())).Offset(uint64(filter.Offset()))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.UserId,
			&dal.FirstName,
			&dal.LastName,
			&dal.Email,
			&dal.Address,
			&dal.ZipCode,
			&dal.Place,
			&dal.Phone,
			&dal.PaidAmount,
			&dal.Currency,
			&dal.ChargeId,
			&dal.ReceiptUrl,
			&dal.IdempotencyKey,
			&dal.Status,
			&dal.CreatedAt,
			&dal.ShippedDate,
			&dal.ArrivalDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
