package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

// ProductDal represents product data access layer model
type ProductDal struct {
	Id          int64
	CategoryId  *int64
	Name        string
	Slug        string
	Description string
	Price       string
	DateAdded   time.Time
}

// ToModel converts ProductDal to service layer Product model
func (p *ProductDal) ToModel() (*product.Product, error) {
	price, err := money.Parse(p.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price of product %d: %w", p.Id, err)
	}

	model := &product.Product{
		ID:          p.Id,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       price,
		DateAdded:   p.DateAdded,
	}
	if p.CategoryId != nil {
		model.CategoryID = *p.CategoryId
	}

	return model, nil
}

// PostgresProductRepository reads the catalog.
type PostgresProductRepository struct {
	conn postgres.Conn
}

func NewPostgresProductRepository(conn postgres.Conn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// FindByIDs returns the products with the given ids in a single query.
func (r *PostgresProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}

	query, args, err := sq.Select(
		"id",
		"category_id",
		"name",
		"slug",
		"description",
		"price::text",
		"date_added",
	).
		From("products").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := make([]product.Product, 0, len(ids))
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.CategoryId,
			&dal.Name,
			&dal.Slug,
			&dal.Description,
			&dal.Price,
			&dal.DateAdded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, err
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
