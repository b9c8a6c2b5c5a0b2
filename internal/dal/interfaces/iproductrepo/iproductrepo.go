package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

// IProductRepository is the read side of the product catalog.
type IProductRepository interface {
	// FindByIDs returns the products matching ids. Missing IDs are simply
	// absent from the result; the order of the result is unspecified.
	FindByIDs(ctx context.Context, ids []int64) ([]product.Product, error)
}
