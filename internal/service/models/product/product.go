package product

import (
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/money"
)

// Product represents a catalog entry. Its price is the authoritative unit price.
type Product struct {
	ID          int64        `json:"id"`
	CategoryID  int64        `json:"categoryId"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Price       money.Amount `json:"price"`
	DateAdded   time.Time    `json:"dateAdded"`
}
