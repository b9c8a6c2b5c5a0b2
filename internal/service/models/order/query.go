package order

import "errors"

// ShippingFilter narrows the admin order listing by delivery progress.
type ShippingFilter string

const (
	ShippingFilterAll               ShippingFilter = "all"
	ShippingFilterNotShipped        ShippingFilter = "not_shipped"
	ShippingFilterShippedNotArrived ShippingFilter = "shipped_not_arrived"
	ShippingFilterArrived           ShippingFilter = "arrived"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 5000
)

var ErrInvalidPagination = errors.New("invalid pagination")

// QueryOrdersModel represents filter parameters for querying orders
type QueryOrdersModel struct {
	Ids             []int64        `json:"ids,omitempty"`
	UserIds         []string       `json:"userIds,omitempty"`
	IdempotencyKeys []string       `json:"-"`
	Query           string         `json:"query,omitempty"`
	Shipping        ShippingFilter `json:"shipping,omitempty"`
	Page            int            `json:"page,omitempty"`
	PageSize        int            `json:"pageSize,omitempty"`
}

// Normalize applies defaults and bounds. Page is 1-based.
func (q *QueryOrdersModel) Normalize() error {
	if q.Page < 0 || q.PageSize < 0 {
		return ErrInvalidPagination
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Page > MaxPageSize {
		q.Page = MaxPageSize
	}
	if q.Shipping == "" {
		q.Shipping = ShippingFilterAll
	}

	return nil
}

// Limit returns the row limit for the page.
func (q *QueryOrdersModel) Limit() int {
	return q.PageSize
}

// Offset returns the row offset for the page.
func (q *QueryOrdersModel) Offset() int {
	return (q.Page - 1) * q.PageSize
}
