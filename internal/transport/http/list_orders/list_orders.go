package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
	"github.com/gorilla/schema"
)

type service interface {
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

type queryOrdersRequest struct {
	Ids      []int64  `schema:"ids"`
	UserIds  []string `schema:"userIds"`
	Query    string   `schema:"q"`
	Filter   string   `schema:"filter"`
	Page     int      `schema:"page"`
	PageSize int      `schema:"pageSize"`
}

func (q *queryOrdersRequest) ToModel() order.QueryOrdersModel {
	return order.QueryOrdersModel{
		Ids:      q.Ids,
		UserIds:  q.UserIds,
		Query:    q.Query,
		Shipping: order.ShippingFilter(q.Filter),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// ListOrders serves the paginated admin order listing.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := &queryOrdersRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, err.Error())
		slog.WarnContext(r.Context(), "Error decoding request", "error", err)

		return
	}

	orders, err := service.GetOrders(r.Context(), query.ToModel())
	if err != nil {
		response.WriteServiceError(w, r, err)
		slog.ErrorContext(r.Context(), "Error getting orders", "error", err)

		return
	}

	response.WriteJSON(w, http.StatusOK, orders)
}
