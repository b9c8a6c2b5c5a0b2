package adminorders

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	MarkAsShipped(ctx context.Context, id int64) (*order.Order, error)
	MarkAsArrived(ctx context.Context, id int64) (*order.Order, error)
}

// GetOrder serves an order with its items and shipping info.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	serve(w, r, "Error getting order", service.GetOrder)
}

// MarkAsShipped records that the order left the warehouse.
func MarkAsShipped(w http.ResponseWriter, r *http.Request, service service) {
	serve(w, r, "Error marking order as shipped", service.MarkAsShipped)
}

// MarkAsArrived records that the order reached the customer.
func MarkAsArrived(w http.ResponseWriter, r *http.Request, service service) {
	serve(w, r, "Error marking order as arrived", service.MarkAsArrived)
}

func serve(
	w http.ResponseWriter,
	r *http.Request,
	failure string,
	call func(ctx context.Context, id int64) (*order.Order, error),
) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, "invalid order id")
		slog.WarnContext(r.Context(), "Error parsing order id", "error", err)

		return
	}

	o, err := call(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		slog.WarnContext(r.Context(), failure, "order_id", id, "error", err)

		return
	}

	response.WriteJSON(w, http.StatusOK, o)
}
