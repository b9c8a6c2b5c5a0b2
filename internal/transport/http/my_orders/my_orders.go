package myorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/identity"
)

type service interface {
	GetOrdersByUser(ctx context.Context, userID string) ([]order.Order, error)
}

// MyOrders lists the orders of the calling user.
func MyOrders(w http.ResponseWriter, r *http.Request, service service) {
	orders, err := service.GetOrdersByUser(r.Context(), identity.UserID(r.Context()))
	if err != nil {
		response.WriteServiceError(w, r, err)
		slog.ErrorContext(r.Context(), "Error getting user orders", "error", err)

		return
	}

	response.WriteJSON(w, http.StatusOK, orders)
}
