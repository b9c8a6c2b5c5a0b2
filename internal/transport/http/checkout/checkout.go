package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
	"github.com/corray333/backend-labs/storefront/pkg/http/idempotency"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/identity"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	HandleOrder(ctx context.Context, o *order.Order) (*order.Order, error)
}

var validate = validator.New()

// itemInCheckoutRequest is a line of the draft order. Prices sent by the
// client are ignored.
type itemInCheckoutRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0,lte=2147483647"`
}

// checkoutRequest represents a checkout request.
type checkoutRequest struct {
	FirstName    string                  `json:"firstName"    validate:"required,max=100"`
	LastName     string                  `json:"lastName"     validate:"required,max=100"`
	Email        string                  `json:"email"        validate:"required,email,max=100"`
	Address      string                  `json:"address"      validate:"required,max=100"`
	ZipCode      string                  `json:"zipCode"      validate:"required,max=100"`
	Place        string                  `json:"place"        validate:"required,max=100"`
	Phone        string                  `json:"phone"        validate:"required,max=100"`
	PaymentToken string                  `json:"stripeToken"  validate:"required,max=200"`
	OrderItems   []itemInCheckoutRequest `json:"orderItems"   validate:"required,min=1,dive"`
}

// Validate validates the checkout request.
func (r *checkoutRequest) Validate() error {
	return validate.Struct(r)
}

// toModel converts checkoutRequest to a draft order.Order.
func (r *checkoutRequest) toModel(userID, idempotencyKey string) *order.Order {
	items := make([]orderitem.OrderItem, len(r.OrderItems))
	for i, item := range r.OrderItems {
		items[i] = orderitem.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	o := order.New()
	o.UserID = userID
	o.FirstName = r.FirstName
	o.LastName = r.LastName
	o.Email = r.Email
	o.Address = r.Address
	o.ZipCode = r.ZipCode
	o.Place = r.Place
	o.Phone = r.Phone
	o.PaymentToken = r.PaymentToken
	o.IdempotencyKey = idempotencyKey
	o.OrderItems = items

	return o
}

// Checkout handles the checkout request.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	req := checkoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		slog.WarnContext(r.Context(), "Error decoding request body for checkout", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, err.Error())
		slog.WarnContext(r.Context(), "Error validating request body for checkout", "error", err)

		return
	}

	key, err := idempotency.Key(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, err.Error())

		return
	}

	placed, err := service.HandleOrder(r.Context(), req.toModel(identity.UserID(r.Context()), key))
	if err != nil {
		response.WriteServiceError(w, r, err)
		slog.WarnContext(r.Context(), "Error performing checkout", "error", err)

		return
	}

	response.WriteJSON(w, http.StatusCreated, placed)
}
