package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// StatusOf maps an error kind to an HTTP status.
func StatusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindNotFound:
		return http.StatusBadRequest
	case errs.KindPayment:
		if errs.ReasonOf(err) == errs.ReasonNetworkFailure {
			return http.StatusBadGateway
		}

		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with its mapped status. Internal details of
// server side failures are not exposed.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	body := ErrorResponse{
		Error:     err.Error(),
		Reason:    string(errs.ReasonOf(err)),
		RequestID: middleware.GetReqID(r.Context()),
	}
	switch {
	case status >= http.StatusInternalServerError:
		body.Error = http.StatusText(status)
	case errs.Is(err, errs.KindPayment):
		body.Error = "payment failed"
	}

	WriteJSON(w, status, body)
}
