package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/imagestore"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/validation"
)

type problem struct {
	Title         string              `json:"title"`
	Status        int                 `json:"status"`
	Errors        map[string][]string `json:"errors,omitempty"`
	CorrelationID string              `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title string) {
	writeProblemDoc(w, problem{
		Title:         title,
		Status:        status,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func writeProblemDoc(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeError maps domain errors to problem responses. Anything unrecognised is
// logged and reported as a 500.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs *validation.Errors
		stock *order.InsufficientStockError
	)
	switch {
	case errors.As(err, &verrs):
		writeProblemDoc(w, problem{
			Title:         "One or more validation errors occurred.",
			Status:        http.StatusBadRequest,
			Errors:        verrs.Fields,
			CorrelationID: middleware.GetCorrelationID(r.Context()),
		})
	case errors.As(err, &stock):
		writeProblem(w, r, http.StatusBadRequest, stock.Error())
	case errors.Is(err, order.ErrBasketNotFound):
		writeProblem(w, r, http.StatusBadRequest, "Could not locate Basket")
	case errors.Is(err, order.ErrPersistence):
		h.logger.Printf("order placement failed: %v cid=%s", err, middleware.GetCorrelationID(r.Context()))
		writeProblem(w, r, http.StatusBadRequest, "Unable to create order")
	case errors.Is(err, basket.ErrInvalidQuantity):
		writeProblem(w, r, http.StatusBadRequest, "Quantity must be a positive number")
	case errors.Is(err, account.ErrUnauthorized):
		writeProblem(w, r, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, catalog.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, "Product not found")
	case errors.Is(err, basket.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, "Basket not found")
	case errors.Is(err, order.ErrNotFound), errors.Is(err, account.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, catalog.ErrImagesUnavailable), errors.Is(err, imagestore.ErrUnavailable):
		writeProblem(w, r, http.StatusServiceUnavailable, "Image service unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, r, http.StatusGatewayTimeout, "Request timed out")
	default:
		h.logger.Printf("%s %s failed: %v cid=%s", r.Method, r.URL.Path, err, middleware.GetCorrelationID(r.Context()))
		writeProblem(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
