package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/order"
)

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	orders, err := h.deps.Orders.List(r.Context(), p.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]orderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderDTO(&orders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, _ := middleware.PrincipalFrom(r.Context())
	o, err := h.deps.Orders.Get(r.Context(), p.Username, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	verrs, err := h.validate.Struct(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := verrs.OrNil(); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, _ := middleware.PrincipalFrom(r.Context())
	o, err := h.deps.Placer.Place(r.Context(), order.PlaceRequest{
		BuyerID:         p.Username,
		ShippingAddress: req.ShippingAddress,
		SaveAddress:     req.SaveAddress,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/orders/"+strconv.FormatInt(o.ID, 10))
	writeJSON(w, http.StatusCreated, o.ID)
}

