package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/basket"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/middleware"
)

const (
	buyerCookieName = "buyerId"
	buyerCookieTTL  = 30 * 24 * time.Hour
)

func (h *handler) getBasket(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Baskets.Get(r.Context(), h.buyerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBasketDTO(b))
}

func (h *handler) addItem(w http.ResponseWriter, r *http.Request) {
	productID, quantity, ok := basketQuery(w, r)
	if !ok {
		return
	}

	buyerID := h.buyerID(r)
	if buyerID == "" {
		buyerID = uuid.NewString()
		h.setBuyerCookie(w, buyerID)
	}

	b, err := h.deps.Baskets.AddItem(r.Context(), buyerID, productID, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/basket")
	writeJSON(w, http.StatusCreated, toBasketDTO(b))
}

func (h *handler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, quantity, ok := basketQuery(w, r)
	if !ok {
		return
	}
	b, err := h.deps.Baskets.RemoveItem(r.Context(), h.buyerID(r), productID, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBasketDTO(b))
}

// buyerID is the username when signed in, otherwise the anonymous cookie.
func (h *handler) buyerID(r *http.Request) string {
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		return p.Username
	}
	return h.buyerCookie(r)
}

func (h *handler) buyerCookie(r *http.Request) string {
	c, err := r.Cookie(buyerCookieName)
	if err != nil || !basket.IsAnonymousID(c.Value) {
		return ""
	}
	return c.Value
}

func (h *handler) setBuyerCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     buyerCookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(buyerCookieTTL),
		MaxAge:   int(buyerCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) clearBuyerCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     buyerCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.deps.SecureCookies,
	})
}

func basketQuery(w http.ResponseWriter, r *http.Request) (productID int64, quantity int, ok bool) {
	q := r.URL.Query()
	productID, err := strconv.ParseInt(q.Get("productId"), 10, 64)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "productId must be a number")
		return 0, 0, false
	}
	quantity, err = strconv.Atoi(q.Get("quantity"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "quantity must be a number")
		return 0, 0, false
	}
	return productID, quantity, true
}
