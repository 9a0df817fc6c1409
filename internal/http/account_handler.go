package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/account"
	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/middleware"
)

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req account.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.deps.Accounts.SignIn(r.Context(), req, h.buyerCookie(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// the anonymous basket, if any, now belongs to the user
	h.clearBuyerCookie(w)
	writeJSON(w, http.StatusOK, toUserDTO(sess))
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req account.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.deps.Accounts.SignUp(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	sess, err := h.deps.Accounts.CurrentUser(r.Context(), p.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(sess))
}

func (h *handler) savedAddress(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	addr, err := h.deps.Accounts.SavedAddress(r.Context(), p.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if addr == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}
