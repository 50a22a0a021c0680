package httpx

import (
	"net/http"

	"github.com/exclusive-store/storefront/internal/cart"
)

// CartHandlers provides HTTP handlers for cart operations.
type CartHandlers struct {
	Svc *cart.Service
}

// GetCart handles HTTP requests for the current cart.
func (h *CartHandlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddItem adds a product to the cart.
func (h *CartHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem changes the quantity of a cart line.
func (h *CartHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseIDPath(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.UpdateItem(r.Context(), itemID, req.Quantity); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveItem removes a cart line.
func (h *CartHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseIDPath(w, r)
	if !ok {
		return
	}

	if err := h.Svc.RemoveItem(r.Context(), itemID); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart.
func (h *CartHandlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Clear(r.Context()); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyCouponRequest struct {
	CouponCode string `json:"couponCode"`
}

// ApplyCoupon applies a coupon code and returns the repriced cart.
func (h *CartHandlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	c, err := h.Svc.ApplyCoupon(r.Context(), req.CouponCode)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}
