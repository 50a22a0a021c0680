package httpx

import (
	"net/http"

	"github.com/exclusive-store/storefront/internal/wishlist"
)

// WishlistHandlers provides HTTP handlers for the wishlist.
type WishlistHandlers struct {
	Mirror *wishlist.Mirror
}

// GetWishlist returns the wishlist materialized as full products.
func (h *WishlistHandlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.Mirror.Materialize(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, products)
}

// GetWishlistIDs returns just the locally mirrored product ids.
func (h *WishlistHandlers) GetWishlistIDs(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Mirror.IDs(r.Context()))
}

// ToggleWishlist flips a product's wishlist membership. The local mirror is
// updated before the handler returns; the server sync runs in the background.
func (h *WishlistHandlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDPath(w, r)
	if !ok {
		return
	}

	added, err := h.Mirror.Toggle(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"productId": id, "added": added})
}
