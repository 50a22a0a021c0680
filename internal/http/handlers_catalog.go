package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/exclusive-store/storefront/internal/catalog"
)

// CatalogHandlers provides HTTP handlers for categories and products.
type CatalogHandlers struct {
	Svc *catalog.Service
}

// ListCategories handles HTTP requests for the category list.
func (h *CatalogHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Svc.Categories(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, categories)
}

// ListProducts handles HTTP requests for a page of products.
func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	size := parseIntQuery(r, "size", 0)

	result, err := h.Svc.Products(r.Context(), page, size)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ListAllProducts handles HTTP requests for the full catalog.
func (h *CatalogHandlers) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Svc.AllProducts(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, products)
}

// GetProduct handles HTTP requests for a single product by id.
func (h *CatalogHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDPath(w, r)
	if !ok {
		return
	}

	product, err := h.Svc.Product(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

// CreateCategory handles admin requests to create a category.
func (h *CatalogHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateCategoryInput
	if !DecodeJSON(w, r, &req) {
		return
	}

	category, err := h.Svc.CreateCategory(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, category)
}

// CreateProduct handles admin requests to create a product.
func (h *CatalogHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateProductInput
	if !DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.Svc.CreateProduct(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, product)
}

// parseIntQuery returns the named query parameter as an int, or the
// fallback when absent or malformed.
func parseIntQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// parseIDPath extracts the {id} path value as an int64, writing a 400
// response and returning false when it is missing or not numeric.
func parseIDPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("numeric id is required"),
		})
		return 0, false
	}
	return id, true
}
