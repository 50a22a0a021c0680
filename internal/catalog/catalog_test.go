package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclusive-store/storefront/internal/api"
	apperrors "github.com/exclusive-store/storefront/internal/errors"
)

func newService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(api.ClientOptions{BaseURL: server.URL})
	svc := NewService(ServiceOptions{API: client, PageSize: 2, FetchConcurrency: 2})
	return svc, server
}

func TestService_Categories(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Category", r.URL.Path)
		_, _ = w.Write([]byte(`{"succeeded":true,"data":[{"id":1,"name":"Books"},{"id":2,"name":"Games"}]}`))
	}))

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, Category{ID: 2, Name: "Games"}, categories[1])
}

func TestService_Categories_Unavailable(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := svc.Categories(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestService_Products_PageAndTotal(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("PageNumber"))
		assert.Equal(t, "2", r.URL.Query().Get("PageSize"))
		_, _ = w.Write([]byte(`{"succeeded":true,"data":{"items":[{"id":5,"name":"Pen","price":1.5}],"totalCount":5}}`))
	}))

	page, err := svc.Products(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Number)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Pen", page.Items[0].Name)
}

func TestService_Product_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"succeeded":false,"message":"no such product"}`))
	}))

	_, err := svc.Product(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestService_Product(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Product/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"succeeded":true,"data":{"id":7,"name":"Mouse","price":25,"imageUrl":"/img/7.png"}}`))
	}))

	product, err := svc.Product(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
	assert.Equal(t, "/img/7.png", product.ImageURL)
}

// pagedCatalog serves a fixed product list with data.items + totalCount
// pagination, counting requests.
func pagedCatalog(total int, requests *atomic.Int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("PageNumber"))
		size, _ := strconv.Atoi(r.URL.Query().Get("PageSize"))
		if page < 1 {
			page = 1
		}

		start := (page - 1) * size
		var items []map[string]any
		for i := start; i < start+size && i < total; i++ {
			items = append(items, map[string]any{
				"id":   i + 1,
				"name": fmt.Sprintf("Product %d", i+1),
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"succeeded": true,
			"data":      map[string]any{"items": items, "totalCount": total},
		})
	})
}

func TestService_AllProducts_FetchesEveryPage(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	svc, _ := newService(t, pagedCatalog(5, &requests)) // page size 2 -> 3 pages

	products, err := svc.AllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 5)

	// Order is preserved across concurrently fetched pages.
	for i, p := range products {
		assert.Equal(t, int64(i+1), p.ID)
	}
	assert.Equal(t, int64(3), requests.Load())
}

func TestService_AllProducts_SingleShortPage(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	svc, _ := newService(t, pagedCatalog(1, &requests))

	products, err := svc.AllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int64(1), requests.Load())
}

func TestService_AllProducts_WalksWithoutTotal(t *testing.T) {
	t.Parallel()

	// No totalCount in the response: the walk stops at the short page.
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("PageNumber"))
		switch page {
		case 1:
			_, _ = w.Write([]byte(`{"succeeded":true,"data":[{"id":1},{"id":2}]}`))
		case 2:
			_, _ = w.Write([]byte(`{"succeeded":true,"data":[{"id":3}]}`))
		default:
			t.Errorf("unexpected page %d", page)
		}
	}))

	products, err := svc.AllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestService_CreateCategory(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/Category", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Books", body["name"])
		_, _ = w.Write([]byte(`{"succeeded":true,"data":{"id":9,"name":"Books"}}`))
	}))

	created, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Books"})
	require.NoError(t, err)
	assert.Equal(t, Category{ID: 9, Name: "Books"}, created)
}

func TestService_CreateCategory_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(ServiceOptions{API: nil})
	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "name", apperrors.GetField(err))
}

func TestService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(ServiceOptions{API: nil})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Price: 10})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "Pen", Price: -1})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "price", apperrors.GetField(err))
}
