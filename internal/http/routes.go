package httpx

import (
	"log/slog"
	"net/http"

	"github.com/exclusive-store/storefront/internal/account"
	"github.com/exclusive-store/storefront/internal/cart"
	"github.com/exclusive-store/storefront/internal/catalog"
	"github.com/exclusive-store/storefront/internal/wishlist"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Accounts *account.Service
	Catalog  *catalog.Service
	Cart     *cart.Service
	Wishlist *wishlist.Mirror
	Sessions SessionManager
	Logger   *slog.Logger

	// LogoutRedirect is the path clients are sent to after logout.
	LogoutRedirect string
}

// NewRouter creates and configures the storefront HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Accounts:       services.Accounts,
		Sessions:       services.Sessions,
		LogoutRedirect: services.LogoutRedirect,
	}
	catalogHandlers := &CatalogHandlers{Svc: services.Catalog}
	cartHandlers := &CartHandlers{Svc: services.Cart}
	wishlistHandlers := &WishlistHandlers{Mirror: services.Wishlist}

	authed := RequireAuth(services.Sessions)
	admin := RequireAdmin(services.Sessions)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.HandleFunc("POST /api/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /api/auth/session", authHandlers.Session)
	mux.Handle("GET /api/auth/profile", authed(http.HandlerFunc(authHandlers.Profile)))
	mux.Handle("POST /api/auth/change-password", authed(http.HandlerFunc(authHandlers.ChangePassword)))

	mux.HandleFunc("GET /api/categories", catalogHandlers.ListCategories)
	mux.HandleFunc("GET /api/products", catalogHandlers.ListProducts)
	mux.HandleFunc("GET /api/products/all", catalogHandlers.ListAllProducts)
	mux.HandleFunc("GET /api/products/{id}", catalogHandlers.GetProduct)
	mux.Handle("POST /api/admin/categories", admin(http.HandlerFunc(catalogHandlers.CreateCategory)))
	mux.Handle("POST /api/admin/products", admin(http.HandlerFunc(catalogHandlers.CreateProduct)))

	mux.Handle("GET /api/cart", authed(http.HandlerFunc(cartHandlers.GetCart)))
	mux.Handle("POST /api/cart/items", authed(http.HandlerFunc(cartHandlers.AddItem)))
	mux.Handle("PUT /api/cart/items/{id}", authed(http.HandlerFunc(cartHandlers.UpdateItem)))
	mux.Handle("DELETE /api/cart/items/{id}", authed(http.HandlerFunc(cartHandlers.RemoveItem)))
	mux.Handle("DELETE /api/cart", authed(http.HandlerFunc(cartHandlers.ClearCart)))
	mux.Handle("POST /api/cart/apply-coupon", authed(http.HandlerFunc(cartHandlers.ApplyCoupon)))

	mux.Handle("GET /api/wishlist", authed(http.HandlerFunc(wishlistHandlers.GetWishlist)))
	mux.Handle("GET /api/wishlist/ids", authed(http.HandlerFunc(wishlistHandlers.GetWishlistIDs)))
	mux.Handle("POST /api/wishlist/toggle/{id}", authed(http.HandlerFunc(wishlistHandlers.ToggleWishlist)))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
