package bootstrap

import (
	"log/slog"

	"github.com/exclusive-store/storefront/config"
	"github.com/exclusive-store/storefront/internal/account"
	"github.com/exclusive-store/storefront/internal/api"
	"github.com/exclusive-store/storefront/internal/cart"
	"github.com/exclusive-store/storefront/internal/catalog"
	"github.com/exclusive-store/storefront/internal/events"
	"github.com/exclusive-store/storefront/internal/session"
	"github.com/exclusive-store/storefront/internal/storage"
	"github.com/exclusive-store/storefront/internal/wishlist"
)

// ServiceDeps holds shared dependencies for service construction.
type ServiceDeps struct {
	Config *config.AppConfig
	Store  storage.KV
	Logger *slog.Logger
}

// ServiceContainer holds the constructed service instances.
type ServiceContainer struct {
	Bus      *events.Bus
	Sessions *session.Manager
	API      *api.Client
	Accounts *account.Service
	Catalog  *catalog.Service
	Cart     *cart.Service
	Wishlist *wishlist.Mirror
}

// NewServices constructs the full service graph. The session manager and
// the API client depend on each other (the client reads the stored token,
// logout notifies the server through the accounts service), so wiring goes
// through two passes.
func NewServices(deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	bus := events.NewBus()

	manager := session.NewManager(session.ManagerOptions{
		Persist:   deps.Store,
		Ephemeral: storage.NewMemory(),
		Bus:       bus,
		Logger:    logger,
	})

	client := api.NewClient(api.ClientOptions{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: api.HTTPClientWithTimeout(cfg.API.Timeout),
		Tokens:     manager,
		Logger:     logger,
	})

	accounts := account.NewService(account.ServiceOptions{
		API:      client,
		Sessions: manager,
		Logger:   logger,
	})
	manager.SetNotify(accounts.NotifyLogout)

	catalogSvc := catalog.NewService(catalog.ServiceOptions{
		API:              client,
		PageSize:         cfg.API.PageSize,
		FetchConcurrency: cfg.API.FetchConcurrency,
		Logger:           logger,
	})
	cartSvc := cart.NewService(cart.ServiceOptions{API: client, Bus: bus, Logger: logger})
	mirror := wishlist.NewMirror(wishlist.MirrorOptions{
		Store:    deps.Store,
		Sessions: manager,
		API:      client,
		Catalog:  catalogSvc,
		Bus:      bus,
		Logger:   logger,
	})

	return ServiceContainer{
		Bus:      bus,
		Sessions: manager,
		API:      client,
		Accounts: accounts,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Wishlist: mirror,
	}
}
