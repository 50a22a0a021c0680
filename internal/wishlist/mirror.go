// Package wishlist implements the optimistic local-mirror pattern: wishlist
// membership lives in persisted storage under wishlistIds and mutates
// immediately, while the matching server call runs in the background. The
// UI never waits on the network to flip a heart icon.
package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/exclusive-store/storefront/internal/api"
	"github.com/exclusive-store/storefront/internal/catalog"
	apperrors "github.com/exclusive-store/storefront/internal/errors"
	"github.com/exclusive-store/storefront/internal/events"
	"github.com/exclusive-store/storefront/internal/session"
	"github.com/exclusive-store/storefront/internal/storage"
)

// Sessions is the session read surface the mirror needs; *session.Manager
// satisfies it.
type Sessions interface {
	Snapshot() session.Snapshot
}

// Doer is the request surface this service needs; *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, path string, opts api.Options) api.Result
}

// Catalog materializes the full product list; *catalog.Service satisfies it.
type Catalog interface {
	AllProducts(ctx context.Context) ([]catalog.Product, error)
}

// MirrorOptions groups dependencies for NewMirror.
type MirrorOptions struct {
	Store    storage.KV
	Sessions Sessions
	API      Doer
	Catalog  Catalog
	Bus      *events.Bus
	Logger   *slog.Logger
}

// Mirror is the wishlist's optimistic local mirror.
type Mirror struct {
	store    storage.KV
	sessions Sessions
	api      Doer
	catalog  Catalog
	bus      *events.Bus
	logger   *slog.Logger

	// mu serializes local read-modify-write sequences on the persisted set.
	mu sync.Mutex
	wg sync.WaitGroup
}

// NewMirror constructs a Mirror.
func NewMirror(opts MirrorOptions) *Mirror {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		store:    opts.Store,
		sessions: opts.Sessions,
		api:      opts.API,
		catalog:  opts.Catalog,
		bus:      opts.Bus,
		logger:   logger,
	}
}

// Toggle flips productID's wishlist membership. The local set mutates and
// persists before Toggle returns; the server mutation runs in the
// background. If the server call fails the local change is reverted and a
// notice posted, so the mirror does not silently diverge from server
// state. Requires an authenticated session.
func (m *Mirror) Toggle(ctx context.Context, productID int64) (added bool, err error) {
	if !m.sessions.Snapshot().IsAuthenticated {
		m.notice(events.NoticeWarn, "Please login to add items to wishlist")
		return false, apperrors.Unauthorized("login required")
	}

	m.mu.Lock()
	ids := m.readIDs(ctx)
	if slices.Contains(ids, productID) {
		added = false
		ids = slices.DeleteFunc(ids, func(id int64) bool { return id == productID })
	} else {
		added = true
		ids = append(ids, productID)
	}
	if err := m.writeIDs(ctx, ids); err != nil {
		m.mu.Unlock()
		m.notice(events.NoticeError, "Failed to update wishlist")
		return false, err
	}
	m.mu.Unlock()

	events.Publish(m.bus, events.WishlistChanged, events.WishlistEvent{ProductID: productID, Added: added})
	if added {
		m.notice(events.NoticeInfo, "Added to wishlist")
	} else {
		m.notice(events.NoticeInfo, "Removed from wishlist")
	}

	// Background server sync; Toggle does not wait for it.
	bgCtx := context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.sync(bgCtx, productID, added)
	}()

	return added, nil
}

func (m *Mirror) sync(ctx context.Context, productID int64, added bool) {
	var res api.Result
	if added {
		res = m.api.Do(ctx, "/Wishlist/items", api.Options{
			Method: http.MethodPost,
			Body:   map[string]any{"productId": productID},
		})
	} else {
		res = m.api.Do(ctx, fmt.Sprintf("/Wishlist/items/%d", productID), api.Options{Method: http.MethodDelete})
	}
	if res.OK && res.Succeeded() {
		return
	}

	m.logger.Error("wishlist sync failed, reverting local change",
		"product_id", productID,
		"added", added,
		"status", res.Status,
		"error", res.Err,
	)
	m.revert(ctx, productID, added)
}

// revert undoes a local toggle whose server call failed, unless a newer
// toggle already moved the membership again.
func (m *Mirror) revert(ctx context.Context, productID int64, added bool) {
	m.mu.Lock()
	ids := m.readIDs(ctx)
	switch {
	case added && slices.Contains(ids, productID):
		ids = slices.DeleteFunc(ids, func(id int64) bool { return id == productID })
	case !added && !slices.Contains(ids, productID):
		ids = append(ids, productID)
	default:
		m.mu.Unlock()
		return
	}
	if err := m.writeIDs(ctx, ids); err != nil {
		m.logger.Error("revert wishlist change failed", "product_id", productID, "error", err)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	events.Publish(m.bus, events.WishlistChanged, events.WishlistEvent{ProductID: productID, Added: !added})
	m.notice(events.NoticeWarn, "Could not sync wishlist change, reverted")
}

// IDs returns the locally persisted wishlist membership, in insertion order.
func (m *Mirror) IDs(ctx context.Context) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readIDs(ctx)
}

// Contains reports productID's local membership without a server round trip.
func (m *Mirror) Contains(ctx context.Context, productID int64) bool {
	return slices.Contains(m.IDs(ctx), productID)
}

// Materialize renders the wishlist: the full catalog is fetched and
// filtered against the local id set. There is no server-side wishlist
// read, so the catalog order decides the display order.
func (m *Mirror) Materialize(ctx context.Context) ([]catalog.Product, error) {
	ids := m.IDs(ctx)
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := m.catalog.AllProducts(ctx)
	if err != nil {
		return nil, err
	}

	member := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}
	var matched []catalog.Product
	for _, p := range products {
		if _, ok := member[p.ID]; ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Wait blocks until in-flight background syncs settle. Used by shutdown
// and tests.
func (m *Mirror) Wait() {
	m.wg.Wait()
}

// readIDs loads the persisted set, treating a missing or corrupt value as
// empty. Callers hold mu.
func (m *Mirror) readIDs(ctx context.Context) []int64 {
	raw, err := m.store.Get(ctx, storage.KeyWishlistIDs)
	if err != nil {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		m.logger.Warn("persisted wishlist is corrupt, treating as empty", "error", err)
		return nil
	}
	return ids
}

// writeIDs persists the set. Callers hold mu.
func (m *Mirror) writeIDs(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode wishlist ids")
	}
	if err := m.store.Set(ctx, storage.KeyWishlistIDs, string(raw)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist wishlist ids")
	}
	return nil
}

func (m *Mirror) notice(level events.NoticeLevel, message string) {
	events.Publish(m.bus, events.NoticePosted, events.NewNotice(level, message))
}
