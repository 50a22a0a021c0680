// Package cart exposes the authenticated shopping cart, a thin layer over
// the commerce API's cart endpoints. The server owns cart truth; this
// package only surfaces mutations and publishes the transient notices the
// UI shows for them.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/exclusive-store/storefront/internal/api"
	apperrors "github.com/exclusive-store/storefront/internal/errors"
	"github.com/exclusive-store/storefront/internal/events"
)

// Item is one cart line.
type Item struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// Cart is the server-side cart state.
type Cart struct {
	Items      []Item  `json:"items"`
	TotalPrice float64 `json:"totalPrice"`
}

// Doer is the request surface this service needs; *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, path string, opts api.Options) api.Result
}

// ServiceOptions groups dependencies for NewService.
type ServiceOptions struct {
	API    Doer
	Bus    *events.Bus
	Logger *slog.Logger
}

// Service provides cart operations.
type Service struct {
	api    Doer
	bus    *events.Bus
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    opts.API,
		bus:    opts.Bus,
		logger: logger,
	}
}

// Get fetches the current cart.
func (s *Service) Get(ctx context.Context) (Cart, error) {
	res := s.api.Do(ctx, "/Cart", api.Options{})
	if err := res.Failure("get cart"); err != nil {
		return Cart{}, err
	}

	obj := api.Object(res.Data)
	if obj == nil {
		// An empty cart sometimes arrives as a bare success envelope.
		return Cart{}, nil
	}
	var cart Cart
	if err := api.DecodeInto(obj, &cart); err != nil {
		return Cart{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode cart")
	}
	return cart, nil
}

// AddItem adds a product to the cart.
func (s *Service) AddItem(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	res := s.api.Do(ctx, "/Cart/items", api.Options{
		Method: http.MethodPost,
		Body:   map[string]any{"productId": productID, "quantity": quantity},
	})
	if err := s.mutationFailure(res, "add to cart"); err != nil {
		return err
	}
	s.notice(events.NoticeInfo, "Added to cart")
	return nil
}

// UpdateItem sets the quantity of an existing cart line.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return apperrors.ValidationField("quantity", "quantity must be at least 1")
	}

	res := s.api.Do(ctx, fmt.Sprintf("/Cart/items/%d", itemID), api.Options{
		Method: http.MethodPut,
		Body:   map[string]any{"quantity": quantity},
	})
	return s.mutationFailure(res, "update cart item")
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	res := s.api.Do(ctx, fmt.Sprintf("/Cart/items/%d", itemID), api.Options{Method: http.MethodDelete})
	if err := s.mutationFailure(res, "remove cart item"); err != nil {
		return err
	}
	s.notice(events.NoticeInfo, "Removed from cart")
	return nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	res := s.api.Do(ctx, "/Cart", api.Options{Method: http.MethodDelete})
	return s.mutationFailure(res, "clear cart")
}

// ApplyCoupon applies a coupon code and returns the re-priced cart.
func (s *Service) ApplyCoupon(ctx context.Context, code string) (Cart, error) {
	if code == "" {
		return Cart{}, apperrors.ValidationField("couponCode", "coupon code is required")
	}

	res := s.api.Do(ctx, "/Cart/apply-coupon", api.Options{
		Method: http.MethodPost,
		Body:   map[string]any{"couponCode": code},
	})
	if err := s.mutationFailure(res, "apply coupon"); err != nil {
		return Cart{}, err
	}

	var cart Cart
	if obj := api.Object(res.Data); obj != nil {
		if err := api.DecodeInto(obj, &cart); err != nil {
			return Cart{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode cart")
		}
	}
	return cart, nil
}

// mutationFailure folds transport failures and succeeded:false envelopes
// into one error path and posts the warning notice the UI shows.
func (s *Service) mutationFailure(res api.Result, context string) error {
	if err := res.Failure(context); err != nil {
		s.notice(events.NoticeWarn, "Something went wrong, please try again")
		return err
	}
	if !res.Succeeded() {
		msg := api.Message(res.Data)
		s.notice(events.NoticeWarn, "Something went wrong, please try again")
		return apperrors.Unavailablef("%s: %s", context, msg)
	}
	return nil
}

func (s *Service) notice(level events.NoticeLevel, message string) {
	events.Publish(s.bus, events.NoticePosted, events.NewNotice(level, message))
}
