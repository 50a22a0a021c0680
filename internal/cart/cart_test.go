package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclusive-store/storefront/internal/api"
	apperrors "github.com/exclusive-store/storefront/internal/errors"
	"github.com/exclusive-store/storefront/internal/events"
)

func newService(t *testing.T, handler http.Handler) (*Service, *events.Bus) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	bus := events.NewBus()
	client := api.NewClient(api.ClientOptions{BaseURL: server.URL})
	return NewService(ServiceOptions{API: client, Bus: bus}), bus
}

func TestService_Get(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Cart", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"succeeded":true,"data":{"items":[{"id":1,"productId":7,"price":25,"quantity":2}],"totalPrice":50}}`))
	}))

	cart, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(7), cart.Items[0].ProductID)
	assert.Equal(t, float64(50), cart.TotalPrice)
}

func TestService_Get_EmptyEnvelope(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"succeeded":true,"data":null}`))
	}))

	cart, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestService_AddItem(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	svc, bus := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Cart/items", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"succeeded":true}`))
	}))

	var notices []events.Notice
	events.Subscribe(bus, events.NoticePosted, func(n events.Notice) { notices = append(notices, n) })

	require.NoError(t, svc.AddItem(context.Background(), 7, 0))

	assert.Equal(t, float64(7), gotBody["productId"])
	assert.Equal(t, float64(1), gotBody["quantity"]) // clamped up from 0
	require.Len(t, notices, 1)
	assert.Equal(t, events.NoticeInfo, notices[0].Level)
}

func TestService_AddItem_ApplicationFailure(t *testing.T) {
	t.Parallel()

	// 200 with succeeded:false is still a failure.
	svc, bus := newService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"succeeded":false,"message":"out of stock"}`))
	}))

	var notices []events.Notice
	events.Subscribe(bus, events.NoticePosted, func(n events.Notice) { notices = append(notices, n) })

	err := svc.AddItem(context.Background(), 7, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.Contains(t, err.Error(), "out of stock")
	require.Len(t, notices, 1)
	assert.Equal(t, events.NoticeWarn, notices[0].Level)
}

func TestService_UpdateItem(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Cart/items/3", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["quantity"])
		_, _ = w.Write([]byte(`{"succeeded":true}`))
	}))

	require.NoError(t, svc.UpdateItem(context.Background(), 3, 5))

	err := svc.UpdateItem(context.Background(), 3, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestService_RemoveItemAndClear(t *testing.T) {
	t.Parallel()

	var paths []string
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"succeeded":true}`))
	}))

	require.NoError(t, svc.RemoveItem(context.Background(), 3))
	require.NoError(t, svc.Clear(context.Background()))
	assert.Equal(t, []string{"/Cart/items/3", "/Cart"}, paths)
}

func TestService_ApplyCoupon(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Cart/apply-coupon", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SAVE20", body["couponCode"])
		_, _ = w.Write([]byte(`{"succeeded":true,"data":{"items":[],"totalPrice":40}}`))
	}))

	cart, err := svc.ApplyCoupon(context.Background(), "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, float64(40), cart.TotalPrice)

	_, err = svc.ApplyCoupon(context.Background(), "")
	assert.True(t, apperrors.IsValidation(err))
}
