package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclusive-store/storefront/internal/events"
	"github.com/exclusive-store/storefront/internal/storage"
)

func TestManager_LoginCommitsStateAndPersists(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	mgr := NewManager(ManagerOptions{Persist: kv})

	user := User{ID: 1, Email: "a@b.com"}
	require.NoError(t, mgr.Login(user, "tok123", "ref456"))

	snap := mgr.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, "a@b.com", snap.User.Email)

	ctx := context.Background()
	token, err := kv.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
	refresh, err := kv.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref456", refresh)

	rawUser, err := kv.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	var stored User
	require.NoError(t, json.Unmarshal([]byte(rawUser), &stored))
	assert.Equal(t, user, stored)
}

func TestManager_InitRestoresValidSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyToken, signedToken(t, time.Hour)))
	require.NoError(t, kv.Set(ctx, storage.KeyUser, `{"id":1,"email":"a@b.com"}`))

	mgr := NewManager(ManagerOptions{Persist: kv})
	assert.True(t, mgr.Snapshot().Loading)

	mgr.Init(ctx)

	snap := mgr.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.IsAuthenticated)
	require.NotNil(t, snap.User)
	assert.Equal(t, int64(1), snap.User.ID)
}

func TestManager_InitWipesStorageWithoutToken(t *testing.T) {
	t.Parallel()

	// user and wishlistIds present but no token: every key must go.
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyUser, `{"id":1}`))
	require.NoError(t, kv.Set(ctx, storage.KeyWishlistIDs, "[3,9]"))

	mgr := NewManager(ManagerOptions{Persist: kv})
	mgr.Init(ctx)

	snap := mgr.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Zero(t, kv.Len())
}

func TestManager_InitTreatsExpiredTokenAsAnonymous(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyToken, signedToken(t, -time.Second)))
	require.NoError(t, kv.Set(ctx, storage.KeyUser, `{"id":1}`))

	mgr := NewManager(ManagerOptions{Persist: kv})
	mgr.Init(ctx)

	assert.False(t, mgr.Snapshot().IsAuthenticated)
	assert.Zero(t, kv.Len())
}

func TestManager_LogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	ephemeral := storage.NewMemory()
	require.NoError(t, ephemeral.Set(ctx, "scratch", "x"))

	mgr := NewManager(ManagerOptions{Persist: kv, Ephemeral: ephemeral})
	require.NoError(t, mgr.Login(User{ID: 1, Email: "a@b.com"}, "tok", "ref"))

	mgr.Logout(ctx)
	mgr.Logout(ctx) // second call must be a no-op, not a panic
	mgr.Logout(context.Background())

	snap := mgr.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
	assert.Zero(t, kv.Len())
	assert.Zero(t, ephemeral.Len())
}

func TestManager_LogoutOrderAndResilience(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()

	var notifiedToken string
	var redirected bool
	bus := events.NewBus()
	var loggedOut int
	events.Subscribe(bus, events.LoggedOut, func(events.LogoutEvent) { loggedOut++ })

	mgr := NewManager(ManagerOptions{
		Persist: kv,
		Bus:     bus,
		Notify: func(_ context.Context, token string) error {
			notifiedToken = token
			return errors.New("server unreachable")
		},
		Redirect: func() { redirected = true },
	})
	require.NoError(t, mgr.Login(User{ID: 1}, "tok123", "ref"))

	mgr.Logout(ctx)

	// The notify failure must not stop the broadcast or the redirect, and
	// the notify must see the token captured before cleanup removed it.
	assert.Equal(t, "tok123", notifiedToken)
	assert.Equal(t, 1, loggedOut)
	assert.True(t, redirected)
	assert.Zero(t, kv.Len())
}

func TestManager_LogoutSkipsNotifyWithoutToken(t *testing.T) {
	t.Parallel()

	var notified bool
	mgr := NewManager(ManagerOptions{
		Persist: storage.NewMemory(),
		Notify: func(context.Context, string) error {
			notified = true
			return nil
		},
	})

	mgr.Logout(context.Background())
	assert.False(t, notified)
}

func TestManager_TokenReadsStorageAtCallTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	mgr := NewManager(ManagerOptions{Persist: kv})

	assert.Empty(t, mgr.Token(ctx))

	require.NoError(t, mgr.Login(User{ID: 1}, "tok-a", "ref"))
	assert.Equal(t, "tok-a", mgr.Token(ctx))

	require.NoError(t, mgr.Login(User{ID: 1}, "tok-b", "ref"))
	assert.Equal(t, "tok-b", mgr.Token(ctx))

	mgr.Logout(ctx)
	assert.Empty(t, mgr.Token(ctx))
}

func TestManager_SubscribersSeeTransitions(t *testing.T) {
	t.Parallel()

	mgr := NewManager(ManagerOptions{Persist: storage.NewMemory()})
	var snaps []Snapshot
	cancel := mgr.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	require.NoError(t, mgr.Login(User{ID: 1}, "tok", "ref"))
	mgr.Logout(context.Background())

	require.GreaterOrEqual(t, len(snaps), 2)
	assert.True(t, snaps[0].IsAuthenticated)
	assert.False(t, snaps[len(snaps)-1].IsAuthenticated)

	cancel()
	before := len(snaps)
	mgr.Logout(context.Background())
	assert.Len(t, snaps, before)
}
