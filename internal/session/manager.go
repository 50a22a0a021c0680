// Package session owns the authenticated identity for the current user:
// who is logged in, whether their token is still valid, and the login and
// logout transitions. All other components read session state through a
// Manager snapshot; none of them touch the persisted keys directly.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/exclusive-store/storefront/internal/events"
	"github.com/exclusive-store/storefront/internal/storage"
)

// User is the authenticated user's profile as returned by the commerce API.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`

	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == "admin" || u.Role == "Admin" }

// Snapshot is the read model consumers render from. Consumers must decide
// authorization from these three fields only.
type Snapshot struct {
	User            *User
	Loading         bool
	IsAuthenticated bool
}

// ManagerOptions groups dependencies for NewManager.
type ManagerOptions struct {
	// Persist is the durable key-value store (token, refreshToken, user, ...).
	Persist storage.KV

	// Ephemeral is the session-scoped store wiped alongside Persist on
	// logout. Optional.
	Ephemeral storage.KV

	// Bus receives the LoggedOut broadcast. Optional.
	Bus *events.Bus

	// Notify is the best-effort server logout call. It receives the token
	// captured before local cleanup, since cleanup removes the stored one.
	// Errors are logged and never surfaced. Optional.
	Notify func(ctx context.Context, token string) error

	// Redirect is invoked last during logout so the UI shell can navigate
	// to the application root. Optional.
	Redirect func()

	Logger *slog.Logger

	// Now overrides the clock for tests. Optional.
	Now func() time.Time
}

// Manager is the process-wide session store. A Manager starts in the
// loading state; Init resolves it to authenticated or anonymous from
// persisted storage.
type Manager struct {
	persist   storage.KV
	ephemeral storage.KV
	bus       *events.Bus
	notify    func(ctx context.Context, token string) error
	redirect  func()
	logger    *slog.Logger
	now       func() time.Time

	mu            sync.RWMutex
	user          *User
	loading       bool
	authenticated bool

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)
}

// NewManager constructs a Manager in the loading state.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		persist:   opts.Persist,
		ephemeral: opts.Ephemeral,
		bus:       opts.Bus,
		notify:    opts.Notify,
		redirect:  opts.Redirect,
		logger:    logger,
		now:       now,
		loading:   true,
		subs:      make(map[int]func(Snapshot)),
	}
}

// SetNotify installs the server logout call after construction. The
// accounts service both writes sessions and performs the logout call, so
// one side of that cycle is wired late. Call before Init.
func (m *Manager) SetNotify(notify func(ctx context.Context, token string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = notify
}

// Init resolves the startup session state from persisted storage.
// A present, unexpired token together with a stored user profile restores
// the authenticated state. Anything else (missing token, expired or
// malformed token, corrupt profile) runs the full logout cleanup, so a
// store without a valid token ends up holding no application state at all.
func (m *Manager) Init(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.loading = false
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.notifySubscribers(snap)
	}()

	token, tokenErr := m.persist.Get(ctx, storage.KeyToken)
	rawUser, userErr := m.persist.Get(ctx, storage.KeyUser)

	if tokenErr == nil && userErr == nil && TokenValid(token, m.now()) {
		var user User
		if err := json.Unmarshal([]byte(rawUser), &user); err == nil {
			m.mu.Lock()
			m.user = &user
			m.authenticated = true
			m.mu.Unlock()
			return
		}
		m.logger.Warn("stored user profile is corrupt, clearing session")
	}

	// No valid session; wipe whatever is left so stale application state
	// cannot outlive its token.
	m.Logout(ctx)
}

// Login commits an already-authenticated session: the caller performed the
// login call against the API and hands over the results. All three values
// are persisted, then the in-memory state flips synchronously.
func (m *Manager) Login(user User, accessToken, refreshToken string) error {
	ctx := context.Background()

	var firstErr error
	persist := func(key, value string) {
		if err := m.persist.Set(ctx, key, value); err != nil {
			m.logger.Error("persist session value failed", "key", key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	persist(storage.KeyToken, accessToken)
	persist(storage.KeyRefreshToken, refreshToken)
	profile, err := json.Marshal(user)
	if err != nil {
		m.logger.Error("marshal user profile failed", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		persist(storage.KeyUser, string(profile))
	}

	m.mu.Lock()
	u := user
	m.user = &u
	m.authenticated = true
	m.loading = false
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notifySubscribers(snap)

	return firstErr
}

// Logout terminates the session. It is idempotent and every step runs even
// if an earlier one fails: in-memory state is cleared first so the UI
// reacts immediately, then persisted state is removed (known keys
// individually, then any remaining keys, then a bulk clear of both
// stores), then the server is notified best-effort, the LoggedOut event is
// broadcast, and finally the redirect hook runs.
func (m *Manager) Logout(ctx context.Context) {
	// Capture the token before cleanup removes it; the server notify needs it.
	token, err := m.persist.Get(ctx, storage.KeyToken)
	if err != nil {
		token = ""
	}

	m.mu.Lock()
	m.user = nil
	m.authenticated = false
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notifySubscribers(snap)

	knownKeys := []string{
		storage.KeyToken,
		storage.KeyRefreshToken,
		storage.KeyUser,
		storage.KeyWishlistIDs,
		storage.KeyWishlistLegacy,
	}
	for _, key := range knownKeys {
		if delErr := m.persist.Delete(ctx, key); delErr != nil {
			m.logger.Error("remove persisted key failed", "key", key, "error", delErr)
		}
	}

	// Sweep anything that is not a known key.
	if keys, keysErr := m.persist.Keys(ctx); keysErr != nil {
		m.logger.Error("list persisted keys failed", "error", keysErr)
	} else {
		for _, key := range keys {
			if delErr := m.persist.Delete(ctx, key); delErr != nil {
				m.logger.Error("remove persisted key failed", "key", key, "error", delErr)
			}
		}
	}

	if clearErr := m.persist.Clear(ctx); clearErr != nil {
		m.logger.Error("clear persisted store failed", "error", clearErr)
	}
	if m.ephemeral != nil {
		if clearErr := m.ephemeral.Clear(ctx); clearErr != nil {
			m.logger.Error("clear ephemeral store failed", "error", clearErr)
		}
	}

	if token != "" && m.notify != nil {
		if notifyErr := m.notify(ctx, token); notifyErr != nil {
			m.logger.Info("server logout notify failed, continuing", "error", notifyErr)
		}
	}

	events.Publish(m.bus, events.LoggedOut, events.LogoutEvent{})

	if m.redirect != nil {
		m.redirect()
	}
}

// Snapshot returns the current session read model.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	var user *User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Snapshot{
		User:            user,
		Loading:         m.loading,
		IsAuthenticated: m.authenticated,
	}
}

// Token returns the currently persisted access token, or "" when absent.
// It reads storage at call time so a login or logout between two calls is
// reflected immediately.
func (m *Manager) Token(ctx context.Context) string {
	token, err := m.persist.Get(ctx, storage.KeyToken)
	if err != nil {
		return ""
	}
	return token
}

// Subscribe registers fn to observe session snapshots. The returned cancel
// function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notifySubscribers(snap Snapshot) {
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
