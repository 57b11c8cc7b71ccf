package hub

import (
	"context"
	"errors"
	"strings"
	"sync"

	"agenthub/internal/api"
	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

// Local credential pair accepted without a backend round-trip. Matches the
// account the backend seeds for demos.
const (
	localEmail    = "user@example.com"
	localPassword = "password"
)

// Notifier is the slice of the notifications manager that other services
// depend on: recording notifications and emitting transient toasts.
type Notifier interface {
	Add(title, message string, category types.NotificationCategory)
	Toast(title, message string, isError bool)
}

// AuthManager owns the current-user state: login, logout, demo login,
// profile updates and startup token validation.
//
// State machine: LoggedOut -> LoggedIn (login success) -> LoggedOut (logout
// or token rejection).
type AuthManager struct {
	mu     sync.RWMutex
	local  store.Store
	client *api.Client
	notify Notifier
	logger *utils.Logger

	user  *types.User
	token string

	subs []chan types.AuthEvent
}

// NewAuthManager restores any persisted session from the store. A persisted
// user without a token is treated as logged out and both records are cleared.
func NewAuthManager(local store.Store, client *api.Client, notify Notifier, logger *utils.Logger) *AuthManager {
	am := &AuthManager{local: local, client: client, notify: notify, logger: logger}

	var user types.User
	var token string
	hasUser := store.GetJSON(local, store.KeyUser, &user)
	hasToken := store.GetJSON(local, store.KeyToken, &token)

	if hasUser && hasToken && token != "" {
		am.user = &user
		am.token = token
	} else if hasUser || hasToken {
		_ = local.Delete(store.KeyUser)
		_ = local.Delete(store.KeyToken)
	}
	return am
}

// User returns the active user, or false when logged out.
func (am *AuthManager) User() (types.User, bool) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	if am.user == nil {
		return types.User{}, false
	}
	return *am.user, true
}

// Token returns the persisted token for the active session.
func (am *AuthManager) Token() string {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.token
}

// Subscribe returns a channel of auth transitions. The channel is buffered;
// events are dropped rather than blocking a slow subscriber.
func (am *AuthManager) Subscribe() <-chan types.AuthEvent {
	am.mu.Lock()
	defer am.mu.Unlock()
	ch := make(chan types.AuthEvent, 8)
	am.subs = append(am.subs, ch)
	return ch
}

// Login authenticates with the local credential pair or the remote backend.
// Returns ErrInvalidCredentials when both reject, and a NetworkError when the
// backend cannot be reached at all.
func (am *AuthManager) Login(ctx context.Context, identifier, secret string) (types.User, error) {
	identifier = strings.TrimSpace(identifier)

	if identifier == localEmail && secret == localPassword {
		user := types.User{ID: "1", Email: localEmail, Name: "Regular User"}
		am.establish(user, types.DemoToken)
		am.notify.Toast("Login successful!", "Welcome back, "+user.Name, false)
		return user, nil
	}

	token, err := am.client.Login(ctx, identifier, secret)
	if err != nil {
		if types.IsNetworkError(err) {
			am.notify.Toast("Login failed", "Could not reach the server. Please try again.", true)
			return types.User{}, err
		}
		am.notify.Toast("Login failed", "Please check your credentials.", true)
		return types.User{}, types.ErrInvalidCredentials
	}

	user, err := am.client.Me(ctx, token)
	if err != nil {
		if types.IsNetworkError(err) {
			am.notify.Toast("Login failed", "Could not reach the server. Please try again.", true)
			return types.User{}, err
		}
		am.notify.Toast("Login failed", "Please check your credentials.", true)
		return types.User{}, types.ErrInvalidCredentials
	}

	am.establish(user, token)
	am.notify.Toast("Login successful!", "Welcome back, "+user.Name, false)
	return user, nil
}

// LoginDemo starts a demo session with the reserved identity. Deterministic
// and idempotent: calling it twice yields the same user.
func (am *AuthManager) LoginDemo() types.User {
	user := types.User{ID: "demo1", Email: "demo@example.com", Name: "Demo User", IsDemo: true}
	am.establish(user, types.DemoToken)
	am.notify.Toast("Demo login successful!", "Explore without real credentials.", false)
	return user
}

// Logout clears the persisted user and token, not just the in-memory state.
func (am *AuthManager) Logout() {
	am.mu.Lock()
	am.user = nil
	am.token = ""
	_ = am.local.Delete(store.KeyUser)
	_ = am.local.Delete(store.KeyToken)
	am.mu.Unlock()

	am.notify.Toast("Logged out", "You have been logged out", false)
	am.emit(types.AuthEvent{Kind: types.AuthLoggedOut})
}

// UpdateProfile merges non-empty fields into the current user and persists.
func (am *AuthManager) UpdateProfile(partial types.User) (types.User, error) {
	am.mu.Lock()
	if am.user == nil {
		am.mu.Unlock()
		return types.User{}, types.ErrNotAuthenticated
	}
	if partial.Name != "" {
		am.user.Name = partial.Name
	}
	if partial.Email != "" {
		am.user.Email = partial.Email
	}
	updated := *am.user
	err := store.SetJSON(am.local, store.KeyUser, updated)
	am.mu.Unlock()

	if err != nil {
		return types.User{}, err
	}
	am.notify.Toast("Profile updated successfully", "", false)
	return updated, nil
}

// ValidateToken checks a restored non-demo token against the backend.
// Rejection forces a logout; a network failure is tolerated so an offline
// start does not destroy the session. Callers run this off the UI path.
func (am *AuthManager) ValidateToken(ctx context.Context) {
	am.mu.RLock()
	token := am.token
	active := am.user != nil
	am.mu.RUnlock()

	if !active || token == "" || token == types.DemoToken {
		return
	}

	_, err := am.client.Me(ctx, token)
	switch {
	case err == nil:
		return
	case types.IsNetworkError(err):
		am.logger.Warnf("token validation skipped, backend unreachable: %v", err)
	case errors.Is(err, types.ErrInvalidToken):
		am.logger.Infof("stored token rejected, logging out")
		am.Logout()
	default:
		am.logger.Warnf("token validation failed: %v", err)
	}
}

func (am *AuthManager) establish(user types.User, token string) {
	am.mu.Lock()
	am.user = &user
	am.token = token
	if err := store.SetJSON(am.local, store.KeyUser, user); err != nil {
		am.logger.Warnf("failed to persist user: %v", err)
	}
	if err := store.SetJSON(am.local, store.KeyToken, token); err != nil {
		am.logger.Warnf("failed to persist token: %v", err)
	}
	am.mu.Unlock()

	am.emit(types.AuthEvent{Kind: types.AuthLoggedIn, User: user})
}

func (am *AuthManager) emit(event types.AuthEvent) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	for _, ch := range am.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
