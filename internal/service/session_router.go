package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
)

// SessionRouter owns the active screen and the authenticated role. Every
// navigation request goes through it; leaf screens never check roles
// themselves. A screen gated to one role is never surfaced while another
// role (or no role) is active.
type SessionRouter struct {
	mu          sync.Mutex
	store       repository.KVStore
	screen      string
	role        string
	subscribers []func(screen, role string)
}

// NewSessionRouter builds a router and restores its state from the stored
// session record. An absent or corrupt record lands on the user login
// screen; corruption is logged and swallowed, never fatal.
func NewSessionRouter(ctx context.Context, store repository.KVStore) *SessionRouter {
	r := &SessionRouter{
		store:  store,
		screen: model.ScreenUserLogin,
		role:   model.RoleNone,
	}

	raw, ok, err := store.Get(ctx, model.SessionKey)
	if err != nil {
		log.Printf("WARN: failed to read session record, starting logged out: %v", err)
		return r
	}
	if !ok {
		return r
	}

	session, err := model.ParseSession(raw)
	if err != nil {
		// Recoverable: treat a corrupt record as absent.
		log.Printf("WARN: corrupt session record, starting logged out: %v", err)
		return r
	}

	r.role = session.Role
	if session.Role == model.RoleAdmin {
		r.screen = model.ScreenAdminDashboard
	} else {
		r.screen = model.ScreenUserDashboard
	}
	return r
}

// CurrentScreen returns the active screen.
func (r *SessionRouter) CurrentScreen() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// CurrentRole returns the authenticated role, or model.RoleNone.
func (r *SessionRouter) CurrentRole() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.role
}

// Subscribe registers a callback invoked whenever the active screen
// changes. Callbacks run under the router lock and must not call back into
// the router.
func (r *SessionRouter) Subscribe(fn func(screen, role string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// RequestNavigate applies role gating to target and moves to the permitted
// screen, which may differ from the request. Denials are silent redirects,
// not errors, and the denied screen is never surfaced. The operation is
// idempotent: repeating a permitted target changes nothing and notifies
// no one.
func (r *SessionRouter) RequestNavigate(target string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := r.resolve(target)
	r.setScreenLocked(resolved)
	return resolved
}

func (r *SessionRouter) resolve(target string) string {
	switch target {
	case model.ScreenAdminDashboard, model.ScreenAdminLogin:
		if r.role == model.RoleAdmin {
			return target
		}
		if r.role != model.RoleNone {
			// A logged-in non-admin stays in user space.
			return model.ScreenUserDashboard
		}
		// Unauthenticated admin access lands on the admin login page,
		// not silently in user space.
		return model.ScreenAdminLogin
	case model.ScreenUserDashboard, model.ScreenComplaintFiling,
		model.ScreenComplaintTracking, model.ScreenSchemeAwareness:
		if r.role == model.RoleUser {
			return target
		}
		if r.role == model.RoleAdmin {
			return model.ScreenAdminDashboard
		}
		return model.ScreenUserLogin
	default:
		// user-login is reachable by anyone.
		return model.ScreenUserLogin
	}
}

// Login records a successful authentication reported by the login flow and
// moves to that role's dashboard. Writing the session record is the login
// flow's responsibility, not the router's.
func (r *SessionRouter) Login(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.role = role
	if role == model.RoleAdmin {
		r.setScreenLocked(model.ScreenAdminDashboard)
	} else {
		r.setScreenLocked(model.ScreenUserDashboard)
	}
}

// Logout deletes the session record and returns to the user login screen.
func (r *SessionRouter) Logout(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Remove(ctx, model.SessionKey); err != nil {
		return fmt.Errorf("failed to remove session record: %w", err)
	}
	r.role = model.RoleNone
	r.setScreenLocked(model.ScreenUserLogin)
	return nil
}

func (r *SessionRouter) setScreenLocked(screen string) {
	if screen == r.screen {
		return
	}
	r.screen = screen
	for _, fn := range r.subscribers {
		fn(r.screen, r.role)
	}
}
