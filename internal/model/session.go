package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleNone  = "" // no authenticated session
)

// Screens the app can show. Not persisted; recomputed from the session on load.
const (
	ScreenUserLogin         = "user-login"
	ScreenAdminLogin        = "admin-login"
	ScreenUserDashboard     = "user-dashboard"
	ScreenAdminDashboard    = "admin-dashboard"
	ScreenComplaintFiling   = "complaint-filing"
	ScreenComplaintTracking = "complaint-tracking"
	ScreenSchemeAwareness   = "scheme-awareness"
)

// SessionKey is the key-value store key holding the session record.
const SessionKey = "gramSahaySession"

// Session is the sole persisted authentication artifact. Exactly one may
// exist at a time; writing a new one overwrites the prior.
type Session struct {
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// ValidScreen reports whether s names a known screen.
func ValidScreen(s string) bool {
	switch s {
	case ScreenUserLogin, ScreenAdminLogin, ScreenUserDashboard, ScreenAdminDashboard,
		ScreenComplaintFiling, ScreenComplaintTracking, ScreenSchemeAwareness:
		return true
	}
	return false
}

// ParseSession decodes a stored session record, validating it at the
// boundary. A record that decodes but carries a missing phone or an
// unrecognized role is rejected, never trusted implicitly.
func ParseSession(raw string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	if s.Phone == "" {
		return nil, fmt.Errorf("session record has no phone")
	}
	if s.Role != RoleUser && s.Role != RoleAdmin {
		return nil, fmt.Errorf("session record has unrecognized role %q", s.Role)
	}
	return &s, nil
}

// Encode serializes the session for the key-value store.
func (s *Session) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session record: %w", err)
	}
	return string(b), nil
}
