package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
	"gram_sahay/internal/utils"
)

// Login flow steps
const (
	StepPhone   = "phone"
	StepOTP     = "otp"
	StepSuccess = "success"
)

// mockOTPCode is the fixed verification code of the simulated flow. A real
// deployment must replace this with out-of-band delivery (SMS gateway).
const mockOTPCode = "123456"

var (
	phoneRegex = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	otpRegex   = regexp.MustCompile(`^[0-9]{6}$`)
)

var (
	ErrPhoneRequired     = errors.New("phone number is required")
	ErrPhoneInvalid      = errors.New("enter a valid 10 digit mobile number starting with 6-9")
	ErrOTPRequired       = errors.New("otp is required")
	ErrOTPInvalid        = errors.New("enter a valid 6 digit otp")
	ErrOTPMismatch       = errors.New("otp does not match, try again")
	ErrRequestInProgress = errors.New("a request is already in progress")
	ErrWrongStep         = errors.New("action not allowed in the current login step")
)

// OTPLogin drives the phone -> otp -> success login flow for one role.
// Both roles run the same machine; only the role parameter differs, so the
// user and admin flows cannot drift apart. Validation failures never
// advance the step. While a simulated send or verify is in flight the
// machine rejects further submissions.
type OTPLogin struct {
	mu       sync.Mutex
	store    repository.KVStore
	role     string
	delay    time.Duration
	step     string
	phone    string
	codeHash string
	pending  bool
}

// NewOTPLogin creates the login machine for role. If a session for the
// same role already exists the machine starts in the success step with the
// phone pre-filled.
func NewOTPLogin(ctx context.Context, store repository.KVStore, role string, delay time.Duration) *OTPLogin {
	m := &OTPLogin{
		store: store,
		role:  role,
		delay: delay,
		step:  StepPhone,
	}

	raw, ok, err := store.Get(ctx, model.SessionKey)
	if err != nil || !ok {
		return m
	}
	if session, err := model.ParseSession(raw); err == nil && session.Role == role {
		m.phone = session.Phone
		m.step = StepSuccess
	}
	return m
}

// Step returns the current login step.
func (m *OTPLogin) Step() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Phone returns the phone number held by the flow.
func (m *OTPLogin) Phone() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phone
}

// Role returns the role this machine authenticates.
func (m *OTPLogin) Role() string {
	return m.role
}

// SubmitPhone validates the phone number and, after the simulated send
// delay, advances to the otp step. The generated code is held hashed for
// the later comparison.
func (m *OTPLogin) SubmitPhone(ctx context.Context, phone string) error {
	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return ErrRequestInProgress
	}
	if m.step != StepPhone {
		m.mu.Unlock()
		return ErrWrongStep
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		m.mu.Unlock()
		return ErrPhoneRequired
	}
	if !phoneRegex.MatchString(phone) {
		m.mu.Unlock()
		return ErrPhoneInvalid
	}

	hash, err := utils.HashOTP(mockOTPCode)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to prepare verification code: %w", err)
	}

	m.pending = true
	m.mu.Unlock()

	// Simulated send delay. The design carries no timeout or failure
	// branch here: the delay always completes and always transitions.
	time.Sleep(m.delay)

	m.mu.Lock()
	m.phone = phone
	m.codeHash = hash
	m.step = StepOTP
	m.pending = false
	m.mu.Unlock()
	return nil
}

// SubmitOTP validates the code and, after the simulated verify delay,
// writes the session record and advances to the success step. The written
// session is returned so callers can react to it.
func (m *OTPLogin) SubmitOTP(ctx context.Context, code string) (*model.Session, error) {
	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return nil, ErrRequestInProgress
	}
	if m.step != StepOTP {
		m.mu.Unlock()
		return nil, ErrWrongStep
	}

	code = strings.TrimSpace(code)
	if code == "" {
		m.mu.Unlock()
		return nil, ErrOTPRequired
	}
	if !otpRegex.MatchString(code) {
		m.mu.Unlock()
		return nil, ErrOTPInvalid
	}
	if !utils.CheckOTPHash(code, m.codeHash) {
		m.mu.Unlock()
		return nil, ErrOTPMismatch
	}

	m.pending = true
	phone := m.phone
	m.mu.Unlock()

	time.Sleep(m.delay)

	session := &model.Session{
		Phone:      phone,
		Role:       m.role,
		LoggedInAt: time.Now().UTC(),
	}
	raw, err := session.Encode()
	if err == nil {
		err = m.store.Set(ctx, model.SessionKey, raw)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = false
	if err != nil {
		// Stay on the otp step; the caller may retry.
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	m.step = StepSuccess
	return session, nil
}

// ChangeNumber returns from the otp step to phone entry. The entered phone
// is kept; the pending code is discarded.
func (m *OTPLogin) ChangeNumber() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return ErrRequestInProgress
	}
	if m.step != StepOTP {
		return ErrWrongStep
	}
	m.codeHash = ""
	m.step = StepPhone
	return nil
}

// Logout deletes the session record and resets the flow to phone entry.
func (m *OTPLogin) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Remove(ctx, model.SessionKey); err != nil {
		return fmt.Errorf("failed to remove session record: %w", err)
	}
	m.phone = ""
	m.codeHash = ""
	m.step = StepPhone
	return nil
}
