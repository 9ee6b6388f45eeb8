package service

import (
	"context"
	"testing"

	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"

	"github.com/stretchr/testify/assert"
)

func newTestLogin(t *testing.T, role string) (*OTPLogin, *repository.MemoryKVStore) {
	t.Helper()
	store := repository.NewMemoryKVStore()
	return NewOTPLogin(context.Background(), store, role, 0), store
}

func TestOTPLogin_SubmitPhone_Valid(t *testing.T) {
	for _, phone := range []string{"9876543210", "6000000000", "7123456789", "8999999999"} {
		m, _ := newTestLogin(t, model.RoleUser)
		err := m.SubmitPhone(context.Background(), phone)
		assert.NoError(t, err, "phone %s", phone)
		assert.Equal(t, StepOTP, m.Step())
		assert.Equal(t, phone, m.Phone())
	}
}

func TestOTPLogin_SubmitPhone_Empty(t *testing.T) {
	m, _ := newTestLogin(t, model.RoleUser)

	err := m.SubmitPhone(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrPhoneRequired)
	assert.Equal(t, StepPhone, m.Step())
}

func TestOTPLogin_SubmitPhone_Invalid(t *testing.T) {
	m, _ := newTestLogin(t, model.RoleUser)

	for _, phone := range []string{"1234567890", "987654321", "98765432101", "98765abcde", "5876543210"} {
		err := m.SubmitPhone(context.Background(), phone)
		assert.ErrorIs(t, err, ErrPhoneInvalid, "phone %s", phone)
		assert.Equal(t, StepPhone, m.Step())
	}
}

func TestOTPLogin_FullFlow_WritesSession(t *testing.T) {
	ctx := context.Background()
	m, store := newTestLogin(t, model.RoleUser)

	err := m.SubmitPhone(ctx, "9876543210")
	assert.NoError(t, err)
	assert.Equal(t, StepOTP, m.Step())

	session, err := m.SubmitOTP(ctx, "123456")
	assert.NoError(t, err)
	assert.Equal(t, StepSuccess, m.Step())
	assert.Equal(t, "9876543210", session.Phone)
	assert.Equal(t, model.RoleUser, session.Role)
	assert.False(t, session.LoggedInAt.IsZero())

	raw, ok, err := store.Get(ctx, model.SessionKey)
	assert.NoError(t, err)
	assert.True(t, ok)

	stored, err := model.ParseSession(raw)
	assert.NoError(t, err)
	assert.Equal(t, "9876543210", stored.Phone)
	assert.Equal(t, model.RoleUser, stored.Role)
}

func TestOTPLogin_AdminFlow_WritesAdminRole(t *testing.T) {
	ctx := context.Background()
	m, store := newTestLogin(t, model.RoleAdmin)

	assert.NoError(t, m.SubmitPhone(ctx, "9123456780"))
	_, err := m.SubmitOTP(ctx, "123456")
	assert.NoError(t, err)

	raw, ok, _ := store.Get(ctx, model.SessionKey)
	assert.True(t, ok)
	stored, err := model.ParseSession(raw)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
}

func TestOTPLogin_SubmitOTP_Empty(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLogin(t, model.RoleUser)
	assert.NoError(t, m.SubmitPhone(ctx, "9876543210"))

	_, err := m.SubmitOTP(ctx, "")
	assert.ErrorIs(t, err, ErrOTPRequired)
	assert.Equal(t, StepOTP, m.Step())
}

func TestOTPLogin_SubmitOTP_Malformed(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLogin(t, model.RoleUser)
	assert.NoError(t, m.SubmitPhone(ctx, "9876543210"))

	for _, code := range []string{"12345", "1234567", "12345a"} {
		_, err := m.SubmitOTP(ctx, code)
		assert.ErrorIs(t, err, ErrOTPInvalid, "code %s", code)
		assert.Equal(t, StepOTP, m.Step())
	}
}

func TestOTPLogin_SubmitOTP_Mismatch(t *testing.T) {
	ctx := context.Background()
	m, store := newTestLogin(t, model.RoleUser)
	assert.NoError(t, m.SubmitPhone(ctx, "9876543210"))

	_, err := m.SubmitOTP(ctx, "654321")
	assert.ErrorIs(t, err, ErrOTPMismatch)
	assert.Equal(t, StepOTP, m.Step())

	// No session may be written on a failed verification
	_, ok, _ := store.Get(ctx, model.SessionKey)
	assert.False(t, ok)
}

func TestOTPLogin_SubmitOTP_WrongStep(t *testing.T) {
	m, _ := newTestLogin(t, model.RoleUser)

	_, err := m.SubmitOTP(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestOTPLogin_ChangeNumber(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLogin(t, model.RoleUser)
	assert.NoError(t, m.SubmitPhone(ctx, "9876543210"))

	err := m.ChangeNumber()
	assert.NoError(t, err)
	assert.Equal(t, StepPhone, m.Step())
	// The entered phone survives the step change
	assert.Equal(t, "9876543210", m.Phone())

	// Not available once already on phone entry
	assert.ErrorIs(t, m.ChangeNumber(), ErrWrongStep)
}

func TestOTPLogin_Logout(t *testing.T) {
	ctx := context.Background()
	m, store := newTestLogin(t, model.RoleUser)
	assert.NoError(t, m.SubmitPhone(ctx, "9876543210"))
	_, err := m.SubmitOTP(ctx, "123456")
	assert.NoError(t, err)

	err = m.Logout(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StepPhone, m.Step())
	assert.Equal(t, "", m.Phone())

	_, ok, _ := store.Get(ctx, model.SessionKey)
	assert.False(t, ok)
}

func TestOTPLogin_ResumesMatchingSession(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryKVStore()
	err := store.Set(ctx, model.SessionKey,
		`{"phone":"9123456780","role":"admin","loggedInAt":"2025-01-01T10:00:00Z"}`)
	assert.NoError(t, err)

	adminLogin := NewOTPLogin(ctx, store, model.RoleAdmin, 0)
	assert.Equal(t, StepSuccess, adminLogin.Step())
	assert.Equal(t, "9123456780", adminLogin.Phone())

	// A session for the other role does not short-circuit this machine
	userLogin := NewOTPLogin(ctx, store, model.RoleUser, 0)
	assert.Equal(t, StepPhone, userLogin.Step())
	assert.Equal(t, "", userLogin.Phone())
}

func TestOTPLogin_CorruptSessionIgnoredOnResume(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryKVStore()
	assert.NoError(t, store.Set(ctx, model.SessionKey, "not-json"))

	m := NewOTPLogin(ctx, store, model.RoleUser, 0)
	assert.Equal(t, StepPhone, m.Step())
}
