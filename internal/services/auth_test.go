package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/ctxutil"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

func requireAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae, ok := apierr.As(err)
	require.Truef(t, ok, "expected *apierr.Error, got %v", err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, code, ae.Code)
}

func TestRegisterLoginAndVerifyToken(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(logger.Nop(), users, "secret", time.Hour)
	ctx := context.Background()

	reg, err := svc.RegisterUser(ctx, "  Pat@Example.com ", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, "bearer", reg.TokenType)
	assert.Equal(t, "pat@example.com", reg.User.Email)
	assert.Equal(t, "patient", reg.User.Role)
	require.NotNil(t, reg.User.PasswordHash)
	assert.NotEqual(t, "hunter22", *reg.User.PasswordHash)

	login, err := svc.LoginUser(ctx, "pat@example.com", "hunter22")
	require.NoError(t, err)

	authed, err := svc.SetContextFromToken(ctx, login.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, reg.User.ID, rd.UserID)
	assert.Equal(t, "patient", rd.Role)

	me, err := svc.GetMe(ctx, rd.UserID)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, me.ID)
}

func TestRegisterRejectsDuplicateEmailAndBadRole(t *testing.T) {
	svc := NewAuthService(logger.Nop(), newFakeUsers(), "secret", time.Hour)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "a@example.com", "pw", "caregiver")
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, "A@example.com", "pw", "patient")
	requireAPIErr(t, err, http.StatusBadRequest, "email_taken")

	_, err = svc.RegisterUser(ctx, "b@example.com", "pw", "doctor")
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_role")

	_, err = svc.RegisterUser(ctx, "not-an-email", "pw", "")
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_email")
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	svc := NewAuthService(logger.Nop(), newFakeUsers(), "secret", time.Hour)
	ctx := context.Background()
	_, err := svc.RegisterUser(ctx, "a@example.com", "right", "")
	require.NoError(t, err)

	for _, tc := range []struct{ email, password string }{
		{"a@example.com", "wrong"},
		{"missing@example.com", "right"},
		{"", ""},
	} {
		_, err := svc.LoginUser(ctx, tc.email, tc.password)
		requireAPIErr(t, err, http.StatusUnauthorized, "invalid_credentials")
		assert.Equal(t, "Invalid email or password", err.Error())
	}
}

func TestSetContextFromTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	users := newFakeUsers()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAuthService(logger.Nop(), users, "secret", time.Hour).(*authService)
	svc.now = func() time.Time { return issued }

	res, err := svc.RegisterUser(context.Background(), "a@example.com", "pw", "")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.SetContextFromToken(context.Background(), res.AccessToken)
	requireAPIErr(t, err, http.StatusUnauthorized, "unauthorized")

	other := NewAuthService(logger.Nop(), users, "other-secret", time.Hour).(*authService)
	other.now = func() time.Time { return issued }
	_, err = other.SetContextFromToken(context.Background(), res.AccessToken)
	requireAPIErr(t, err, http.StatusUnauthorized, "unauthorized")

	_, err = svc.SetContextFromToken(context.Background(), "")
	requireAPIErr(t, err, http.StatusUnauthorized, "unauthorized")
}
