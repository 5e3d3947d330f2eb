package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/internal/application/apptest"
	"github.com/pasalhq/pasal-erp/internal/application/auth"
	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/pkg/jwt"
)

func newAuth() (*apptest.Store, *auth.AuthUseCase) {
	store := apptest.NewStore()
	uc := auth.NewAuthUseCase(store.UserRepo(), auth.JWTConfig{
		Secret: "auth-test-secret", ExpMinutes: 60, Issuer: "pasal-erp",
	})
	return store, uc
}

func TestRegisterAndLogin(t *testing.T) {
	_, uc := newAuth()

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "manager@pasal.test", Password: "s3cret-pass", Name: "Mina", Role: "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "manager", user.Role)

	resp, err := uc.Login(dto.LoginRequest{Email: "manager@pasal.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)

	// The token carries id and role for the RBAC middleware.
	userID, role, err := jwt.Parse("auth-test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "manager", role)
}

func TestRegisterDefaultsToStaff(t *testing.T) {
	_, uc := newAuth()

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "new@pasal.test", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "staff", user.Role)
	assert.Equal(t, "new@pasal.test", user.Name, "name falls back to email")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, uc := newAuth()

	req := dto.RegisterRequest{Email: "dup@pasal.test", Password: "s3cret-pass"}
	_, err := uc.RegisterUser(req)
	require.NoError(t, err)

	_, err = uc.RegisterUser(req)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	_, uc := newAuth()
	var verr *domain.ValidationError

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "not-an-email", Password: "s3cret-pass"})
	require.ErrorAs(t, err, &verr)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "ok@pasal.test", Password: "short"})
	require.ErrorAs(t, err, &verr)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "ok@pasal.test", Password: "s3cret-pass", Role: "superuser"})
	require.ErrorAs(t, err, &verr)
}

func TestLoginWrongPassword(t *testing.T) {
	_, uc := newAuth()

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "u@pasal.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "u@pasal.test", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	_, uc := newAuth()

	_, err := uc.Login(dto.LoginRequest{Email: "ghost@pasal.test", Password: "whatever1"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLoginInactiveUser(t *testing.T) {
	store, uc := newAuth()

	user, err := uc.RegisterUser(dto.RegisterRequest{Email: "off@pasal.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	u := store.Users[user.ID]
	u.Status = "disabled"
	store.Users[user.ID] = u

	_, err = uc.Login(dto.LoginRequest{Email: "off@pasal.test", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
