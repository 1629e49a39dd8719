package authapp_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jcpaschoal/dealerdesk/app/sdk/apitest"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RegisterLoginValidUser(t *testing.T) {
	at := apitest.New(t)

	resp := at.Do(t, http.MethodPost, "/users/register", "", map[string]any{
		"name":     "Asha",
		"email":    " Asha@Example.com ",
		"password": "hunter22",
		"phone":    "+91 97313-66921",
	})

	require.Equal(t, http.StatusCreated, resp.Status, resp.Message())
	assert.Equal(t, "User registered", resp.Message())
	assert.NotContains(t, resp.Body, "token")

	usr := resp.Body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", usr["email"])
	assert.Equal(t, "user", usr["role"])
	assert.Equal(t, "active", usr["status"])
	assert.Nil(t, usr["owner"])

	resp = at.Do(t, http.MethodPost, "/users/register", "", map[string]any{
		"name":     "Asha Again",
		"email":    "asha@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Email is already registered.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "ASHA@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Equal(t, "Logged in", resp.Message())

	token, _ := resp.Body["token"].(string)
	require.NotEmpty(t, token)

	resp = at.Do(t, http.MethodGet, "/users/get-valid-user", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "asha@example.com", resp.Data()["email"])

	resp = at.Do(t, http.MethodGet, "/users/get-valid-user?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func Test_RegisterValidation(t *testing.T) {
	at := apitest.New(t)

	resp := at.Do(t, http.MethodPost, "/users/register", "", map[string]any{
		"name":     "Short",
		"email":    "short@example.com",
		"password": "12345",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Name, email and password (min 6 chars) are required.", resp.Message())
	assert.Equal(t, false, resp.Body["success"])
}

func Test_LoginFailures(t *testing.T) {
	at := apitest.New(t)

	usr := at.User(t, role.Owner, 0, 0)

	resp := at.Do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    usr.Email.Address,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Invalid credentials.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": apitest.Password,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Invalid credentials.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/login", "", map[string]any{"email": usr.Email.Address})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Email and password are required.", resp.Message())

	inactive := userstatus.Inactive
	_, err := at.UserBus.Update(context.Background(), usr, userbus.UpdateUser{Status: &inactive})
	require.NoError(t, err)

	resp = at.Do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    usr.Email.Address,
		"password": apitest.Password,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Invalid credentials.", resp.Message())
}

func Test_ValidUserRejectsBadTokens(t *testing.T) {
	at := apitest.New(t)

	resp := at.Do(t, http.MethodGet, "/users/get-valid-user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Invalid token", resp.Message())

	usr := at.User(t, role.Staff, 0, 0)
	token := at.Token(t, usr)

	resp = at.Do(t, http.MethodGet, "/users/get-valid-user", token+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	require.NoError(t, at.UserBus.Delete(context.Background(), usr))

	resp = at.Do(t, http.MethodGet, "/users/get-valid-user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func Test_ForgotAndResetPassword(t *testing.T) {
	at := apitest.New(t)

	usr := at.User(t, role.User, 0, 0)

	resp := at.Do(t, http.MethodPost, "/users/forgot-password", "", map[string]any{"email": "missing@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "We could not find an account with that email.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/forgot-password", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Email is required.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/forgot-password", "", map[string]any{"email": usr.Email.Address})
	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Equal(t, "If the account exists, we have sent password reset instructions.", resp.Message())
	assert.Equal(t, false, resp.Body["emailSent"])

	reset, _ := resp.Body["devResetToken"].(string)
	require.NotEmpty(t, reset)

	resp = at.Do(t, http.MethodPost, "/users/reset-password", "", map[string]any{"token": reset})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Token and new password are required.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/reset-password", "", map[string]any{
		"token":    reset,
		"password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Equal(t, "Password has been reset successfully.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/reset-password", "", map[string]any{
		"token":    reset,
		"password": "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Reset link is invalid or has expired.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    usr.Email.Address,
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = at.Do(t, http.MethodPost, "/users/login", "", map[string]any{
		"email":    usr.Email.Address,
		"password": apitest.Password,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}
