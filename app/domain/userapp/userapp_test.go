package userapp_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jcpaschoal/dealerdesk/app/sdk/apitest"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaff(email string, branchID int64) map[string]any {
	return map[string]any{
		"name":     "Ravi",
		"email":    email,
		"password": apitest.Password,
		"role":     "staff",
		"branches": []any{branchID},
	}
}

func Test_CreateStaffInOwnBranch(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 5)
	b := at.Branch(t, tnt.ID, "A1")
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodPost, "/users", token, newStaff("Ravi@Example.com", b.ID))

	require.Equal(t, http.StatusCreated, resp.Status, resp.Message())
	assert.Equal(t, "User created", resp.Message())

	data := resp.Data()
	assert.Equal(t, "ravi@example.com", data["email"])
	assert.Equal(t, "staff", data["role"])
	assert.Equal(t, float64(tnt.ID), data["ownerId"])
	assert.Equal(t, float64(b.ID), data["branchId"])
	assert.NotContains(t, data, "passwordHash")

	primary := data["primaryBranch"].(map[string]any)
	assert.Equal(t, "A1", primary["code"])

	defaults := data["formDefaults"].(map[string]any)
	assert.Equal(t, "Ravi", defaults["staffName"])
	assert.Equal(t, float64(b.ID), defaults["branchId"])

	resp = at.Do(t, http.MethodPost, "/users", token, newStaff("other@example.com", b.ID))
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Branch already has this role assigned.", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users", token, map[string]any{
		"name":     "Dup",
		"email":    "ravi@example.com",
		"password": apitest.Password,
		"role":     "backend",
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Email or phone already exists.", resp.Message())
}

func Test_CreateValidation(t *testing.T) {
	at := apitest.New(t)

	owner, _ := at.Owner(t, 5)
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodPost, "/users", token, map[string]any{"name": "No Email"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "name, email, password are required", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users", token, map[string]any{
		"name":     "Ravi",
		"email":    "ravi@example.com",
		"password": apitest.Password,
		"role":     "mechanic",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "branch is required for staff/mechanic/callboy", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users", token, newStaff("ravi@example.com", 9999))
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Branch not found", resp.Message())
}

func Test_CreateInForeignBranch(t *testing.T) {
	at := apitest.New(t)

	owner, _ := at.Owner(t, 5)
	_, other := at.Owner(t, 5)
	b := at.Branch(t, other.ID, "B1")

	resp := at.Do(t, http.MethodPost, "/users", at.Token(t, owner), newStaff("ravi@example.com", b.ID))

	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Forbidden: branch not in your account", resp.Message())
}

func Test_Escalation(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 5)
	token := at.Token(t, owner)

	nu := func(r string) map[string]any {
		return map[string]any{
			"name":     "Someone",
			"email":    r + "@example.com",
			"password": apitest.Password,
			"role":     r,
		}
	}

	resp := at.Do(t, http.MethodPost, "/users", token, nu("admin"))
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Only admin can create admin users", resp.Message())

	resp = at.Do(t, http.MethodPost, "/users", token, nu("owner"))
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Only admin can create owners", resp.Message())

	backend := at.User(t, role.Backend, tnt.ID, 0)
	path := fmt.Sprintf("/users/%d", backend.ID)

	resp = at.Do(t, http.MethodPut, path, token, map[string]any{"role": "owner"})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Only admin can assign owner role", resp.Message())

	resp = at.Do(t, http.MethodPut, path, token, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Owners cannot assign admin role", resp.Message())

	resp = at.Do(t, http.MethodPut, path, token, map[string]any{"maxBranches": 9})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Forbidden: admin only", resp.Message())
}

func Test_CrewCannotManageUsers(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 5)
	b := at.Branch(t, tnt.ID, "A1")
	staff := at.User(t, role.Staff, tnt.ID, b.ID)
	token := at.Token(t, staff)

	resp := at.Do(t, http.MethodPost, "/users", token, newStaff("x@example.com", b.ID))
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Forbidden: admin/owner only", resp.Message())

	resp = at.Do(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = at.Do(t, http.MethodGet, fmt.Sprintf("/users/%d", staff.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, float64(staff.ID), resp.Data()["id"])
}

func Test_GetMissingBeforeForbidden(t *testing.T) {
	at := apitest.New(t)

	owner, _ := at.Owner(t, 5)
	stranger, _ := at.Owner(t, 5)
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodGet, "/users/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "User not found", resp.Message())

	resp = at.Do(t, http.MethodGet, fmt.Sprintf("/users/%d", stranger.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = at.Do(t, http.MethodDelete, fmt.Sprintf("/users/%d", stranger.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = at.Do(t, http.MethodGet, "/users/zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Invalid user id", resp.Message())
}

func Test_ListScopes(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 5)
	b := at.Branch(t, tnt.ID, "A1")
	at.User(t, role.Staff, tnt.ID, b.ID)
	at.User(t, role.Backend, tnt.ID, 0)

	_, other := at.Owner(t, 5)
	at.User(t, role.Backend, other.ID, 0)

	resp := at.Do(t, http.MethodGet, "/users", at.Token(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 3, resp.Total())

	resp = at.Do(t, http.MethodGet, "/users?role=staff", at.Token(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1, resp.Total())

	admin := at.User(t, role.Admin, 0, 0)
	resp = at.Do(t, http.MethodGet, "/users", at.Token(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 6, resp.Total())

	resp = at.Do(t, http.MethodGet, "/users/public", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, true, resp.Body["public"])
	assert.Equal(t, 0, resp.Total())

	resp = at.Do(t, http.MethodGet, fmt.Sprintf("/users/public?owner=%d", other.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 2, resp.Total())

	for _, item := range resp.Items() {
		assert.NotContains(t, item.(map[string]any), "passwordHash")
	}
}

func Test_AdminCreatesOwnerWithQuota(t *testing.T) {
	at := apitest.New(t)

	admin := at.User(t, role.Admin, 0, 0)

	resp := at.Do(t, http.MethodPost, "/users", at.Token(t, admin), map[string]any{
		"name":        "New Owner",
		"email":       "boss@example.com",
		"password":    apitest.Password,
		"role":        "owner",
		"maxBranches": 3,
	})

	require.Equal(t, http.StatusCreated, resp.Status, resp.Message())

	owner := resp.Data()["owner"].(map[string]any)
	assert.Equal(t, float64(3), owner["maxBranches"])

	tnt, err := at.TenantBus.QueryByID(context.Background(), int64(owner["id"].(float64)))
	require.NoError(t, err)
	assert.Equal(t, 3, tnt.BranchQuota)
}

func Test_UpdateProfile(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 2)
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodPatch, "/users/profile", token, map[string]any{
		"name":      "Renamed Owner",
		"webAppUrl": "https://shop.example.com",
	})

	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Equal(t, "Profile updated", resp.Message())
	assert.Equal(t, "Renamed Owner", resp.Data()["name"])

	summary := resp.Data()["owner"].(map[string]any)
	assert.Equal(t, "https://shop.example.com", summary["webAppUrl"])
	assert.Equal(t, float64(2), summary["maxBranches"])

	resp = at.Do(t, http.MethodPatch, "/users/profile", token, map[string]any{"logoUrl": "not a url"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Message(), "logoUrl")

	resp = at.Do(t, http.MethodPut, "/users/profile", token, map[string]any{"maxBranches": 10})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Forbidden: admin only", resp.Message())

	b := at.Branch(t, tnt.ID, "A1")
	staff := at.User(t, role.Staff, tnt.ID, b.ID)

	resp = at.Do(t, http.MethodPatch, "/users/profile", at.Token(t, staff), map[string]any{"name": "X"})
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Forbidden: owner/admin only", resp.Message())

	resp = at.Do(t, http.MethodPatch, "/users/profile", "", map[string]any{"name": "X"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func Test_AdminProfileNamesTenant(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 1)
	admin := at.User(t, role.Admin, 0, 0)
	token := at.Token(t, admin)

	resp := at.Do(t, http.MethodPatch, "/users/profile", token, map[string]any{"maxBranches": 4})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Owner profile not found", resp.Message())

	resp = at.Do(t, http.MethodPatch, "/users/profile", token, map[string]any{
		"ownerId":     tnt.ID,
		"maxBranches": 4,
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Message())

	got, err := at.TenantBus.QueryByID(context.Background(), tnt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.BranchQuota)
}

func Test_BecomeOwner(t *testing.T) {
	at := apitest.New(t)

	usr := at.User(t, role.User, 0, 0)
	token := at.Token(t, usr)

	resp := at.Do(t, http.MethodPost, "/users/become-owner", token, map[string]any{
		"webAppUrl": "https://mine.example.com",
	})

	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Equal(t, "Owner profile created", resp.Message())
	assert.Equal(t, "owner", resp.Data()["role"])

	summary := resp.Data()["owner"].(map[string]any)
	assert.Equal(t, "https://mine.example.com", summary["webAppUrl"])
	assert.Equal(t, float64(1), summary["maxBranches"])

	resp = at.Do(t, http.MethodPost, "/users/become-owner", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Already an owner", resp.Message())
}

func Test_ListRejectsMalformedFilter(t *testing.T) {
	at := apitest.New(t)

	owner, _ := at.Owner(t, 5)
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodGet, "/users?owner=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = at.Do(t, http.MethodGet, "/users?branch=-4", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}
