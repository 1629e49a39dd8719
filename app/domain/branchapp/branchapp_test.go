package branchapp_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jcpaschoal/dealerdesk/app/sdk/apitest"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PublicUnknownOwner(t *testing.T) {
	at := apitest.New(t)

	resp := at.Do(t, http.MethodGet, "/branches/public?owner=42", "", nil)

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, true, resp.Body["success"])
	assert.Empty(t, resp.Items())
	assert.Equal(t, 0, resp.Total())
}

func Test_PublicAnonymousWithoutOwner(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 5)
	at.Branch(t, tnt.ID, "A1")

	resp := at.Do(t, http.MethodGet, "/branches/public", "", nil)

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 0, resp.Total())
}

func Test_PublicOwnerParam(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 5)
	at.Branch(t, tnt.ID, "A1")
	at.Branch(t, tnt.ID, "A2")

	_, other := at.Owner(t, 5)
	at.Branch(t, other.ID, "B1")

	resp := at.Do(t, http.MethodGet, fmt.Sprintf("/branches/public?owner=%d", tnt.ID), "", nil)

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 2, resp.Total())
}

func Test_StaffSeesOnlyOwnBranch(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 10)

	var last branchbus.Branch
	for i := range 7 {
		last = at.Branch(t, tnt.ID, fmt.Sprintf("C%d", i))
	}

	staff := at.User(t, role.Staff, 0, last.ID)
	token := at.Token(t, staff)

	resp := at.Do(t, http.MethodGet, "/branches?q=nothing-matches&status=inactive", token, nil)

	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 1, resp.Total())
	require.Len(t, resp.Items(), 1)

	item := resp.Items()[0].(map[string]any)
	assert.Equal(t, float64(last.ID), item["id"])
}

func Test_OwnerListIsTenantScoped(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 5)
	at.Branch(t, tnt.ID, "A1")

	_, other := at.Owner(t, 5)
	at.Branch(t, other.ID, "B1")
	at.Branch(t, other.ID, "B2")

	resp := at.Do(t, http.MethodGet, fmt.Sprintf("/branches?owner=%d", other.ID), at.Token(t, owner), nil)

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1, resp.Total())
}

func Test_AdminListsEverything(t *testing.T) {
	at := apitest.New(t)

	_, a := at.Owner(t, 5)
	at.Branch(t, a.ID, "A1")

	_, b := at.Owner(t, 5)
	at.Branch(t, b.ID, "B1")

	admin := at.User(t, role.Admin, 0, 0)
	token := at.Token(t, admin)

	resp := at.Do(t, http.MethodGet, "/branches", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 2, resp.Total())

	resp = at.Do(t, http.MethodGet, fmt.Sprintf("/branches?owner=%d", b.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1, resp.Total())
}

func Test_ListRequiresToken(t *testing.T) {
	at := apitest.New(t)

	resp := at.Do(t, http.MethodGet, "/branches", "", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, false, resp.Body["success"])
	assert.Equal(t, "Unauthorized", resp.Message())

	resp = at.Do(t, http.MethodGet, "/branches", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func Test_CreateUppercasesCodeAndRejectsDuplicate(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 5)
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodPost, "/branches", token, map[string]any{
		"code": "bdrh",
		"name": "Bidar Highway",
		"type": "Sales",
	})

	require.Equal(t, http.StatusCreated, resp.Status, resp.Message())
	assert.Equal(t, "Branch created", resp.Message())
	assert.Equal(t, "BDRH", resp.Data()["code"])
	assert.Equal(t, float64(tnt.ID), resp.Data()["owner_id"])

	resp = at.Do(t, http.MethodPost, "/branches", token, map[string]any{
		"code": "BDRH",
		"name": "Another",
	})

	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Branch code already exists for this owner", resp.Message())
}

func Test_CreateMissingFields(t *testing.T) {
	at := apitest.New(t)

	owner, _ := at.Owner(t, 5)

	resp := at.Do(t, http.MethodPost, "/branches", at.Token(t, owner), map[string]any{"code": "X"})

	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "code and name are required", resp.Message())
}

func Test_CreateForbiddenForCrew(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 5)
	b := at.Branch(t, tnt.ID, "A1")

	staff := at.User(t, role.Staff, tnt.ID, b.ID)

	resp := at.Do(t, http.MethodPost, "/branches", at.Token(t, staff), map[string]any{
		"code": "A2",
		"name": "Second",
	})

	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Forbidden: admin/owner only", resp.Message())
}

func Test_QuotaDeniesAndRecordsRequest(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 1)
	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodPost, "/branches", token, map[string]any{"code": "Q1", "name": "First"})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message())

	resp = at.Do(t, http.MethodPost, "/branches", token, map[string]any{
		"code":          "Q2",
		"name":          "Second",
		"requestReason": "  new city  ",
	})
	require.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "Branch limit reached. Request admin approval.", resp.Message())

	tid := tnt.ID
	reqs, err := at.BranchBus.QueryRequests(context.Background(), branchbus.RequestFilter{TenantID: &tid}, page.New(1, 100))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, 2, reqs[0].RequestedCount)
	assert.Equal(t, "new city", reqs[0].Reason)
	assert.Equal(t, branchbus.RequestStatusPending, reqs[0].Status)

	admin := at.User(t, role.Admin, 0, 0)
	adminToken := at.Token(t, admin)

	resp = at.Do(t, http.MethodPost, "/branches", adminToken, map[string]any{
		"code":    "Q2",
		"name":    "Second",
		"ownerId": fmt.Sprint(tnt.ID),
	})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message())

	reqs, err = at.BranchBus.QueryRequests(context.Background(), branchbus.RequestFilter{TenantID: &tid}, page.New(1, 100))
	require.NoError(t, err)
	assert.Len(t, reqs, 1)

	resp = at.Do(t, http.MethodGet, "/branches/requests", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1, resp.Total())

	resp = at.Do(t, http.MethodGet, "/branches/requests", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func Test_GetMissingBeforeForbidden(t *testing.T) {
	at := apitest.New(t)

	owner, _ := at.Owner(t, 5)
	_, other := at.Owner(t, 5)
	b := at.Branch(t, other.ID, "B1")

	token := at.Token(t, owner)

	resp := at.Do(t, http.MethodGet, "/branches/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Branch not found", resp.Message())

	resp = at.Do(t, http.MethodGet, fmt.Sprintf("/branches/%d", b.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = at.Do(t, http.MethodGet, "/branches/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Invalid branch id", resp.Message())
}

func Test_UpdateAndDelete(t *testing.T) {
	at := apitest.New(t)

	owner, tnt := at.Owner(t, 5)
	b := at.Branch(t, tnt.ID, "A1")
	token := at.Token(t, owner)

	path := fmt.Sprintf("/branches/%d", b.ID)

	resp := at.Do(t, http.MethodPut, path, token, map[string]any{
		"name":      "Renamed",
		"mechanics": "Ravi | 9731366921\nRavi|9731366921\nSuresh",
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Equal(t, "Renamed", resp.Data()["name"])
	assert.Equal(t, "A1", resp.Data()["code"])

	team := resp.Data()["team"].(map[string]any)
	assert.Len(t, team["mechanics"], 2)

	_, other := at.Owner(t, 5)
	stranger := at.Branch(t, other.ID, "B1")

	resp = at.Do(t, http.MethodDelete, fmt.Sprintf("/branches/%d", stranger.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = at.Do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Branch deleted", resp.Message())

	resp = at.Do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func Test_ListRejectsMalformedOwner(t *testing.T) {
	at := apitest.New(t)

	admin := at.User(t, role.Admin, 0, 0)
	token := at.Token(t, admin)

	resp := at.Do(t, http.MethodGet, "/branches?owner=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, false, resp.Body["success"])

	resp = at.Do(t, http.MethodGet, "/branches/requests?owner=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func Test_ListHugePageIsEmpty(t *testing.T) {
	at := apitest.New(t)

	_, tnt := at.Owner(t, 5)
	at.Branch(t, tnt.ID, "A1")

	admin := at.User(t, role.Admin, 0, 0)

	resp := at.Do(t, http.MethodGet, "/branches?page=9223372036854775807", at.Token(t, admin), nil)

	require.Equal(t, http.StatusOK, resp.Status, resp.Message())
	assert.Empty(t, resp.Items())
	assert.Equal(t, 1, resp.Total())
}
