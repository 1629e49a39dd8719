package aclbus_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus/stores/tenantmem"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCore(t *testing.T) (*aclbus.Core, *tenantmem.Store) {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", func(context.Context) string { return "" })

	tenants := tenantmem.NewStore()

	core, err := aclbus.NewCore(log, tenants)
	require.NoError(t, err)

	return core, tenants
}

func reason(t *testing.T, err error) aclbus.Reason {
	t.Helper()

	var denial *aclbus.DenialError
	require.True(t, errors.As(err, &denial), "want a denial, got %v", err)

	return denial.Reason
}

func Test_BranchReadProperty(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	type branch struct {
		id, tenant int64
	}
	branches := []branch{{7, 1}, {8, 1}, {9, 2}, {10, 0}}

	principals := []aclbus.Principal{
		{UserID: 1, Role: role.Admin},
		{UserID: 2, Role: role.Owner, TenantID: 1},
		{UserID: 3, Role: role.Owner},
		{UserID: 4, Role: role.Staff, BranchID: 7},
		{UserID: 5, Role: role.Mechanic, TenantID: 2, BranchID: 7},
		{UserID: 6, Role: role.Callboy},
		{UserID: 7, Role: role.Backend, TenantID: 1},
		{UserID: 8, Role: role.User},
		{UserID: 9, Role: role.User, TenantID: 2},
	}

	for _, p := range principals {
		for _, b := range branches {
			name := fmt.Sprintf("%s-%d/branch-%d", p.Role, p.UserID, b.id)

			t.Run(name, func(t *testing.T) {
				want := p.Role == role.Admin ||
					(p.TenantID != 0 && p.TenantID == b.tenant) ||
					(p.Role.IsBranchScoped() && p.BranchID == b.id)

				err := core.Check(ctx, p, actions.Get, resource.Branch, aclbus.Target{TenantID: b.tenant, BranchID: b.id})
				assert.Equal(t, want, err == nil, "err: %v", err)
			})
		}
	}
}

func Test_Unauthenticated(t *testing.T) {
	core, _ := newCore(t)

	err := core.Check(context.Background(), aclbus.Anonymous, actions.List, resource.Branch, aclbus.Target{})
	assert.Equal(t, aclbus.Unauthenticated, reason(t, err))
}

func Test_CapabilityRequired(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	staff := aclbus.Principal{UserID: 4, Role: role.Staff, TenantID: 1, BranchID: 7}

	err := core.Check(ctx, staff, actions.Create, resource.Branch, aclbus.Target{TenantID: 1})
	assert.Equal(t, aclbus.ForbiddenRoleRequired, reason(t, err))

	err = core.Check(ctx, staff, actions.List, resource.User, aclbus.Target{TenantID: 1})
	assert.Equal(t, aclbus.ForbiddenRoleRequired, reason(t, err))

	assert.True(t, core.Can(role.Admin, resource.Tenant, actions.Delete))
	assert.True(t, core.Can(role.Backend, resource.Branch, actions.List))
	assert.False(t, core.Can(role.Backend, resource.Branch, actions.Update))
}

func Test_OwnerRules(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	owner := aclbus.Principal{UserID: 2, Role: role.Owner, TenantID: 1}

	t.Run("same-tenant", func(t *testing.T) {
		err := core.Check(ctx, owner, actions.Update, resource.Branch, aclbus.Target{TenantID: 1, BranchID: 7})
		assert.NoError(t, err)
	})

	t.Run("cross-tenant", func(t *testing.T) {
		err := core.Check(ctx, owner, actions.Delete, resource.User, aclbus.Target{TenantID: 2, UserID: 40})
		assert.Equal(t, aclbus.ForbiddenCrossTenant, reason(t, err))
	})

	t.Run("self-without-tenant", func(t *testing.T) {
		noTenant := aclbus.Principal{UserID: 3, Role: role.Owner}

		err := core.Check(ctx, noTenant, actions.Update, resource.User, aclbus.Target{UserID: 3})
		assert.NoError(t, err)
	})

	for _, r := range []role.Role{role.Admin, role.Owner} {
		t.Run("assign-"+r.String(), func(t *testing.T) {
			err := core.Check(ctx, owner, actions.Create, resource.User, aclbus.Target{TenantID: 1, AssignRole: &r})
			assert.Equal(t, aclbus.ForbiddenEscalation, reason(t, err))
		})
	}

	t.Run("assign-staff", func(t *testing.T) {
		r := role.Staff
		err := core.Check(ctx, owner, actions.Create, resource.User, aclbus.Target{TenantID: 1, AssignRole: &r})
		assert.NoError(t, err)
	})

	t.Run("settings", func(t *testing.T) {
		err := core.Check(ctx, owner, actions.Update, resource.Tenant, aclbus.Target{TenantID: 1, Settings: true})
		assert.Equal(t, aclbus.ForbiddenRoleRequired, reason(t, err))
	})
}

func Test_UserRules(t *testing.T) {
	core, _ := newCore(t)
	ctx := context.Background()

	usr := aclbus.Principal{UserID: 8, Role: role.User}

	assert.NoError(t, core.Check(ctx, usr, actions.Get, resource.User, aclbus.Target{UserID: 8}))
	assert.Error(t, core.Check(ctx, usr, actions.Get, resource.User, aclbus.Target{UserID: 9}))

	assert.NoError(t, core.Check(ctx, usr, actions.Create, resource.Tenant, aclbus.Target{UserID: 8, FirstTenant: true}))
	assert.Error(t, core.Check(ctx, usr, actions.Create, resource.Tenant, aclbus.Target{UserID: 8}))
	assert.Error(t, core.Check(ctx, usr, actions.Create, resource.Tenant, aclbus.Target{UserID: 9, FirstTenant: true}))
}

func Test_ScopeFor(t *testing.T) {
	core, _ := newCore(t)

	admin := aclbus.Principal{UserID: 1, Role: role.Admin}
	owner := aclbus.Principal{UserID: 2, Role: role.Owner, TenantID: 5}
	staff := aclbus.Principal{UserID: 4, Role: role.Staff, BranchID: 7}
	backend := aclbus.Principal{UserID: 7, Role: role.Backend, BranchID: 7}

	tt := []struct {
		name     string
		p        aclbus.Principal
		explicit int64
		public   bool
		want     aclbus.Scope
	}{
		{"admin-all", admin, 0, false, aclbus.Scope{Kind: aclbus.ScopeAll}},
		{"admin-narrowed", admin, 42, false, aclbus.Scope{Kind: aclbus.ScopeTenant, TenantID: 42}},
		{"admin-public", admin, 0, true, aclbus.Scope{Kind: aclbus.ScopeNone}},
		{"owner", owner, 0, false, aclbus.Scope{Kind: aclbus.ScopeTenant, TenantID: 5}},
		{"owner-explicit-ignored", owner, 42, false, aclbus.Scope{Kind: aclbus.ScopeTenant, TenantID: 5}},
		{"staff-branch", staff, 0, false, aclbus.Scope{Kind: aclbus.ScopeBranch, BranchID: 7}},
		{"backend-no-branch-fallback", backend, 0, false, aclbus.Scope{Kind: aclbus.ScopeNone}},
		{"public-explicit", aclbus.Anonymous, 42, true, aclbus.Scope{Kind: aclbus.ScopeTenant, TenantID: 42}},
		{"public-anonymous", aclbus.Anonymous, 0, true, aclbus.Scope{Kind: aclbus.ScopeNone}},
		{"public-owner", owner, 0, true, aclbus.Scope{Kind: aclbus.ScopeTenant, TenantID: 5}},
		{"public-staff", staff, 0, true, aclbus.Scope{Kind: aclbus.ScopeBranch, BranchID: 7}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, core.ScopeFor(tc.p, tc.explicit, tc.public))
		})
	}
}

func Test_Resolve(t *testing.T) {
	core, tenants := newCore(t)
	ctx := context.Background()

	owner := userbus.User{ID: 2, Role: role.Owner, TenantID: 99}

	p, err := core.Resolve(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, p.TenantID, "an owner without a tenant row has none")

	tnt, err := tenants.Upsert(ctx, 2, nil)
	require.NoError(t, err)

	p, err = core.Resolve(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, tnt.ID, p.TenantID)

	staff := userbus.User{ID: 4, Role: role.Staff, TenantID: 3, BranchID: 7}

	p, err = core.Resolve(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, aclbus.Principal{UserID: 4, Role: role.Staff, TenantID: 3, BranchID: 7}, p)

}
