// Package aclbus decides who may act on which branch, user and tenant
// records, and how far their listings reach.
package aclbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jcpaschoal/dealerdesk/foundation/otel"
)

// TenantFinder looks up the tenant owned by a user.
type TenantFinder interface {
	QueryByUserID(ctx context.Context, userID int64) (tenantbus.Tenant, error)
}

// Core manages the set of APIs for authorization.
type Core struct {
	log     *logger.Logger
	tenants TenantFinder
	caps    *capabilities
}

// NewCore constructs a core for authorization.
func NewCore(log *logger.Logger, tenants TenantFinder) (*Core, error) {
	caps, err := newCapabilities()
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}

	return &Core{
		log:     log,
		tenants: tenants,
		caps:    caps,
	}, nil
}

// Resolve derives the principal of a loaded user. An owner's tenant is the
// one it owns. Everyone else belongs to the tenant recorded on the user.
func (c *Core) Resolve(ctx context.Context, usr userbus.User) (Principal, error) {
	ctx, span := otel.AddSpan(ctx, "business.aclbus.resolve")
	defer span.End()

	p := Principal{
		UserID:   usr.ID,
		Role:     usr.Role,
		TenantID: usr.TenantID,
		BranchID: usr.BranchID,
	}

	if usr.Role != role.Owner {
		return p, nil
	}

	t, err := c.tenants.QueryByUserID(ctx, usr.ID)
	switch {
	case errors.Is(err, tenantbus.ErrNotFound):
		p.TenantID = 0

	case err != nil:
		return Principal{}, fmt.Errorf("query tenant: userID[%d]: %w", usr.ID, err)

	default:
		p.TenantID = t.ID
	}

	return p, nil
}

// Can reports whether the role may attempt the action on the resource at
// all, ignoring record scope.
func (c *Core) Can(r role.Role, res resource.Resource, act actions.Action) bool {
	if r == role.Admin {
		return true
	}

	ok, err := c.caps.allowed(r, res, act)
	if err != nil {
		c.log.Error(context.Background(), "aclbus: capability check", "role", r, "resource", res, "action", act, "ERROR", err)
		return false
	}

	return ok
}

// Check returns nil when the principal may perform the action on the
// target and a *DenialError otherwise. Listings are only checked for
// capability here; their reach comes from ScopeFor.
func (c *Core) Check(ctx context.Context, p Principal, act actions.Action, res resource.Resource, tgt Target) error {
	_, span := otel.AddSpan(ctx, "business.aclbus.check")
	defer span.End()

	if err := c.check(p, act, res, tgt); err != nil {
		c.log.Debug(ctx, "aclbus: denied", "user_id", p.UserID, "role", p.Role, "action", act, "resource", res, "reason", err.Reason)
		return err
	}

	return nil
}

func (c *Core) check(p Principal, act actions.Action, res resource.Resource, tgt Target) *DenialError {
	if !p.Authenticated() {
		return deny(Unauthenticated, "Unauthorized")
	}

	if p.Role == role.Admin {
		return nil
	}

	if !c.Can(p.Role, res, act) {
		return deny(ForbiddenRoleRequired, "Forbidden: admin/owner only")
	}

	if act == actions.List {
		return nil
	}

	sameTenant := p.TenantID != 0 && p.TenantID == tgt.TenantID
	self := tgt.UserID != 0 && tgt.UserID == p.UserID

	switch p.Role {
	case role.Owner:
		switch {
		case res == resource.User && self:
		case sameTenant:
		default:
			return deny(ForbiddenCrossTenant, "Forbidden")
		}

		if tgt.AssignRole != nil && (*tgt.AssignRole == role.Admin || *tgt.AssignRole == role.Owner) {
			return deny(ForbiddenEscalation, fmt.Sprintf("Only admin can assign %s role", *tgt.AssignRole))
		}

		if tgt.Settings && !tgt.FirstTenant {
			return deny(ForbiddenRoleRequired, "Forbidden: admin only")
		}

		return nil

	case role.Staff, role.Mechanic, role.Callboy:
		switch res {
		case resource.Branch:
			if sameTenant || (p.BranchID != 0 && p.BranchID == tgt.BranchID) {
				return nil
			}
			return deny(ForbiddenCrossTenant, "Forbidden")

		case resource.User:
			if self {
				return nil
			}
		}

		return deny(ForbiddenCrossTenant, "Forbidden")

	case role.Backend:
		switch res {
		case resource.Branch:
			if sameTenant {
				return nil
			}

		case resource.User:
			if self {
				return nil
			}
		}

		return deny(ForbiddenCrossTenant, "Forbidden")

	case role.User:
		switch res {
		case resource.Branch:
			if sameTenant {
				return nil
			}

		case resource.User:
			if self {
				return nil
			}

		case resource.Tenant:
			if self && tgt.FirstTenant {
				return nil
			}
			return deny(ForbiddenRoleRequired, "Forbidden")
		}

		return deny(ForbiddenCrossTenant, "Forbidden")
	}

	return deny(ForbiddenRoleRequired, "Forbidden")
}

// ScopeFor computes how far a listing reaches. Admins on the authenticated
// path see everything unless they narrow to an explicit tenant. The public
// path honours an explicit tenant for anyone. After that both paths fall
// back to the principal's tenant, then to its single branch, then to
// nothing.
func (c *Core) ScopeFor(p Principal, explicitTenant int64, public bool) Scope {
	switch {
	case public && explicitTenant != 0:
		return Scope{Kind: ScopeTenant, TenantID: explicitTenant}

	case !public && p.IsAdmin():
		if explicitTenant != 0 {
			return Scope{Kind: ScopeTenant, TenantID: explicitTenant}
		}
		return Scope{Kind: ScopeAll}
	}

	if !p.Authenticated() {
		return Scope{Kind: ScopeNone}
	}

	switch {
	case p.TenantID != 0:
		return Scope{Kind: ScopeTenant, TenantID: p.TenantID}

	case p.Role.IsBranchScoped() && p.BranchID != 0:
		return Scope{Kind: ScopeBranch, BranchID: p.BranchID}
	}

	return Scope{Kind: ScopeNone}
}
