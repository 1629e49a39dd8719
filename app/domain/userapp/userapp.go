// Package userapp maintains the app layer api for the user domain.
package userapp

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mid"
	"github.com/jcpaschoal/dealerdesk/app/sdk/query"
	"github.com/jcpaschoal/dealerdesk/app/sdk/userview"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
)

type app struct {
	userBus   *userbus.Core
	tenantBus *tenantbus.Core
	branchBus *branchbus.Core
	aclBus    *aclbus.Core
	hydrator  *userview.Hydrator
}

func newApp(userBus *userbus.Core, tenantBus *tenantbus.Core, branchBus *branchbus.Core, aclBus *aclbus.Core) *app {
	return &app{
		userBus:   userBus,
		tenantBus: tenantBus,
		branchBus: branchBus,
		aclBus:    aclBus,
		hydrator:  userview.NewHydrator(tenantBus, branchBus),
	}
}

// newWithTx binds the stores to the transaction started for the request.
func (a *app) newWithTx(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return nil, err
	}

	userBus, err := a.userBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	tenantBus, err := a.tenantBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &app{
		userBus:   userBus,
		tenantBus: tenantBus,
		branchBus: a.branchBus,
		aclBus:    a.aclBus,
		hydrator:  userview.NewHydrator(tenantBus, a.branchBus),
	}, nil
}

func (a *app) queryPublic(ctx context.Context, r *http.Request) web.Encoder {
	return a.list(ctx, r, true)
}

func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	return a.list(ctx, r, false)
}

func (a *app) list(ctx context.Context, r *http.Request, public bool) web.Encoder {
	qp := parseQueryParams(r)

	pg, err := page.Parse(qp.Page, qp.Limit)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, owner, fErr := parseFilter(qp)
	if fErr != nil {
		return fErr
	}

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, userbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("orderBy", err)
	}

	empty := query.Empty[userview.User]()
	if public {
		empty = empty.AsPublic()
	}

	scope := a.aclBus.ScopeFor(mid.GetPrincipal(ctx), owner, public)

	switch scope.Kind {
	case aclbus.ScopeNone, aclbus.ScopeBranch:
		return empty

	case aclbus.ScopeTenant:
		filter.TenantID = &scope.TenantID
	}

	usrs, err := a.userBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.userBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	items, err := a.hydrator.Many(ctx, usrs)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: %s", err)
	}

	res := query.NewResult(items, total)
	if public {
		res = res.AsPublic()
	}

	return res
}

func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	usr, appErr := a.load(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.aclBus.Check(ctx, mid.GetPrincipal(ctx), actions.Get, resource.User, target(usr)); err != nil {
		return mid.Denied(err)
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}

	return query.NewData(view)
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewUser
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	nu, err := toBusNewUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	p := mid.GetPrincipal(ctx)

	tgt := aclbus.Target{TenantID: p.TenantID, AssignRole: &nu.Role}
	if err := a.aclBus.Check(ctx, p, actions.Create, resource.User, tgt); err != nil {
		return denied(err, actions.Create, nu.Role)
	}

	want := placement{tenantID: app.OwnerID.Int64(), branchID: app.branch()}

	pl, appErr := a.place(ctx, p, actions.Create, nu.Role, want)
	if appErr != nil {
		return appErr
	}

	nu.TenantID = pl.tenantID
	nu.BranchID = pl.branchID

	a, err = a.newWithTx(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tran: %s", err)
	}

	usr, err := a.userBus.Create(ctx, nu)
	if err != nil {
		if appErr := conflict(err); appErr != nil {
			return appErr
		}
		return errs.Errorf(errs.Internal, "create: email[%s]: %s", nu.Email.Address, err)
	}

	if nu.Role == role.Owner {
		tnt, appErr := a.ensureTenant(ctx, usr.ID, app.MaxBranches)
		if appErr != nil {
			return appErr
		}

		usr, err = a.userBus.Update(ctx, usr, userbus.UpdateUser{TenantID: &tnt.ID})
		if err != nil {
			return errs.Errorf(errs.Internal, "update: userID[%d]: %s", usr.ID, err)
		}
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}

	return query.NewData(view).WithMessage("User created").Created()
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	usr, appErr := a.load(ctx, r)
	if appErr != nil {
		return appErr
	}

	var app UpdateUser
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	uu, err := toBusUpdateUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	p := mid.GetPrincipal(ctx)

	newRole := usr.Role
	tgt := target(usr)

	if strings.TrimSpace(app.Role) != "" {
		newRole = role.Normalize(app.Role)
		if newRole != usr.Role {
			tgt.AssignRole = &newRole
		}
	}
	tgt.Settings = app.MaxBranches != nil

	if err := a.aclBus.Check(ctx, p, actions.Update, resource.User, tgt); err != nil {
		return denied(err, actions.Update, newRole)
	}

	want := placement{tenantID: usr.TenantID, branchID: usr.BranchID}
	if id := app.OwnerID.Int64(); id != 0 {
		want.tenantID = id
	}
	if id := app.branch(); id != 0 {
		want.branchID = id
	}

	pl, appErr := a.place(ctx, p, actions.Update, newRole, want)
	if appErr != nil {
		return appErr
	}

	a, err = a.newWithTx(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tran: %s", err)
	}

	if newRole == role.Owner {
		tnt, appErr := a.ensureTenant(ctx, usr.ID, app.MaxBranches)
		if appErr != nil {
			return appErr
		}
		pl.tenantID = tnt.ID
	}

	uu.Role = &newRole
	uu.TenantID = &pl.tenantID
	uu.BranchID = &pl.branchID

	updated, err := a.userBus.Update(ctx, usr, uu)
	if err != nil {
		if appErr := conflict(err); appErr != nil {
			return appErr
		}
		return errs.Errorf(errs.Internal, "update: userID[%d]: %s", usr.ID, err)
	}

	if app.MaxBranches != nil && newRole != role.Owner {
		if appErr := a.setQuota(ctx, updated.ID, *app.MaxBranches); appErr != nil {
			return appErr
		}
	}

	view, err := a.hydrator.One(ctx, updated)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", updated.ID, err)
	}

	return query.NewData(view).WithMessage("User updated")
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	usr, appErr := a.load(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.aclBus.Check(ctx, mid.GetPrincipal(ctx), actions.Delete, resource.User, target(usr)); err != nil {
		return mid.Denied(err)
	}

	if err := a.userBus.Delete(ctx, usr); err != nil {
		return errs.Errorf(errs.Internal, "delete: userID[%d]: %s", usr.ID, err)
	}

	return query.NewMessage("User deleted")
}

func (a *app) updateProfile(ctx context.Context, r *http.Request) web.Encoder {
	p := mid.GetPrincipal(ctx)
	if p.Role != role.Owner && !p.IsAdmin() {
		return errs.Errorf(errs.PermissionDenied, "Forbidden: owner/admin only")
	}

	var app UpdateProfile
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	uu, changed, err := app.toBusUpdateUser()
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	a, err = a.newWithTx(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tran: %s", err)
	}

	if changed {
		usr, err = a.userBus.Update(ctx, usr, uu)
		if err != nil {
			if appErr := conflict(err); appErr != nil {
				return appErr
			}
			return errs.Errorf(errs.Internal, "update: userID[%d]: %s", usr.ID, err)
		}
	}

	tnt, appErr := a.profileTenant(ctx, p, usr, app)
	if appErr != nil {
		return appErr
	}

	ut := toBusUpdateTenant(app.WebAppURL, app.LogoURL)
	if p.IsAdmin() {
		ut.BranchQuota = app.MaxBranches
	}

	tnt, err = a.tenantBus.Update(ctx, tnt, ut)
	if err != nil {
		if errors.Is(err, tenantbus.ErrInvalidQuota) {
			return errs.New(errs.InvalidArgument, err)
		}
		return errs.Errorf(errs.Internal, "update tenant: tenantID[%d]: %s", tnt.ID, err)
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}
	view.Owner = userview.OwnerOf(tnt)

	return query.NewData(view).WithMessage("Profile updated")
}

func (a *app) becomeOwner(ctx context.Context, r *http.Request) web.Encoder {
	p := mid.GetPrincipal(ctx)
	if p.Role == role.Owner {
		return errs.Errorf(errs.InvalidArgument, "Already an owner")
	}

	var app BecomeOwner
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	tgt := aclbus.Target{UserID: p.UserID, FirstTenant: true, Settings: app.MaxBranches != nil}
	if err := a.aclBus.Check(ctx, p, actions.Create, resource.Tenant, tgt); err != nil {
		return mid.Denied(err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	a, err = a.newWithTx(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tran: %s", err)
	}

	tnt, appErr := a.ensureTenant(ctx, usr.ID, app.MaxBranches)
	if appErr != nil {
		return appErr
	}

	if ut := toBusUpdateTenant(app.WebAppURL, app.LogoURL); ut.WebAppURL != nil || ut.LogoURL != nil {
		if _, err := a.tenantBus.Update(ctx, tnt, ut); err != nil {
			return errs.Errorf(errs.Internal, "update tenant: tenantID[%d]: %s", tnt.ID, err)
		}
	}

	owner := role.Owner
	usr, err = a.userBus.Update(ctx, usr, userbus.UpdateUser{Role: &owner, TenantID: &tnt.ID})
	if err != nil {
		return errs.Errorf(errs.Internal, "update: userID[%d]: %s", usr.ID, err)
	}

	view, err := a.hydrator.One(ctx, usr)
	if err != nil {
		return errs.Errorf(errs.Internal, "hydrate: userID[%d]: %s", usr.ID, err)
	}

	return query.NewData(view).WithMessage("Owner profile created")
}

// =============================================================================

// load reads the user named by the path. A missing user is reported before
// any scope check.
func (a *app) load(ctx context.Context, r *http.Request) (userbus.User, *errs.Error) {
	id, err := ids.Parse(web.Param(r, "id"))
	if err != nil {
		return userbus.User{}, errs.Errorf(errs.InvalidArgument, "Invalid user id")
	}

	usr, err := a.userBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return userbus.User{}, errs.Errorf(errs.NotFound, "User not found")
		}
		return userbus.User{}, errs.Errorf(errs.Internal, "querybyid: userID[%d]: %s", id, err)
	}

	return usr, nil
}

// placement is where a user sits in the tenant and branch hierarchy.
type placement struct {
	tenantID int64
	branchID int64
}

// place resolves the placement of a user holding the role. Branch bound
// roles take the tenant of their branch. Everyone placed by a non-admin
// lands in the principal's own tenant. Owners are placed in their own
// tenant once it exists.
func (a *app) place(ctx context.Context, p aclbus.Principal, act actions.Action, r role.Role, want placement) (placement, *errs.Error) {
	if !p.IsAdmin() {
		want.tenantID = p.TenantID
	}

	switch {
	case r.IsBranchScoped():
		if want.branchID == 0 {
			return placement{}, errs.Errorf(errs.InvalidArgument, "branch is required for staff/mechanic/callboy")
		}

		b, appErr := a.branchFor(ctx, p, act, want.branchID)
		if appErr != nil {
			return placement{}, appErr
		}

		return placement{tenantID: b.TenantID, branchID: b.ID}, nil

	case r == role.Backend:
		if want.tenantID == 0 {
			return placement{}, errs.Errorf(errs.InvalidArgument, "owner is required for backend role")
		}

		return placement{tenantID: want.tenantID}, nil

	case r == role.Owner:
		return placement{}, nil

	case r == role.User && want.branchID != 0:
		b, appErr := a.branchFor(ctx, p, act, want.branchID)
		if appErr != nil {
			return placement{}, appErr
		}

		return placement{tenantID: b.TenantID, branchID: b.ID}, nil
	}

	return placement{tenantID: want.tenantID}, nil
}

// branchFor loads a branch a user is being attached to and checks the
// principal may place users in its tenant.
func (a *app) branchFor(ctx context.Context, p aclbus.Principal, act actions.Action, branchID int64) (branchbus.Branch, *errs.Error) {
	b, err := a.branchBus.QueryByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, branchbus.ErrNotFound) {
			return branchbus.Branch{}, errs.Errorf(errs.NotFound, "Branch not found")
		}
		return branchbus.Branch{}, errs.Errorf(errs.Internal, "querybyid: branchID[%d]: %s", branchID, err)
	}

	if err := a.aclBus.Check(ctx, p, act, resource.User, aclbus.Target{TenantID: b.TenantID}); err != nil {
		if hasReason(err, aclbus.ForbiddenCrossTenant) {
			return branchbus.Branch{}, errs.Errorf(errs.PermissionDenied, "Forbidden: branch not in your account")
		}
		return branchbus.Branch{}, mid.Denied(err)
	}

	return b, nil
}

func (a *app) ensureTenant(ctx context.Context, userID int64, quota *int) (tenantbus.Tenant, *errs.Error) {
	tnt, err := a.tenantBus.EnsureForUser(ctx, userID, quota)
	if err != nil {
		if errors.Is(err, tenantbus.ErrInvalidQuota) {
			return tenantbus.Tenant{}, errs.New(errs.InvalidArgument, err)
		}
		return tenantbus.Tenant{}, errs.Errorf(errs.Internal, "ensure tenant: userID[%d]: %s", userID, err)
	}

	return tnt, nil
}

// setQuota changes the branch quota of the tenant the user owns, if any.
func (a *app) setQuota(ctx context.Context, userID int64, quota int) *errs.Error {
	tnt, err := a.tenantBus.QueryByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, tenantbus.ErrNotFound) {
			return nil
		}
		return errs.Errorf(errs.Internal, "query tenant: userID[%d]: %s", userID, err)
	}

	if _, err := a.tenantBus.Update(ctx, tnt, tenantbus.UpdateTenant{BranchQuota: &quota}); err != nil {
		if errors.Is(err, tenantbus.ErrInvalidQuota) {
			return errs.New(errs.InvalidArgument, err)
		}
		return errs.Errorf(errs.Internal, "update tenant: tenantID[%d]: %s", tnt.ID, err)
	}

	return nil
}

// profileTenant finds the tenant a profile update applies to. An owner
// without one gets it created. An admin edits its own tenant or the one
// named by ownerId.
func (a *app) profileTenant(ctx context.Context, p aclbus.Principal, usr userbus.User, app UpdateProfile) (tenantbus.Tenant, *errs.Error) {
	tnt, err := a.tenantBus.QueryByUserID(ctx, usr.ID)
	switch {
	case err == nil:
		tgt := aclbus.Target{TenantID: tnt.ID, Settings: app.MaxBranches != nil}
		if err := a.aclBus.Check(ctx, p, actions.Update, resource.Tenant, tgt); err != nil {
			return tenantbus.Tenant{}, mid.Denied(err)
		}
		return tnt, nil

	case !errors.Is(err, tenantbus.ErrNotFound):
		return tenantbus.Tenant{}, errs.Errorf(errs.Internal, "query tenant: userID[%d]: %s", usr.ID, err)

	case p.Role == role.Owner:
		tnt, appErr := a.ensureTenant(ctx, usr.ID, app.MaxBranches)
		if appErr != nil {
			return tenantbus.Tenant{}, appErr
		}

		if _, err := a.userBus.Update(ctx, usr, userbus.UpdateUser{TenantID: &tnt.ID}); err != nil {
			return tenantbus.Tenant{}, errs.Errorf(errs.Internal, "update: userID[%d]: %s", usr.ID, err)
		}

		return tnt, nil

	case app.OwnerID != 0:
		tnt, err := a.tenantBus.QueryByID(ctx, app.OwnerID.Int64())
		if err == nil {
			return tnt, nil
		}
		if !errors.Is(err, tenantbus.ErrNotFound) {
			return tenantbus.Tenant{}, errs.Errorf(errs.Internal, "query tenant: tenantID[%d]: %s", app.OwnerID, err)
		}
	}

	return tenantbus.Tenant{}, errs.Errorf(errs.NotFound, "Owner profile not found")
}

// =============================================================================

func target(usr userbus.User) aclbus.Target {
	return aclbus.Target{TenantID: usr.TenantID, UserID: usr.ID}
}

func hasReason(err error, reason aclbus.Reason) bool {
	var denial *aclbus.DenialError
	return errors.As(err, &denial) && denial.Reason == reason
}

// denied reports role escalation in the words of the attempted action.
func denied(err error, act actions.Action, r role.Role) *errs.Error {
	if !hasReason(err, aclbus.ForbiddenEscalation) {
		return mid.Denied(err)
	}

	var msg string
	switch {
	case act == actions.Create && r == role.Admin:
		msg = "Only admin can create admin users"
	case act == actions.Create:
		msg = "Only admin can create owners"
	case r == role.Admin:
		msg = "Owners cannot assign admin role"
	default:
		msg = "Only admin can assign owner role"
	}

	return errs.Errorf(errs.PermissionDenied, "%s", msg)
}

func conflict(err error) *errs.Error {
	switch {
	case errors.Is(err, userbus.ErrUniqueBranchRole):
		return errs.Errorf(errs.AlreadyExists, "Branch already has this role assigned.")

	case errors.Is(err, userbus.ErrUniqueEmail), errors.Is(err, userbus.ErrUniquePhone):
		return errs.Errorf(errs.AlreadyExists, "Email or phone already exists.")
	}

	return nil
}
