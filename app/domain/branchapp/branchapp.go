// Package branchapp maintains the app layer api for the branch domain.
package branchapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/jcpaschoal/dealerdesk/app/sdk/metrics"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mid"
	"github.com/jcpaschoal/dealerdesk/app/sdk/query"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
)

type app struct {
	branchBus *branchbus.Core
	tenantBus *tenantbus.Core
	aclBus    *aclbus.Core
}

func newApp(branchBus *branchbus.Core, tenantBus *tenantbus.Core, aclBus *aclbus.Core) *app {
	return &app{
		branchBus: branchBus,
		tenantBus: tenantBus,
		aclBus:    aclBus,
	}
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

	scope := a.aclBus.ScopeFor(mid.GetPrincipal(ctx), owner, public)

	switch scope.Kind {
	case aclbus.ScopeNone:
		return query.Empty[Branch]()

	case aclbus.ScopeBranch:
		b, err := a.branchBus.QueryByID(ctx, scope.BranchID)
		if err != nil {
			if errors.Is(err, branchbus.ErrNotFound) {
				return query.Empty[Branch]()
			}
			return errs.Errorf(errs.Internal, "querybyid: branchID[%d]: %s", scope.BranchID, err)
		}

		return query.NewResult([]Branch{toAppBranch(b)}, 1)

	case aclbus.ScopeTenant:
		filter.TenantID = &scope.TenantID
	}

	branches, err := a.branchBus.Query(ctx, filter, branchbus.DefaultOrderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.branchBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppBranches(branches), total)
}

func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	b, appErr := a.load(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.aclBus.Check(ctx, mid.GetPrincipal(ctx), actions.Get, resource.Branch, target(b)); err != nil {
		return mid.Denied(err)
	}

	return query.NewData(toAppBranch(b))
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewBranch
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	p := mid.GetPrincipal(ctx)

	tenantID := p.TenantID
	if p.IsAdmin() && app.OwnerID != 0 {
		tenantID = app.OwnerID.Int64()
	}

	if tenantID == 0 {
		if p.IsAdmin() {
			t, err := a.tenantBus.QueryByUserID(ctx, p.UserID)
			if err == nil {
				tenantID = t.ID
			}
		}

		if tenantID == 0 {
			return errs.Errorf(errs.InvalidArgument, "Owner not found")
		}
	}

	tnt, err := a.tenantBus.QueryByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantbus.ErrNotFound) {
			return errs.Errorf(errs.NotFound, "Owner not found")
		}
		return errs.Errorf(errs.Internal, "query tenant: tenantID[%d]: %s", tenantID, err)
	}

	if err := a.aclBus.Check(ctx, p, actions.Create, resource.Branch, aclbus.Target{TenantID: tnt.ID}); err != nil {
		return mid.Denied(err)
	}

	nb, err := toBusNewBranch(app, tnt.ID)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	quota := branchbus.Quota{
		Enforce: !p.IsAdmin(),
		Limit:   tnt.BranchQuota,
		Reason:  app.RequestReason,
	}

	b, err := a.branchBus.Create(ctx, nb, quota)
	if err != nil {
		switch {
		case errors.Is(err, branchbus.ErrQuotaExceeded):
			metrics.AddQuotaDenials(ctx)
			return errs.Errorf(errs.PermissionDenied, "Branch limit reached. Request admin approval.")

		case errors.Is(err, branchbus.ErrUniqueCode):
			return errs.Errorf(errs.AlreadyExists, "Branch code already exists for this owner")
		}

		return errs.Errorf(errs.Internal, "create: code[%s]: %s", nb.Code, err)
	}

	return query.NewData(toAppBranch(b)).WithMessage("Branch created").Created()
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	b, appErr := a.load(ctx, r)
	if appErr != nil {
		return appErr
	}

	var app UpdateBranch
	if err := web.Decode(r, &app); err != nil {
		return errs.NewDecode(err)
	}

	if err := a.aclBus.Check(ctx, mid.GetPrincipal(ctx), actions.Update, resource.Branch, target(b)); err != nil {
		return mid.Denied(err)
	}

	ub, err := toBusUpdateBranch(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updated, err := a.branchBus.Update(ctx, b, ub)
	if err != nil {
		if errors.Is(err, branchbus.ErrUniqueCode) {
			return errs.Errorf(errs.AlreadyExists, "Branch code already exists for this owner")
		}
		return errs.Errorf(errs.Internal, "update: branchID[%d]: %s", b.ID, err)
	}

	return query.NewData(toAppBranch(updated)).WithMessage("Branch updated")
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	b, appErr := a.load(ctx, r)
	if appErr != nil {
		return appErr
	}

	if err := a.aclBus.Check(ctx, mid.GetPrincipal(ctx), actions.Delete, resource.Branch, target(b)); err != nil {
		return mid.Denied(err)
	}

	if err := a.branchBus.Delete(ctx, b); err != nil {
		return errs.Errorf(errs.Internal, "delete: branchID[%d]: %s", b.ID, err)
	}

	return query.NewMessage("Branch deleted")
}

func (a *app) queryRequests(ctx context.Context, r *http.Request) web.Encoder {
	if !mid.GetPrincipal(ctx).IsAdmin() {
		return errs.Errorf(errs.PermissionDenied, "Forbidden: admin only")
	}

	qp := parseQueryParams(r)

	pg, err := page.Parse(qp.Page, qp.Limit)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, fErr := parseRequestFilter(qp)
	if fErr != nil {
		return fErr
	}

	reqs, err := a.branchBus.QueryRequests(ctx, filter, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query requests: %s", err)
	}

	total, err := a.branchBus.CountRequests(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count requests: %s", err)
	}

	return query.NewResult(toAppRequests(reqs), total)
}

// =============================================================================

// load reads the branch named by the path. A missing branch is reported
// before any scope check.
func (a *app) load(ctx context.Context, r *http.Request) (branchbus.Branch, *errs.Error) {
	id, err := ids.Parse(web.Param(r, "id"))
	if err != nil {
		return branchbus.Branch{}, errs.Errorf(errs.InvalidArgument, "Invalid branch id")
	}

	b, err := a.branchBus.QueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, branchbus.ErrNotFound) {
			return branchbus.Branch{}, errs.Errorf(errs.NotFound, "Branch not found")
		}
		return branchbus.Branch{}, errs.Errorf(errs.Internal, "querybyid: branchID[%d]: %s", id, err)
	}

	return b, nil
}

func target(b branchbus.Branch) aclbus.Target {
	return aclbus.Target{TenantID: b.TenantID, BranchID: b.ID}
}
