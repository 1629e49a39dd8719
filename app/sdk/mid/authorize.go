package mid

import (
	"context"
	"net/http"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/business/types/actions"
	"github.com/jcpaschoal/dealerdesk/business/types/resource"
)

// Authorize rejects the request before the handler runs when the
// principal's role may never perform the action on the resource. Record
// level checks stay with the handler, which knows the target.
func Authorize(acl *aclbus.Core, res resource.Resource, act actions.Action) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			p := GetPrincipal(ctx)

			if !p.Authenticated() {
				return errs.Errorf(errs.Unauthenticated, "Unauthorized")
			}

			if !acl.Can(p.Role, res, act) {
				return errs.Errorf(errs.PermissionDenied, "Forbidden: admin/owner only")
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}

// Denied converts a policy decision into the client error.
func Denied(err error) *errs.Error {
	var denial *aclbus.DenialError
	if !asDenial(err, &denial) {
		return errs.Errorf(errs.Internal, "authorize: %s", err)
	}

	if denial.Reason == aclbus.Unauthenticated {
		return errs.Errorf(errs.Unauthenticated, "%s", denial.Message)
	}

	return errs.Errorf(errs.PermissionDenied, "%s", denial.Message)
}
